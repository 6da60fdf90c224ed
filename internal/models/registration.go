package models

import (
	"strings"
	"time"
)

// Row capacity limits fixed by the sheet layout.
const (
	MaxAttendees   = 4
	MaxTShirtLines = 4
)

// Paid flag values as persisted.
const (
	PaidYes = "Y"
	PaidNo  = "N"
)

// DateLayout is the calendar-day format used for registration dates.
const DateLayout = "2006-01-02"

// Attendee is one participant name pair on a household registration.
type Attendee struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TShirtOrder is one merchandise line (size and quantity).
type TShirtOrder struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Registration is one household's event record, keyed by normalized email.
// Paid and RegistrationDate are server-owned: the registrant-facing upsert
// never writes them after creation. CheckinStaff/CheckinAt are written only by
// the check-in path.
type Registration struct {
	Email            string        `json:"email"`
	Paid             string        `json:"paid"`
	Suite            string        `json:"suite"`
	Attendees        []Attendee    `json:"attendees"`
	Mobile           string        `json:"mobile"`
	TShirts          []TShirtOrder `json:"tshirts"`
	TotalFee         string        `json:"totalFee"`
	RegistrationDate string        `json:"registrationDate"`
	LastUpdatedAt    time.Time     `json:"lastUpdatedAt"`
	CheckinStaff     string        `json:"checkinStaff,omitempty"`
	CheckinAt        *time.Time    `json:"checkinAt,omitempty"`
}

// CheckedIn reports whether the record has already been redeemed.
func (r *Registration) CheckedIn() bool {
	return r.CheckinAt != nil
}

// NormalizeEmail maps an email to the canonical record key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
