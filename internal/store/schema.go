package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

// SchemaVersion is the positional column layout version. The deployed sheet
// has no header row, so column order is the schema: any reordering requires a
// version bump and a sheet migration, never a silent change here.
//
// v1 had no suite column; v2 inserted it at column C and shifted everything
// after it right by one.
const SchemaVersion = 2

// Column indices, schema v2.
const (
	colEmail = iota
	colPaid
	colSuite
	colAttendee1First
	colAttendee1Last
	colAttendee2First
	colAttendee2Last
	colAttendee3First
	colAttendee3Last
	colAttendee4First
	colAttendee4Last
	colMobile
	colTShirt1Size
	colTShirt1Qty
	colTShirt2Size
	colTShirt2Qty
	colTShirt3Size
	colTShirt3Qty
	colTShirt4Size
	colTShirt4Qty
	colTotalFee
	colRegistrationDate
	colLastUpdatedAt
	colCheckinStaff
	colCheckinAt

	numColumns
)

// lastColumn is the A1-notation letter of the final column ("Y" for 25 columns).
var lastColumn = string(rune('A' + numColumns - 1))

// Control sheet keyword gating new registrations. The control tab holds a
// single row: the keyword in the first cell, the flag value in the second.
const (
	controlKeyword = "REGISTRATION_OPEN"
)

var openValues = map[string]bool{
	"y": true, "yes": true, "true": true, "open": true, "1": true,
}

// registrationToRow serializes a record into sheet column order.
func registrationToRow(reg *models.Registration) []string {
	row := make([]string, numColumns)
	row[colEmail] = models.NormalizeEmail(reg.Email)
	row[colPaid] = reg.Paid
	row[colSuite] = reg.Suite
	for i := 0; i < models.MaxAttendees; i++ {
		if i < len(reg.Attendees) {
			row[colAttendee1First+2*i] = reg.Attendees[i].FirstName
			row[colAttendee1Last+2*i] = reg.Attendees[i].LastName
		}
	}
	row[colMobile] = reg.Mobile
	for i := 0; i < models.MaxTShirtLines; i++ {
		if i < len(reg.TShirts) {
			row[colTShirt1Size+2*i] = reg.TShirts[i].Size
			row[colTShirt1Qty+2*i] = strconv.Itoa(reg.TShirts[i].Quantity)
		}
	}
	row[colTotalFee] = reg.TotalFee
	row[colRegistrationDate] = reg.RegistrationDate
	if !reg.LastUpdatedAt.IsZero() {
		row[colLastUpdatedAt] = reg.LastUpdatedAt.Format(time.RFC3339)
	}
	row[colCheckinStaff] = reg.CheckinStaff
	if reg.CheckinAt != nil {
		row[colCheckinAt] = reg.CheckinAt.Format(time.RFC3339)
	}
	return row
}

// rowToRegistration parses a sheet row. Short rows are tolerated (trailing
// blank cells are dropped by the API); malformed cells degrade to zero values
// rather than failing the whole read.
func rowToRegistration(row []string) (*models.Registration, error) {
	if cell(row, colEmail) == "" {
		return nil, fmt.Errorf("row has no email in column %d (schema v%d)", colEmail, SchemaVersion)
	}

	reg := &models.Registration{
		Email:            cell(row, colEmail),
		Paid:             cell(row, colPaid),
		Suite:            cell(row, colSuite),
		Mobile:           cell(row, colMobile),
		TotalFee:         cell(row, colTotalFee),
		RegistrationDate: cell(row, colRegistrationDate),
		CheckinStaff:     cell(row, colCheckinStaff),
	}

	for i := 0; i < models.MaxAttendees; i++ {
		first := cell(row, colAttendee1First+2*i)
		last := cell(row, colAttendee1Last+2*i)
		if first == "" && last == "" {
			continue
		}
		reg.Attendees = append(reg.Attendees, models.Attendee{FirstName: first, LastName: last})
	}

	for i := 0; i < models.MaxTShirtLines; i++ {
		size := cell(row, colTShirt1Size+2*i)
		qty, _ := strconv.Atoi(cell(row, colTShirt1Qty+2*i))
		if size == "" && qty == 0 {
			continue
		}
		reg.TShirts = append(reg.TShirts, models.TShirtOrder{Size: size, Quantity: qty})
	}

	if v := cell(row, colLastUpdatedAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			reg.LastUpdatedAt = t
		}
	}
	if v := cell(row, colCheckinAt); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			reg.CheckinAt = &t
		}
	}
	return reg, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isOpenValue(v string) bool {
	return openValues[strings.ToLower(strings.TrimSpace(v))]
}
