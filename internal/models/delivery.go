package models

import "time"

// DeliveryFailure is one appended fail-log row: a confirmation email that
// could not be delivered after the registration itself succeeded.
type DeliveryFailure struct {
	Email        string    `json:"email"`
	FailedAt     time.Time `json:"failedAt"`
	ErrorMessage string    `json:"errorMessage"`
}
