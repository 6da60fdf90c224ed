// Package mailer renders and sends the OTP and confirmation emails.
package mailer

import "context"

// Inline is an image embedded in the HTML body via a cid: reference.
type Inline struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Inlines  []Inline
}

// Sender is the mail transport boundary. Implementations do not retry;
// retry policy belongs to the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
