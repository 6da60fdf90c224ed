package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

//go:embed templates
var templates embed.FS

// Confirmation wording modes.
const (
	ModeNew    = "new"
	ModeUpdate = "update"
)

// TShirtLine is one rendered merchandise line.
type TShirtLine struct {
	Size     string
	Quantity int
}

// ConfirmationData carries every value substituted into the confirmation
// templates. Visibility flags are derived from the record, never sent by the
// client.
type ConfirmationData struct {
	Mode        string
	Intro       string // optional override from the template sheet
	Email       string
	Names       []string
	TShirts     []TShirtLine
	ShowTShirts bool
	TotalFee    string
	// QRSrc is the cid: reference or hosted URL for the QR image. Typed as
	// template.URL because html/template would otherwise reject the cid:
	// scheme.
	QRSrc template.URL
}

// BuildConfirmationData maps a persisted record to template values.
func BuildConfirmationData(reg *models.Registration, created bool, qrSrc, intro string) ConfirmationData {
	mode := ModeUpdate
	if created {
		mode = ModeNew
	}

	var names []string
	for _, a := range reg.Attendees {
		name := strings.TrimSpace(a.FirstName + " " + a.LastName)
		if name != "" {
			names = append(names, name)
		}
	}

	var lines []TShirtLine
	for _, t := range reg.TShirts {
		if t.Quantity > 0 {
			lines = append(lines, TShirtLine{Size: t.Size, Quantity: t.Quantity})
		}
	}

	return ConfirmationData{
		Mode:        mode,
		Intro:       intro,
		Email:       reg.Email,
		Names:       names,
		TShirts:     lines,
		ShowTShirts: len(lines) > 0,
		TotalFee:    reg.TotalFee,
		QRSrc:       template.URL(qrSrc),
	}
}

// ConfirmationSubject picks the subject line for the wording mode.
func ConfirmationSubject(mode string) string {
	if mode == ModeUpdate {
		return "Your registration has been updated"
	}
	return "Your registration is confirmed"
}

func renderConfirmationHTML(data ConfirmationData) (string, error) {
	tmpl, err := template.ParseFS(templates, "templates/confirmation.tmpl")
	if err != nil {
		return "", fmt.Errorf("parse confirmation template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute confirmation template: %w", err)
	}
	return buf.String(), nil
}

func renderConfirmationText(data ConfirmationData) (string, error) {
	tmpl, err := texttemplate.ParseFS(templates, "templates/confirmation_text.tmpl")
	if err != nil {
		return "", fmt.Errorf("parse text template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute text template: %w", err)
	}
	return buf.String(), nil
}
