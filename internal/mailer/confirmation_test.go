package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

func sampleRegistration() *models.Registration {
	return &models.Registration{
		Email: "a@x.com",
		Attendees: []models.Attendee{
			{FirstName: "Grace", LastName: "Park"},
			{FirstName: "Min", LastName: "Park"},
		},
		TShirts: []models.TShirtOrder{
			{Size: "M", Quantity: 2},
			{Size: "S", Quantity: 0},
		},
		TotalFee: "40",
	}
}

func TestBuildConfirmationData(t *testing.T) {
	data := BuildConfirmationData(sampleRegistration(), true, "cid:checkin-qr.png", "Welcome!")

	assert.Equal(t, ModeNew, data.Mode)
	assert.Equal(t, "Welcome!", data.Intro)
	assert.Equal(t, []string{"Grace Park", "Min Park"}, data.Names)
	assert.Equal(t, []TShirtLine{{Size: "M", Quantity: 2}}, data.TShirts, "zero-quantity lines are hidden")
	assert.True(t, data.ShowTShirts)
	assert.Equal(t, "40", data.TotalFee)

	data = BuildConfirmationData(sampleRegistration(), false, "https://example.com/qr.png", "")
	assert.Equal(t, ModeUpdate, data.Mode)
}

func TestBuildConfirmationDataNoTShirts(t *testing.T) {
	reg := sampleRegistration()
	reg.TShirts = []models.TShirtOrder{{Size: "M", Quantity: 0}}

	data := BuildConfirmationData(reg, true, "cid:x", "")
	assert.False(t, data.ShowTShirts)
	assert.Empty(t, data.TShirts)
}

func TestConfirmationSubject(t *testing.T) {
	assert.Equal(t, "Your registration is confirmed", ConfirmationSubject(ModeNew))
	assert.Equal(t, "Your registration has been updated", ConfirmationSubject(ModeUpdate))
}

func TestRenderConfirmationHTML(t *testing.T) {
	data := BuildConfirmationData(sampleRegistration(), true, "cid:checkin-qr.png", "See you there.")

	html, err := renderConfirmationHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, "Registration Confirmed")
	assert.Contains(t, html, "Grace Park")
	assert.Contains(t, html, "Min Park")
	assert.Contains(t, html, "See you there.")
	assert.Contains(t, html, `src="cid:checkin-qr.png"`)
	assert.Contains(t, html, "<td>M</td>")
	assert.NotContains(t, html, "<td>S</td>", "zero-quantity lines must not render")
}

func TestRenderConfirmationHTMLUpdateWording(t *testing.T) {
	data := BuildConfirmationData(sampleRegistration(), false, "cid:x", "")

	html, err := renderConfirmationHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, "Registration Updated")
	assert.NotContains(t, html, "Registration Confirmed")
}

func TestRenderConfirmationText(t *testing.T) {
	data := BuildConfirmationData(sampleRegistration(), true, "cid:x", "")

	text, err := renderConfirmationText(data)
	require.NoError(t, err)
	assert.Contains(t, text, "Grace Park")
	assert.Contains(t, text, "M x 2")
	assert.Contains(t, text, "Total fee: 40")
}

func TestRenderQR(t *testing.T) {
	png, err := RenderQR("0011:ffee")
	require.NoError(t, err)
	assert.Greater(t, len(png), 100)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
