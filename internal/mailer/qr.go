package mailer

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 440

// RenderQR encodes the check-in token into a PNG QR image.
func RenderQR(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}
