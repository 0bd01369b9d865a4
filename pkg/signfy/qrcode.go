package signfy

import (
	"fmt"

	"github.com/skip2/go-qrcode"
	qrsvg "github.com/wamuir/svg-qr-code"
)

const DefaultQRCodeSize = 256

// QRCodePNG encodes link as a size×size PNG.
func QRCodePNG(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRCodeSize
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

func QRCodeSVG(link string) (string, error) {
	qr, err := qrsvg.New(link)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return qr.String(), nil
}
