// Package share produces QR codes linking to a poster's public URL.
package share

import (
	"bytes"
	"fmt"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// PNG returns QR code PNG bytes for the given URL at the given pixel size.
func PNG(url string, size int) ([]byte, error) {
	data, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode share QR: %w", err)
	}
	// validate the payload decodes before handing it to a client
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("validate share QR: %w", err)
	}
	return data, nil
}
