// Package qr renders event identifiers into scannable PNG images.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"frameit/internal/domain"
)

// DefaultSize is the fixed edge length in pixels of rendered QR images.
const DefaultSize = 512

type renderer struct {
	size int
}

// NewRenderer returns a QRRenderer producing square PNGs at the given pixel
// size with the highest error-correction level, so a partially obscured
// print still scans. size <= 0 falls back to DefaultSize.
func NewRenderer(size int) domain.QRRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &renderer{size: size}
}

func (r *renderer) Render(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("qr payload is empty")
	}
	png, err := qrcode.Encode(payload, qrcode.Highest, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
