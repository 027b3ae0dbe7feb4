package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders the printable check-in poster QR: members scan it at
// the pitch to reach the board for a given day.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// CheckInPoster encodes the board URL as a 256px PNG. An empty date links
// to the board's default (today) view.
func (g *Generator) CheckInPoster(date string) ([]byte, error) {
	url := g.baseURL
	if date != "" {
		url = fmt.Sprintf("%s/?date=%s", g.baseURL, date)
	}
	return qrcode.Encode(url, qrcode.Medium, 256)
}
