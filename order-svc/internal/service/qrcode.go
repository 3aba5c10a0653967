package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(restaurantID, orderID string) ([]byte, error)
}

// DefaultQRGenerator encodes the order tracking link printed on tickets.
type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

func (g DefaultQRGenerator) Link(restaurantID, orderID string) string {
	return fmt.Sprintf("%s/track.html?restaurant=%s&order=%s", strings.TrimRight(g.BaseURL, "/"), restaurantID, orderID)
}

func (g DefaultQRGenerator) Generate(restaurantID, orderID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.Link(restaurantID, orderID), qrcode.Medium, size)
}
