package bookings

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	qrcode "github.com/skip2/go-qrcode"
)

const ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateTicketNumber produces a ticket reference like "TKT4F7Q2M9X"
func generateTicketNumber() (string, error) {
	randomPart := make([]byte, 8)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(ticketAlphabet))))
		if err != nil {
			return "", err
		}
		randomPart[i] = ticketAlphabet[num.Int64()]
	}
	return "TKT" + string(randomPart), nil
}

// generateQRCode encodes the ticket payload as a base64 PNG for the client
// to render. A QR failure never blocks the booking.
func generateQRCode(ticketNumber, bookingID string) (string, error) {
	payload := fmt.Sprintf("revticket:%s:%s", ticketNumber, bookingID)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
