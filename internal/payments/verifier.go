package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"revticket/internal/shared/config"
)

var ErrInvalidSignature = errors.New("payment signature verification failed")

// Verification is the payment proof attached to a commit request
type Verification struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Verifier checks that a payment proof is genuine before a booking commits
type Verifier interface {
	Verify(ctx context.Context, v Verification) error
}

// razorpayVerifier validates the gateway's HMAC-SHA256 signature over
// "order_id|payment_id" using the key secret.
type razorpayVerifier struct {
	keySecret string
}

func NewRazorpayVerifier(cfg *config.Config) Verifier {
	return &razorpayVerifier{keySecret: cfg.Razorpay.KeySecret}
}

func (r *razorpayVerifier) Verify(_ context.Context, v Verification) error {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(v.OrderID + "|" + v.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}
