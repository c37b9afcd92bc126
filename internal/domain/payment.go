package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentRequest is a checkout attempt for a cart. Accepted requests are stored
// with the card number masked and without the CVC.
type PaymentRequest struct {
	ID             int
	Reference      uuid.UUID
	CartID         int
	CardNumber     string `validate:"card_number"`
	Expiration     string `validate:"card_expiry"`
	CardholderName string `validate:"notblank"`
	CVC            string `validate:"cvc"`
	CreatedAt      time.Time
}

// MaskedCardNumber keeps the last four digits of the card number.
func (p *PaymentRequest) MaskedCardNumber() string {
	n := len(p.CardNumber)
	if n <= 4 {
		return p.CardNumber
	}

	return strings.Repeat("*", n-4) + p.CardNumber[n-4:]
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *PaymentRequest) error
	GetById(ctx context.Context, id int) (*PaymentRequest, error)
}
