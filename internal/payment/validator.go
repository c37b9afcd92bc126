package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/metinatakli/cinema-ticket-inventory/internal/payment"

// fieldErrors maps each validated PaymentRequest field to its rejection.
// Fields are checked in declaration order, so the first failing field wins.
var fieldErrors = map[string]error{
	"CardNumber":     domain.ErrInvalidCardNumber,
	"Expiration":     domain.ErrInvalidExpirationFormat,
	"CardholderName": domain.ErrCardholderNameRequired,
	"CVC":            domain.ErrInvalidCVC,
}

// Validator gates payment requests before they are accepted for a cart.
// It never touches ticket inventory.
type Validator struct {
	validate *validator.Validate
	payments domain.PaymentRepository
	logger   *slog.Logger
	rejected metric.Int64Counter
}

func NewValidator(validate *validator.Validate, payments domain.PaymentRepository, logger *slog.Logger) *Validator {
	rejected, err := otel.Meter(instrumentationName).Int64Counter(
		"payment.validation.rejected",
		metric.WithDescription("Payment requests rejected by field validation"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &Validator{
		validate: validate,
		payments: payments,
		logger:   logger,
		rejected: rejected,
	}
}

// Validate checks card number, expiration, cardholder name and CVC in that
// order and returns the first failure.
func (v *Validator) Validate(req *domain.PaymentRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		if kind, ok := fieldErrors[fe.StructField()]; ok {
			return kind
		}
	}

	return err
}

// ValidatePayment validates req and, when every rule passes, stores it as an
// accepted request for its cart.
func (v *Validator) ValidatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentRequest, error) {
	err := v.Validate(req)
	if err != nil {
		if v.rejected != nil {
			v.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", err.Error())))
		}

		v.logger.Info("payment request rejected", "cart_id", req.CartID, "reason", err)
		return nil, err
	}

	req.Reference = uuid.New()

	err = v.payments.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment request: %w", err)
	}

	v.logger.Info("payment request accepted", "cart_id", req.CartID, "payment_id", req.ID, "reference", req.Reference)

	accepted := *req
	accepted.CardNumber = req.MaskedCardNumber()
	accepted.CVC = ""

	return &accepted, nil
}

func (v *Validator) GetPayment(ctx context.Context, id int) (*domain.PaymentRequest, error) {
	payment, err := v.payments.GetById(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return payment, nil
}
