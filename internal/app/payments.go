package app

import (
	"net/http"

	"github.com/metinatakli/cinema-ticket-inventory/api"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

func (app *Application) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var input api.PaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	req := &domain.PaymentRequest{
		CartID:         input.CartId,
		CardNumber:     input.CardNumber,
		Expiration:     input.Expiration,
		CardholderName: input.CardholderName,
		CVC:            input.Cvc,
	}

	accepted, err := app.payments.ValidatePayment(r.Context(), req)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, api.PaymentResponse{Payment: toApiPayment(accepted)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentId, err := readIDParam(r, "paymentId", "payment ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.payments.GetPayment(r.Context(), paymentId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.PaymentResponse{Payment: toApiPayment(payment)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiPayment(p *domain.PaymentRequest) api.Payment {
	return api.Payment{
		PaymentId:      p.ID,
		Reference:      p.Reference.String(),
		CartId:         p.CartID,
		CardNumber:     p.CardNumber,
		Expiration:     p.Expiration,
		CardholderName: p.CardholderName,
		CreatedAt:      p.CreatedAt,
	}
}
