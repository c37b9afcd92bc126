package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinema-ticket-inventory/api"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	appvalidator "github.com/metinatakli/cinema-ticket-inventory/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrServiceUnavailable = "The inventory store is temporarily unavailable, please try again later"
	ErrFailedValidation   = "One or more fields have invalid values"
	ErrMethodNotAllowed   = "The %s method is not supported for this resource"
)

var notFoundErrors = []error{
	domain.ErrCartNotFound,
	domain.ErrTicketNotFound,
	domain.ErrShowingNotFound,
	domain.ErrPaymentNotFound,
}

// paymentFields names the request field behind each payment rejection.
var paymentFields = []struct {
	err   error
	field string
}{
	{domain.ErrInvalidCardNumber, "CardNumber"},
	{domain.ErrInvalidExpirationFormat, "Expiration"},
	{domain.ErrCardholderNameRequired, "CardholderName"},
	{domain.ErrInvalidCVC, "Cvc"},
}

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	w.Header().Set("Retry-After", "1")
	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrServiceUnavailable)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, r *http.Request, errs []api.ValidationError) {
	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: errs,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// failedValidationResponse reports request body validation failures. Errors
// that do not come from the validator are treated as malformed input.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	errs := make([]api.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, api.ValidationError{
			Field: fe.Field(),
			Issue: appvalidator.ValidationMessage(fe),
		})
	}

	app.validationErrorResponse(w, r, errs)
}

func (app *Application) paymentRejectedResponse(w http.ResponseWriter, r *http.Request, err error) {
	for _, pf := range paymentFields {
		if errors.Is(err, pf.err) {
			app.validationErrorResponse(w, r, []api.ValidationError{{Field: pf.field, Issue: err.Error()}})
			return
		}
	}

	app.unprocessableEntityResponse(w, r, err)
}

// inventoryErrorResponse maps errors returned by the inventory core to
// responses.
func (app *Application) inventoryErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			app.notFoundResponseWithErr(w, r, target)
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrTicketReserved):
		app.editConflictResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice):
		app.unprocessableEntityResponse(w, r, err)
	case domain.IsPaymentValidationError(err):
		app.paymentRejectedResponse(w, r, err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		app.serviceUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
