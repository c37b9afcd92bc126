package domain

import "errors"

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrEditConflict          = errors.New("edit conflict")
	ErrConflict              = errors.New("the resource is being modified concurrently, please try again")
	ErrStoreUnavailable      = errors.New("inventory store is unavailable")
	ErrCartNotFound          = errors.New("cart not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrShowingNotFound       = errors.New("showing not found")
	ErrPaymentNotFound       = errors.New("payment request not found")
	ErrInsufficientInventory = errors.New("requested quantity exceeds the remaining ticket quantity")
	ErrTicketReserved        = errors.New("ticket is held by one or more carts")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
	ErrInvalidPrice          = errors.New("price must not be negative")

	ErrInvalidCardNumber       = errors.New("invalid card number")
	ErrInvalidExpirationFormat = errors.New("invalid expiration date format, expected MM/YY")
	ErrCardholderNameRequired  = errors.New("cardholder name is required")
	ErrInvalidCVC              = errors.New("invalid CVC")
)

// IsPaymentValidationError reports whether err is one of the payment field rejections.
func IsPaymentValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCardNumber) ||
		errors.Is(err, ErrInvalidExpirationFormat) ||
		errors.Is(err, ErrCardholderNameRequired) ||
		errors.Is(err, ErrInvalidCVC)
}
