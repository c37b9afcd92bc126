package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired       = "is required"
	ErrMinLength      = "must be at least %s characters long"
	ErrMaxLength      = "must be at most %s characters long"
	ErrMinValue       = "must be greater than or equal to %s"
	ErrMaxValue       = "must be less than or equal to %s"
	ErrGreaterThan    = "must be greater than %s"
	ErrNotBlank       = "must not be blank"
	ErrCardNumber     = "must contain 13 to 19 digits"
	ErrCardExpiry     = "must be a valid expiration date in MM/YY format"
	ErrCVC            = "must contain 3 or 4 digits"
	ErrDefaultInvalid = "is invalid"
)

var (
	cardNumberRgx = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryRgx = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRgx        = regexp.MustCompile(`^\d{3,4}$`)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validator.RegisterValidation("card_number", validateCardNumber)
	validator.RegisterValidation("card_expiry", validateCardExpiry)
	validator.RegisterValidation("cvc", validateCVC)
	validator.RegisterValidation("notblank", validateNotBlank)

	return validator
}

// decimalValue lets numeric tags such as gte=0 apply to decimal fields.
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()

	return f
}

func validateCardNumber(fl validator.FieldLevel) bool {
	return cardNumberRgx.MatchString(fl.Field().String())
}

func validateCardExpiry(fl validator.FieldLevel) bool {
	return cardExpiryRgx.MatchString(fl.Field().String())
}

func validateCVC(fl validator.FieldLevel) bool {
	return cvcRgx.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMinLength, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "gte":
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "lte":
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "gt":
		return fmt.Sprintf(ErrGreaterThan, err.Param())
	case "notblank":
		return ErrNotBlank
	case "card_number":
		return ErrCardNumber
	case "card_expiry":
		return ErrCardExpiry
	case "cvc":
		return ErrCVC
	default:
		return ErrDefaultInvalid
	}
}
