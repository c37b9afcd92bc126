// Package api holds the JSON request and response bodies of the inventory
// HTTP service.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type CartItem struct {
	TicketId  int             `json:"ticketId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	CartId    int             `json:"cartId"`
	Total     decimal.Decimal `json:"total"`
	Items     []CartItem      `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CartResponse struct {
	Cart Cart `json:"cart"`
}

type AddCartItemRequest struct {
	TicketId int `json:"ticketId" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type Ticket struct {
	TicketId   int             `json:"ticketId"`
	ShowingId  int             `json:"showingId"`
	SeatNumber int             `json:"seatNumber"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Capacity   int             `json:"capacity"`
	Reserved   int             `json:"reserved"`
	Available  bool            `json:"available"`
}

type TicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

type TicketListResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type ProvisionTicketsRequest struct {
	Count     int             `json:"count" validate:"required,gt=0,lte=1000"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
}

type ReleaseTicketsRequest struct {
	Count int `json:"count" validate:"required,gt=0"`
}

type ReleaseTicketsResponse struct {
	Released bool `json:"released"`
}

type UpdateTicketRequest struct {
	Price    *decimal.Decimal `json:"price,omitempty" validate:"omitnil,gte=0"`
	Quantity *int             `json:"quantity,omitempty" validate:"omitnil,gte=0"`
}

type PaymentRequest struct {
	CartId         int    `json:"cartId" validate:"required,gt=0"`
	CardNumber     string `json:"cardNumber"`
	Expiration     string `json:"expiration"`
	CardholderName string `json:"cardholderName"`
	Cvc            string `json:"cvc"`
}

type Payment struct {
	PaymentId      int       `json:"paymentId"`
	Reference      string    `json:"reference"`
	CartId         int       `json:"cartId"`
	CardNumber     string    `json:"cardNumber"`
	Expiration     string    `json:"expiration"`
	CardholderName string    `json:"cardholderName"`
	CreatedAt      time.Time `json:"createdAt"`
}

type PaymentResponse struct {
	Payment Payment `json:"payment"`
}
