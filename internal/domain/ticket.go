package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is one unit of seat inventory for a showing.
//
// Capacity is the quantity provisioned on the record. Whatever is not left in
// Quantity is held by cart items, so Capacity-Quantity always equals the sum of
// cart item quantities referencing the ticket.
type Ticket struct {
	ID         int
	ShowingID  int
	SeatNumber int
	Price      decimal.Decimal
	Quantity   int
	Capacity   int
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t *Ticket) Available() bool {
	return t.Quantity > 0
}

func (t *Ticket) Reserved() int {
	return t.Capacity - t.Quantity
}

// Reserve moves quantity from the ticket into a cart.
func (t *Ticket) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if quantity > t.Quantity {
		return ErrInsufficientInventory
	}

	t.Quantity -= quantity

	return nil
}

// Restore gives back quantity previously reserved by a cart.
func (t *Ticket) Restore(quantity int) {
	t.Quantity += quantity
}

// Withdraw removes unreserved capacity from the ticket.
func (t *Ticket) Withdraw(quantity int) {
	t.Quantity -= quantity
	t.Capacity -= quantity
}

// SetQuantity changes the remaining quantity and shifts capacity by the same
// delta so that reservations stay accounted for.
func (t *Ticket) SetQuantity(quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	delta := quantity - t.Quantity
	t.Quantity = quantity
	t.Capacity += delta

	return nil
}

type TicketRepository interface {
	GetTicket(ctx context.Context, id int) (*Ticket, error)
	// ListTicketsForShowing returns the showing's tickets ordered by seat number.
	ListTicketsForShowing(ctx context.Context, showingID int) ([]Ticket, error)
	// SaveTicket inserts the ticket when its ID is zero, otherwise updates it
	// if the stored version still matches and bumps the version.
	SaveTicket(ctx context.Context, ticket *Ticket) error
	DeleteTicket(ctx context.Context, id int) error
}
