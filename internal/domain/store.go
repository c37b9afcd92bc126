package domain

import "context"

// UnitOfWork runs fn inside a transaction. Repository calls made with the
// context passed to fn take part in that transaction; a nested WithTx joins
// the outer one.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// InventoryStore is the persistence seam consumed by the inventory core.
type InventoryStore interface {
	UnitOfWork
	TicketRepository
	CartRepository
	ShowingRepository
}
