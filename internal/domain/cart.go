package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        int
	UserID    *int
	Total     decimal.Decimal
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem holds quantity units of one ticket. UnitPrice is not stored with
// the item; repositories fill it with the ticket's current price on load.
type CartItem struct {
	ID        int
	CartID    int
	TicketID  int
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Item returns the cart's line for the given ticket, or nil.
func (c *Cart) Item(ticketID int) *CartItem {
	for i := range c.Items {
		if c.Items[i].TicketID == ticketID {
			return &c.Items[i]
		}
	}

	return nil
}

// PutItem replaces the line for item.TicketID or appends it.
func (c *Cart) PutItem(item CartItem) {
	if existing := c.Item(item.TicketID); existing != nil {
		*existing = item
	} else {
		c.Items = append(c.Items, item)
	}

	c.RecalculateTotal()
}

// RemoveItem drops the line for ticketID and returns it.
func (c *Cart) RemoveItem(ticketID int) (CartItem, bool) {
	for i, item := range c.Items {
		if item.TicketID == ticketID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.RecalculateTotal()
			return item, true
		}
	}

	return CartItem{}, false
}

// RecalculateTotal sums quantity times unit price over the cart's items.
func (c *Cart) RecalculateTotal() {
	total := decimal.Zero

	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	c.Total = total
}

type CartRepository interface {
	CreateCart(ctx context.Context, cart *Cart) error
	// GetCart loads the cart together with its items ordered by item id, each
	// priced at its ticket's current price.
	GetCart(ctx context.Context, id int) (*Cart, error)
	// SaveCartItem upserts the (cart, ticket) line and sets item.ID.
	SaveCartItem(ctx context.Context, item *CartItem) error
	DeleteCartItem(ctx context.Context, cartID, ticketID int) error
	UpdateCartTotal(ctx context.Context, cartID int, total decimal.Decimal) error
}
