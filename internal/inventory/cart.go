package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

// CartManager moves ticket quantity between showings' inventory and carts.
// Every unit is either left on its ticket or held by exactly one cart item.
type CartManager struct {
	store   domain.InventoryStore
	guard   *Guard
	logger  *slog.Logger
	metrics *metrics
}

func NewCartManager(store domain.InventoryStore, guard *Guard, logger *slog.Logger) *CartManager {
	return &CartManager{
		store:   store,
		guard:   guard,
		logger:  logger,
		metrics: guard.metrics,
	}
}

// GetOrCreateCart loads the cart with the given id, or creates an empty one
// when cartID is nil. An unknown id yields domain.ErrCartNotFound.
func (m *CartManager) GetOrCreateCart(ctx context.Context, cartID *int) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "CartManager.GetOrCreateCart")
	defer func() { endSpan(span, err) }()

	if cartID != nil {
		return m.getCart(ctx, *cartID)
	}

	cart = &domain.Cart{}

	err = m.store.CreateCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	cart.Items = []domain.CartItem{}

	m.logger.Info("cart created", "cart_id", cart.ID)

	return cart, nil
}

// AddTicketToCart reserves quantity units of the ticket for the cart. The
// ticket decrement, the cart item upsert and the new total commit together.
// Every line of the total is priced at its ticket's current price.
func (m *CartManager) AddTicketToCart(ctx context.Context, cartID, ticketID, quantity int) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "CartManager.AddTicketToCart")
	span.SetAttributes(
		attribute.Int("cart.id", cartID),
		attribute.Int("ticket.id", ticketID),
		attribute.Int("quantity", quantity))
	defer func() { endSpan(span, err) }()

	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	keys := []string{cartKey(cartID), ticketKey(ticketID)}

	err = m.guard.Do(ctx, keys, func(ctx context.Context) error {
		c, err := m.getCart(ctx, cartID)
		if err != nil {
			return err
		}

		ticket, err := m.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}

		remaining := ticket.Quantity

		err = ticket.Reserve(quantity)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientInventory) {
				return fmt.Errorf("%w: requested %d, remaining %d", err, quantity, remaining)
			}

			return err
		}

		err = m.store.SaveTicket(ctx, ticket)
		if err != nil {
			return err
		}

		item := domain.CartItem{
			CartID:    cartID,
			TicketID:  ticketID,
			Quantity:  quantity,
			UnitPrice: ticket.Price,
		}

		if existing := c.Item(ticketID); existing != nil {
			item.ID = existing.ID
			item.Quantity += existing.Quantity
		}

		err = m.store.SaveCartItem(ctx, &item)
		if err != nil {
			return err
		}

		c.PutItem(item)

		err = m.store.UpdateCartTotal(ctx, cartID, c.Total)
		if err != nil {
			return err
		}

		cart = c
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			m.logger.Warn("add to cart rejected", "cart_id", cartID, "ticket_id", ticketID, "error", err)
		}

		return nil, err
	}

	m.metrics.reserved.Add(ctx, int64(quantity))
	m.logger.Info("ticket added to cart", "cart_id", cartID, "ticket_id", ticketID, "quantity", quantity)

	return cart, nil
}

// RemoveTicketFromCart drops the cart's whole line for the ticket and gives
// its quantity back to the ticket. Removing a ticket that is not in the cart
// returns the cart unchanged.
func (m *CartManager) RemoveTicketFromCart(ctx context.Context, cartID, ticketID int) (cart *domain.Cart, err error) {
	ctx, span := startSpan(ctx, "CartManager.RemoveTicketFromCart")
	span.SetAttributes(attribute.Int("cart.id", cartID), attribute.Int("ticket.id", ticketID))
	defer func() { endSpan(span, err) }()

	var restored int
	keys := []string{cartKey(cartID), ticketKey(ticketID)}

	err = m.guard.Do(ctx, keys, func(ctx context.Context) error {
		restored = 0

		c, err := m.getCart(ctx, cartID)
		if err != nil {
			return err
		}

		item, ok := c.RemoveItem(ticketID)
		if !ok {
			cart = c
			return nil
		}

		ticket, err := m.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}

		ticket.Restore(item.Quantity)

		err = m.store.SaveTicket(ctx, ticket)
		if err != nil {
			return err
		}

		err = m.store.DeleteCartItem(ctx, cartID, ticketID)
		if err != nil {
			return err
		}

		err = m.store.UpdateCartTotal(ctx, cartID, c.Total)
		if err != nil {
			return err
		}

		restored = item.Quantity
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if restored > 0 {
		m.metrics.restored.Add(ctx, int64(restored))
		m.logger.Info("ticket removed from cart", "cart_id", cartID, "ticket_id", ticketID, "quantity", restored)
	}

	return cart, nil
}

// getCart loads the cart and totals it at the tickets' current prices, so a
// price edit shows up on the next read without touching stored carts.
func (m *CartManager) getCart(ctx context.Context, cartID int) (*domain.Cart, error) {
	cart, err := m.store.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrCartNotFound
		}

		return nil, err
	}

	cart.RecalculateTotal()

	return cart, nil
}

func (m *CartManager) getTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	ticket, err := m.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, err
	}

	return ticket, nil
}
