package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ReservationEngine changes a showing's ticket inventory at venue level.
type ReservationEngine struct {
	store   domain.InventoryStore
	guard   *Guard
	seats   *SeatAllocator
	logger  *slog.Logger
	metrics *metrics
}

func NewReservationEngine(store domain.InventoryStore, guard *Guard, logger *slog.Logger) *ReservationEngine {
	return &ReservationEngine{
		store:   store,
		guard:   guard,
		seats:   NewSeatAllocator(store),
		logger:  logger,
		metrics: guard.metrics,
	}
}

// ProvisionTickets creates count tickets of quantity 1 on consecutive seats
// following the showing's highest seat number.
func (e *ReservationEngine) ProvisionTickets(
	ctx context.Context,
	showingID int,
	count int,
	unitPrice decimal.Decimal) (tickets []domain.Ticket, err error) {

	ctx, span := startSpan(ctx, "ReservationEngine.ProvisionTickets")
	span.SetAttributes(attribute.Int("showing.id", showingID), attribute.Int("count", count))
	defer func() { endSpan(span, err) }()

	if count <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if unitPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	err = e.requireShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	err = e.guard.Do(ctx, []string{showingKey(showingID)}, func(ctx context.Context) error {
		tickets = make([]domain.Ticket, 0, count)

		next, err := e.seats.NextSeatNumber(ctx, showingID)
		if err != nil {
			return err
		}

		for i := range count {
			ticket := domain.Ticket{
				ShowingID:  showingID,
				SeatNumber: next + i,
				Price:      unitPrice,
				Quantity:   1,
				Capacity:   1,
			}

			err = e.store.SaveTicket(ctx, &ticket)
			if err != nil {
				return err
			}

			tickets = append(tickets, ticket)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.provisioned.Add(ctx, int64(count))
	e.logger.Info("tickets provisioned",
		"showing_id", showingID,
		"count", count,
		"first_seat", tickets[0].SeatNumber,
		"last_seat", tickets[len(tickets)-1].SeatNumber)

	return tickets, nil
}

// ReleaseTickets withdraws count units of remaining quantity from the showing,
// walking its tickets by ascending seat number. When the showing has fewer
// than count units left nothing changes and false is returned. Depleted
// tickets are kept with zero quantity.
func (e *ReservationEngine) ReleaseTickets(ctx context.Context, showingID int, count int) (released bool, err error) {
	ctx, span := startSpan(ctx, "ReservationEngine.ReleaseTickets")
	span.SetAttributes(attribute.Int("showing.id", showingID), attribute.Int("count", count))
	defer func() { endSpan(span, err) }()

	if count <= 0 {
		return false, domain.ErrInvalidQuantity
	}

	err = e.requireShowing(ctx, showingID)
	if err != nil {
		return false, err
	}

	err = e.guard.Do(ctx, []string{showingKey(showingID)}, func(ctx context.Context) error {
		released = false

		tickets, err := e.store.ListTicketsForShowing(ctx, showingID)
		if err != nil {
			return err
		}

		available := 0
		for _, t := range tickets {
			available += t.Quantity
		}

		if available < count {
			e.logger.Warn("release rejected: not enough remaining quantity",
				"showing_id", showingID,
				"requested", count,
				"available", available)
			return nil
		}

		left := count
		for i := range tickets {
			if left == 0 {
				break
			}

			ticket := &tickets[i]
			if !ticket.Available() {
				continue
			}

			take := min(ticket.Quantity, left)
			ticket.Withdraw(take)

			err = e.store.SaveTicket(ctx, ticket)
			if err != nil {
				return err
			}

			left -= take
		}

		released = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if released {
		e.metrics.released.Add(ctx, int64(count))
		e.logger.Info("tickets released", "showing_id", showingID, "count", count)
	}

	return released, nil
}

// EditTicket applies the non-nil fields to the ticket.
func (e *ReservationEngine) EditTicket(
	ctx context.Context,
	ticketID int,
	price *decimal.Decimal,
	quantity *int) (ticket *domain.Ticket, err error) {

	ctx, span := startSpan(ctx, "ReservationEngine.EditTicket")
	span.SetAttributes(attribute.Int("ticket.id", ticketID))
	defer func() { endSpan(span, err) }()

	if price != nil && price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	if quantity != nil && *quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	err = e.guard.Do(ctx, []string{ticketKey(ticketID)}, func(ctx context.Context) error {
		t, err := e.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}

		if price != nil {
			t.Price = *price
		}

		if quantity != nil {
			err = t.SetQuantity(*quantity)
			if err != nil {
				return err
			}
		}

		err = e.store.SaveTicket(ctx, t)
		if err != nil {
			return err
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("ticket edited", "ticket_id", ticketID, "price", ticket.Price, "quantity", ticket.Quantity)

	return ticket, nil
}

// DeleteTicket removes a ticket that no cart holds.
func (e *ReservationEngine) DeleteTicket(ctx context.Context, ticketID int) (err error) {
	ctx, span := startSpan(ctx, "ReservationEngine.DeleteTicket")
	span.SetAttributes(attribute.Int("ticket.id", ticketID))
	defer func() { endSpan(span, err) }()

	return e.guard.Do(ctx, []string{ticketKey(ticketID)}, func(ctx context.Context) error {
		t, err := e.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}

		if t.Reserved() > 0 {
			return domain.ErrTicketReserved
		}

		return e.store.DeleteTicket(ctx, ticketID)
	})
}

func (e *ReservationEngine) GetTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	return e.getTicket(ctx, ticketID)
}

func (e *ReservationEngine) ListTickets(ctx context.Context, showingID int) ([]domain.Ticket, error) {
	err := e.requireShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	return e.store.ListTicketsForShowing(ctx, showingID)
}

func (e *ReservationEngine) getTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	ticket, err := e.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, err
	}

	return ticket, nil
}

func (e *ReservationEngine) requireShowing(ctx context.Context, showingID int) error {
	_, err := e.store.GetShowing(ctx, showingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrShowingNotFound
		}

		return err
	}

	return nil
}
