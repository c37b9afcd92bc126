package inventory

import (
	"context"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

// SeatAllocator hands out seat numbers for new tickets of a showing.
type SeatAllocator struct {
	tickets domain.TicketRepository
}

func NewSeatAllocator(tickets domain.TicketRepository) *SeatAllocator {
	return &SeatAllocator{
		tickets: tickets,
	}
}

// NextSeatNumber returns one past the highest seat number of the showing, or
// 1 for a showing without tickets. Callers must hold the showing's exclusive
// scope until the tickets using the number are saved.
func (a *SeatAllocator) NextSeatNumber(ctx context.Context, showingID int) (int, error) {
	tickets, err := a.tickets.ListTicketsForShowing(ctx, showingID)
	if err != nil {
		return 0, err
	}

	next := 1
	for _, t := range tickets {
		if t.SeatNumber >= next {
			next = t.SeatNumber + 1
		}
	}

	return next, nil
}
