package inventory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
	"github.com/metinatakli/cinema-ticket-inventory/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	testShowingID  = 1
	otherShowingID = 2
)

var testPrice = decimal.RequireFromString("12.50")

type testEnv struct {
	store        *repository.MemoryStore
	guard        *Guard
	reservations *ReservationEngine
	carts        *CartManager
}

func newTestEnv() *testEnv {
	store := repository.NewMemoryStore()
	store.AddShowing(domain.Showing{ID: testShowingID, MovieID: 1, MovieTitle: "Inception", StartsAt: time.Now(), Location: "Hall 1"})
	store.AddShowing(domain.Showing{ID: otherShowingID, MovieID: 2, MovieTitle: "Interstellar", StartsAt: time.Now(), Location: "Hall 2"})

	logger := newTestLogger()
	guard := NewGuard(lock.NewLocalLocker(), store, logger, WithLockWait(5*time.Second), WithRetryBackoff(0))

	return &testEnv{
		store:        store,
		guard:        guard,
		reservations: NewReservationEngine(store, guard, logger),
		carts:        NewCartManager(store, guard, logger),
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// conservedQuantity returns remaining ticket quantity plus every cart's
// holding for the showing, and the summed capacity of its tickets.
func (e *testEnv) conservedQuantity(cartIDs []int, showingID int) (int, int) {
	ctx := context.Background()

	tickets, err := e.store.ListTicketsForShowing(ctx, showingID)
	if err != nil {
		panic(err)
	}

	owned := make(map[int]bool, len(tickets))
	remaining, capacity := 0, 0
	for _, t := range tickets {
		owned[t.ID] = true
		remaining += t.Quantity
		capacity += t.Capacity
	}

	held := 0
	for _, id := range cartIDs {
		cart, err := e.store.GetCart(ctx, id)
		if err != nil {
			panic(err)
		}

		for _, item := range cart.Items {
			if owned[item.TicketID] {
				held += item.Quantity
			}
		}
	}

	return remaining + held, capacity
}

func ptr[T any](v T) *T {
	return &v
}

func newTestLocker() lock.Locker {
	return lock.NewLocalLocker()
}
