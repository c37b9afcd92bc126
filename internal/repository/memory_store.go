package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process InventoryStore.
//
// Transactions stage their writes and apply them on commit. Ticket writes are
// checked against the version observed when they were first staged and a
// showing may never end up with two tickets on the same seat; both failures
// surface as domain.ErrEditConflict, like their PostgreSQL counterparts.
type MemoryStore struct {
	mu       sync.RWMutex
	showings map[int]domain.Showing
	tickets  map[int]domain.Ticket
	carts    map[int]domain.Cart
	items    map[cartItemKey]domain.CartItem
	payments map[int]domain.PaymentRequest

	ticketSeq  atomic.Int64
	cartSeq    atomic.Int64
	itemSeq    atomic.Int64
	paymentSeq atomic.Int64

	now func() time.Time
}

type cartItemKey struct {
	cartID   int
	ticketID int
}

type memoryTx struct {
	// a nil value marks a deletion
	tickets      map[int]*domain.Ticket
	baseVersions map[int]int
	carts        map[int]*domain.Cart
	items        map[cartItemKey]*domain.CartItem
}

type memoryTxKey struct{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		showings: make(map[int]domain.Showing),
		tickets:  make(map[int]domain.Ticket),
		carts:    make(map[int]domain.Cart),
		items:    make(map[cartItemKey]domain.CartItem),
		payments: make(map[int]domain.PaymentRequest),
		now:      time.Now,
	}
}

// AddShowing registers a showing. Scheduling lives outside the inventory
// core, so this is how the in-memory backend gets seeded.
func (s *MemoryStore) AddShowing(showing domain.Showing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.showings[showing.ID] = showing
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(ctx)
	}

	tx := newMemoryTx()

	err := fn(context.WithValue(ctx, memoryTxKey{}, tx))
	if err != nil {
		return err
	}

	return s.commit(tx)
}

func newMemoryTx() *memoryTx {
	return &memoryTx{
		tickets:      make(map[int]*domain.Ticket),
		baseVersions: make(map[int]int),
		carts:        make(map[int]*domain.Cart),
		items:        make(map[cartItemKey]*domain.CartItem),
	}
}

// inTx runs fn in the context's transaction, or in a fresh one committed on return.
func (s *MemoryStore) inTx(ctx context.Context, fn func(tx *memoryTx) error) error {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(tx)
	}

	tx := newMemoryTx()

	err := fn(tx)
	if err != nil {
		return err
	}

	return s.commit(tx)
}

func (s *MemoryStore) commit(tx *memoryTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, base := range tx.baseVersions {
		if base == 0 {
			continue
		}

		committed, ok := s.tickets[id]
		if !ok || committed.Version != base {
			return domain.ErrEditConflict
		}
	}

	if s.hasSeatCollision(tx) {
		return domain.ErrEditConflict
	}

	for id, t := range tx.tickets {
		if t == nil {
			delete(s.tickets, id)
			continue
		}
		s.tickets[id] = *t
	}

	for id, c := range tx.carts {
		s.carts[id] = *c
	}

	for key, item := range tx.items {
		if item == nil {
			delete(s.items, key)
			continue
		}
		s.items[key] = *item
	}

	return nil
}

// hasSeatCollision must be called with s.mu held.
func (s *MemoryStore) hasSeatCollision(tx *memoryTx) bool {
	touched := make(map[int]struct{})
	for _, t := range tx.tickets {
		if t != nil {
			touched[t.ShowingID] = struct{}{}
		}
	}

	for showingID := range touched {
		seats := make(map[int]struct{})

		for id, committed := range s.tickets {
			if _, staged := tx.tickets[id]; staged || committed.ShowingID != showingID {
				continue
			}
			seats[committed.SeatNumber] = struct{}{}
		}

		for _, t := range tx.tickets {
			if t == nil || t.ShowingID != showingID {
				continue
			}
			if _, taken := seats[t.SeatNumber]; taken {
				return true
			}
			seats[t.SeatNumber] = struct{}{}
		}
	}

	return false
}

func (s *MemoryStore) GetShowing(ctx context.Context, id int) (*domain.Showing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	showing, ok := s.showings[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &showing, nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	var ticket *domain.Ticket

	err := s.inTx(ctx, func(tx *memoryTx) error {
		t, ok := s.visibleTicket(tx, id)
		if !ok {
			return domain.ErrRecordNotFound
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *MemoryStore) visibleTicket(tx *memoryTx, id int) (*domain.Ticket, bool) {
	if t, ok := tx.tickets[id]; ok {
		if t == nil {
			return nil, false
		}

		ticket := *t
		return &ticket, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, false
	}

	return &ticket, true
}

func (s *MemoryStore) ListTicketsForShowing(ctx context.Context, showingID int) ([]domain.Ticket, error) {
	var tickets []domain.Ticket

	err := s.inTx(ctx, func(tx *memoryTx) error {
		byID := make(map[int]domain.Ticket)

		s.mu.RLock()
		for id, t := range s.tickets {
			if t.ShowingID == showingID {
				byID[id] = t
			}
		}
		s.mu.RUnlock()

		for id, t := range tx.tickets {
			switch {
			case t == nil:
				delete(byID, id)
			case t.ShowingID == showingID:
				byID[id] = *t
			}
		}

		tickets = make([]domain.Ticket, 0, len(byID))
		for _, t := range byID {
			tickets = append(tickets, t)
		}

		slices.SortFunc(tickets, func(a, b domain.Ticket) int {
			return cmp.Compare(a.SeatNumber, b.SeatNumber)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

func (s *MemoryStore) SaveTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		now := s.now()

		if ticket.ID == 0 {
			s.mu.RLock()
			_, ok := s.showings[ticket.ShowingID]
			s.mu.RUnlock()

			if !ok {
				return domain.ErrShowingNotFound
			}

			ticket.ID = int(s.ticketSeq.Add(1))
			ticket.Version = 1
			ticket.CreatedAt = now
			ticket.UpdatedAt = now

			stored := *ticket
			tx.tickets[ticket.ID] = &stored
			tx.baseVersions[ticket.ID] = 0

			return nil
		}

		current, ok := s.visibleTicket(tx, ticket.ID)
		if !ok || current.Version != ticket.Version {
			return domain.ErrEditConflict
		}

		if _, seen := tx.baseVersions[ticket.ID]; !seen {
			tx.baseVersions[ticket.ID] = current.Version
		}

		ticket.Version++
		ticket.UpdatedAt = now

		stored := *ticket
		tx.tickets[ticket.ID] = &stored

		return nil
	})
}

func (s *MemoryStore) DeleteTicket(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		current, ok := s.visibleTicket(tx, id)
		if !ok {
			return domain.ErrRecordNotFound
		}

		if _, seen := tx.baseVersions[id]; !seen {
			tx.baseVersions[id] = current.Version
		}

		tx.tickets[id] = nil

		return nil
	})
}

func (s *MemoryStore) CreateCart(ctx context.Context, cart *domain.Cart) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		now := s.now()

		cart.ID = int(s.cartSeq.Add(1))
		cart.Total = decimal.Zero
		cart.Items = nil
		cart.CreatedAt = now
		cart.UpdatedAt = now

		stored := *cart
		tx.carts[cart.ID] = &stored

		return nil
	})
}

func (s *MemoryStore) visibleCart(tx *memoryTx, id int) (*domain.Cart, bool) {
	if c, ok := tx.carts[id]; ok {
		cart := *c
		return &cart, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[id]
	if !ok {
		return nil, false
	}

	return &cart, true
}

func (s *MemoryStore) visibleItem(tx *memoryTx, key cartItemKey) (*domain.CartItem, bool) {
	if item, ok := tx.items[key]; ok {
		if item == nil {
			return nil, false
		}

		copied := *item
		return &copied, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, false
	}

	return &item, true
}

func (s *MemoryStore) GetCart(ctx context.Context, id int) (*domain.Cart, error) {
	var cart *domain.Cart

	err := s.inTx(ctx, func(tx *memoryTx) error {
		c, ok := s.visibleCart(tx, id)
		if !ok {
			return domain.ErrRecordNotFound
		}

		byTicket := make(map[int]domain.CartItem)

		s.mu.RLock()
		for key, item := range s.items {
			if key.cartID == id {
				byTicket[key.ticketID] = item
			}
		}
		s.mu.RUnlock()

		for key, item := range tx.items {
			if key.cartID != id {
				continue
			}
			if item == nil {
				delete(byTicket, key.ticketID)
				continue
			}
			byTicket[key.ticketID] = *item
		}

		c.Items = make([]domain.CartItem, 0, len(byTicket))
		for _, item := range byTicket {
			if ticket, ok := s.visibleTicket(tx, item.TicketID); ok {
				item.UnitPrice = ticket.Price
			}
			c.Items = append(c.Items, item)
		}

		slices.SortFunc(c.Items, func(a, b domain.CartItem) int {
			return cmp.Compare(a.ID, b.ID)
		})

		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *MemoryStore) SaveCartItem(ctx context.Context, item *domain.CartItem) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		if _, ok := s.visibleCart(tx, item.CartID); !ok {
			return domain.ErrCartNotFound
		}

		if _, ok := s.visibleTicket(tx, item.TicketID); !ok {
			return domain.ErrTicketNotFound
		}

		key := cartItemKey{cartID: item.CartID, ticketID: item.TicketID}

		if existing, ok := s.visibleItem(tx, key); ok {
			item.ID = existing.ID
		} else {
			item.ID = int(s.itemSeq.Add(1))
		}

		stored := *item
		stored.UnitPrice = decimal.Zero
		tx.items[key] = &stored

		return nil
	})
}

func (s *MemoryStore) DeleteCartItem(ctx context.Context, cartID, ticketID int) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		tx.items[cartItemKey{cartID: cartID, ticketID: ticketID}] = nil
		return nil
	})
}

func (s *MemoryStore) UpdateCartTotal(ctx context.Context, cartID int, total decimal.Decimal) error {
	return s.inTx(ctx, func(tx *memoryTx) error {
		cart, ok := s.visibleCart(tx, cartID)
		if !ok {
			return domain.ErrRecordNotFound
		}

		cart.Total = total
		cart.UpdatedAt = s.now()
		tx.carts[cartID] = cart

		return nil
	})
}

// MemoryPaymentRepository keeps accepted payment requests next to the carts
// of a MemoryStore.
type MemoryPaymentRepository struct {
	store *MemoryStore
}

func NewMemoryPaymentRepository(store *MemoryStore) *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		store: store,
	}
}

func (r *MemoryPaymentRepository) Create(ctx context.Context, payment *domain.PaymentRequest) error {
	s := r.store

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[payment.CartID]; !ok {
		return domain.ErrCartNotFound
	}

	payment.ID = int(s.paymentSeq.Add(1))
	payment.CreatedAt = s.now()

	stored := *payment
	stored.CardNumber = payment.MaskedCardNumber()
	stored.CVC = ""
	s.payments[payment.ID] = stored

	return nil
}

func (r *MemoryPaymentRepository) GetById(ctx context.Context, id int) (*domain.PaymentRequest, error) {
	s := r.store

	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &payment, nil
}
