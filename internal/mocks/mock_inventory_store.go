package mocks

import (
	"context"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// TxFunc can be returned from a WithTx expectation to run the transaction body.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// RunTx runs the transaction body with the given context.
func RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockInventoryStore struct {
	mock.Mock
	domain.InventoryStore
}

func (m *MockInventoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if run, ok := args.Get(0).(TxFunc); ok {
		return run(ctx, fn)
	}
	return args.Error(0)
}

func (m *MockInventoryStore) GetShowing(ctx context.Context, id int) (*domain.Showing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Showing), args.Error(1)
}

func (m *MockInventoryStore) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockInventoryStore) ListTicketsForShowing(ctx context.Context, showingID int) ([]domain.Ticket, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockInventoryStore) SaveTicket(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockInventoryStore) DeleteTicket(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInventoryStore) CreateCart(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockInventoryStore) GetCart(ctx context.Context, id int) (*domain.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockInventoryStore) SaveCartItem(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryStore) DeleteCartItem(ctx context.Context, cartID, ticketID int) error {
	args := m.Called(ctx, cartID, ticketID)
	return args.Error(0)
}

func (m *MockInventoryStore) UpdateCartTotal(ctx context.Context, cartID int, total decimal.Decimal) error {
	args := m.Called(ctx, cartID, total)
	return args.Error(0)
}
