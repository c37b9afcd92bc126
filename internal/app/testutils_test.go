package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/cinema-ticket-inventory/api"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
	"github.com/metinatakli/cinema-ticket-inventory/internal/repository"
	"github.com/metinatakli/cinema-ticket-inventory/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const testShowingID = 1

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication builds an Application whose services are mocks.
func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config:         Config{Env: "test"},
		validator:      validator.NewValidator(),
		logger:         newTestLogger(),
		sessionManager: scs.New(),
		carts:          &MockCartService{},
		tickets:        &MockTicketService{},
		payments:       &MockPaymentService{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// newInventoryApplication builds an Application over the in-memory store
// with a single showing.
func newInventoryApplication() (*Application, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	store.AddShowing(domain.Showing{
		ID:         testShowingID,
		MovieID:    1,
		MovieTitle: "Test Movie",
		StartsAt:   time.Now().Add(24 * time.Hour),
		Location:   "Hall 1",
	})

	cfg := Config{
		Env:       "test",
		Inventory: InventoryConfig{MaxRetries: 3, LockWait: 5 * time.Second},
	}

	app := NewApp(cfg, newTestLogger(), store, repository.NewMemoryPaymentRepository(store), lock.NewLocalLocker(), scs.New())

	return app, store
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func serve(app *Application, w *httptest.ResponseRecorder, r *http.Request) {
	app.Routes().ServeHTTP(w, r)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return v
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if len(validationResp.ValidationErrors) == 0 {
			if validationResp.Message != wantErrMessage {
				t.Errorf("Error message = %v, want %v", validationResp.Message, wantErrMessage)
			}
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetOrCreateCart(ctx context.Context, cartID *int) (*domain.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartService) AddTicketToCart(ctx context.Context, cartID, ticketID, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, cartID, ticketID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartService) RemoveTicketFromCart(ctx context.Context, cartID, ticketID int) (*domain.Cart, error) {
	args := m.Called(ctx, cartID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) ProvisionTickets(ctx context.Context, showingID, count int, unitPrice decimal.Decimal) ([]domain.Ticket, error) {
	args := m.Called(ctx, showingID, count, unitPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketService) ReleaseTickets(ctx context.Context, showingID, count int) (bool, error) {
	args := m.Called(ctx, showingID, count)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketService) EditTicket(ctx context.Context, ticketID int, price *decimal.Decimal, quantity *int) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID, price, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, ticketID int) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

func (m *MockTicketService) GetTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) ListTickets(ctx context.Context, showingID int) ([]domain.Ticket, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ValidatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRequest), args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id int) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRequest), args.Error(1)
}
