package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// Create stores an accepted payment request. Only the masked card number is
// written and the CVC is never persisted.
func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (
			reference,
			cart_id,
			card_number,
			expiration,
			cardholder_name
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.Reference,
		payment.CartID,
		payment.MaskedCardNumber(),
		payment.Expiration,
		payment.CardholderName,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err, "payment_requests_cart_id_fkey") {
			return domain.ErrCartNotFound
		}

		return classifyError(err)
	}

	return nil
}

func (p *PostgresPaymentRepository) GetById(ctx context.Context, id int) (*domain.PaymentRequest, error) {
	query := `
		SELECT id, reference, cart_id, card_number, expiration, cardholder_name, created_at
		FROM payment_requests
		WHERE id = $1
	`

	var payment domain.PaymentRequest

	err := p.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.Reference,
		&payment.CartID,
		&payment.CardNumber,
		&payment.Expiration,
		&payment.CardholderName,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, classifyError(err)
	}

	return &payment, nil
}
