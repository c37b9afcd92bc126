package repository

import (
	"context"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/shopspring/decimal"
)

func (p *PostgresStore) CreateCart(ctx context.Context, cart *domain.Cart) error {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING id, total, created_at, updated_at
	`

	err := p.conn(ctx).QueryRow(ctx, query, cart.UserID).Scan(
		&cart.ID,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return classifyError(err)
	}

	cart.Items = nil

	return nil
}

func (p *PostgresStore) GetCart(ctx context.Context, id int) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, total, created_at, updated_at
		FROM carts
		WHERE id = $1
	`

	var cart domain.Cart

	err := p.conn(ctx).QueryRow(ctx, query, id).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, classifyError(err)
	}

	query = `
		SELECT ci.id, ci.cart_id, ci.ticket_id, ci.quantity, t.price
		FROM cart_items ci
		INNER JOIN tickets t ON t.id = ci.ticket_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := p.conn(ctx).Query(ctx, query, id)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	cart.Items = make([]domain.CartItem, 0)

	for rows.Next() {
		var item domain.CartItem

		err = rows.Scan(
			&item.ID,
			&item.CartID,
			&item.TicketID,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, classifyError(err)
		}

		cart.Items = append(cart.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return &cart, nil
}

func (p *PostgresStore) SaveCartItem(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, ticket_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, ticket_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id
	`

	err := p.conn(ctx).QueryRow(
		ctx,
		query,
		item.CartID,
		item.TicketID,
		item.Quantity).Scan(&item.ID)

	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err, "cart_items_cart_id_fkey"):
		return domain.ErrCartNotFound
	case isForeignKeyViolation(err, "cart_items_ticket_id_fkey"):
		return domain.ErrTicketNotFound
	default:
		return classifyError(err)
	}
}

func (p *PostgresStore) DeleteCartItem(ctx context.Context, cartID, ticketID int) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND ticket_id = $2`

	_, err := p.conn(ctx).Exec(ctx, query, cartID, ticketID)

	return classifyError(err)
}

func (p *PostgresStore) UpdateCartTotal(ctx context.Context, cartID int, total decimal.Decimal) error {
	query := `UPDATE carts SET total = $1, updated_at = NOW() WHERE id = $2`

	result, err := p.conn(ctx).Exec(ctx, query, total, cartID)
	if err != nil {
		return classifyError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
