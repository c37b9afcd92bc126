package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

const ticketColumns = `id, showing_id, seat_number, price, quantity, capacity, version, created_at, updated_at`

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ShowingID,
		&ticket.SeatNumber,
		&ticket.Price,
		&ticket.Quantity,
		&ticket.Capacity,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func (p *PostgresStore) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	var ticket domain.Ticket

	err := scanTicket(p.conn(ctx).QueryRow(ctx, query, id), &ticket)
	if err != nil {
		return nil, classifyError(err)
	}

	return &ticket, nil
}

func (p *PostgresStore) ListTicketsForShowing(ctx context.Context, showingID int) ([]domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE showing_id = $1
		ORDER BY seat_number
	`

	rows, err := p.conn(ctx).Query(ctx, query, showingID)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		var ticket domain.Ticket

		err = scanTicket(rows, &ticket)
		if err != nil {
			return nil, classifyError(err)
		}

		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return tickets, nil
}

func (p *PostgresStore) SaveTicket(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == 0 {
		return p.insertTicket(ctx, ticket)
	}

	query := `
		UPDATE tickets
		SET price = $1, quantity = $2, capacity = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5
		RETURNING version, updated_at
	`

	err := p.conn(ctx).QueryRow(
		ctx,
		query,
		ticket.Price,
		ticket.Quantity,
		ticket.Capacity,
		ticket.ID,
		ticket.Version).Scan(&ticket.Version, &ticket.UpdatedAt)

	if err != nil {
		err = classifyError(err)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (p *PostgresStore) insertTicket(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (showing_id, seat_number, price, quantity, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, version, created_at, updated_at
	`

	err := p.conn(ctx).QueryRow(
		ctx,
		query,
		ticket.ShowingID,
		ticket.SeatNumber,
		ticket.Price,
		ticket.Quantity,
		ticket.Capacity).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err, "tickets_showing_id_fkey") {
			return domain.ErrShowingNotFound
		}

		return classifyError(err)
	}

	return nil
}

func (p *PostgresStore) DeleteTicket(ctx context.Context, id int) error {
	query := `DELETE FROM tickets WHERE id = $1`

	result, err := p.conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return classifyError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
