package repository

import (
	"context"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

func (p *PostgresStore) GetShowing(ctx context.Context, id int) (*domain.Showing, error) {
	query := `
		SELECT s.id, s.movie_id, m.title, s.starts_at, s.location
		FROM showings s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.id = $1
	`

	var showing domain.Showing

	err := p.conn(ctx).QueryRow(ctx, query, id).Scan(
		&showing.ID,
		&showing.MovieID,
		&showing.MovieTitle,
		&showing.StartsAt,
		&showing.Location,
	)
	if err != nil {
		return nil, classifyError(err)
	}

	return &showing, nil
}
