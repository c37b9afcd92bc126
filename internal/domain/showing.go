package domain

import (
	"context"
	"time"
)

// Showing is a scheduled screening of a movie. Showings are owned by the
// scheduling side of the venue; the inventory core only checks they exist.
type Showing struct {
	ID         int
	MovieID    int
	MovieTitle string
	StartsAt   time.Time
	Location   string
}

type ShowingRepository interface {
	GetShowing(ctx context.Context, id int) (*Showing, error)
}
