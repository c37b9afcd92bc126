package integration_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TicketTestSuite struct {
	BaseSuite
}

func TestTicketSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(TicketTestSuite))
}

func (s *TicketTestSuite) TestProvisionTicketsHandler() {
	scenarios := []Scenario{
		{
			Name:             "returns 404 for an unknown showing",
			Method:           "POST",
			URL:              "/showings/42/tickets",
			Body:             strings.NewReader(`{"count": 2, "unitPrice": "9.99"}`),
			ExpectedStatus:   http.StatusNotFound,
			ExpectedResponse: `{"message": "showing not found"}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				resetInventory(t, app)
			},
		},
		{
			Name:           "creates tickets on the next free seats",
			Method:         "POST",
			URL:            "/showings/1/tickets",
			Body:           strings.NewReader(`{"count": 2, "unitPrice": "9.99"}`),
			ExpectedStatus: http.StatusCreated,
			ExpectedResponse: `{
				"tickets": [
					{"ticketId": 2, "showingId": 1, "seatNumber": 4, "price": "9.99", "quantity": 1, "capacity": 1, "reserved": 0, "available": true},
					{"ticketId": 3, "showingId": 1, "seatNumber": 5, "price": "9.99", "quantity": 1, "capacity": 1, "reserved": 0, "available": true}
				]
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				resetInventory(t, app)
				insertTicket(t, app.DB, TestShowingId, 3, 1, TestTicketPrice)
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *TicketTestSuite) TestReleaseTicketsHandler() {
	setup := func(t testing.TB, app *TestApp) {
		resetInventory(t, app)
		insertTicket(t, app.DB, TestShowingId, 1, 1, TestTicketPrice)
		insertTicket(t, app.DB, TestShowingId, 2, 1, TestTicketPrice)
		insertTicket(t, app.DB, TestOtherShowingId, 1, 1, TestTicketPrice)
	}

	scenarios := []Scenario{
		{
			Name:             "refuses to release more than remains",
			Method:           "POST",
			URL:              "/showings/1/tickets/release",
			Body:             strings.NewReader(`{"count": 3}`),
			ExpectedStatus:   http.StatusConflict,
			ExpectedResponse: `{"released": false}`,
			BeforeTestFunc:   setup,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var left int
				err := app.DB.QueryRow(context.Background(), "SELECT SUM(quantity) FROM tickets").Scan(&left)
				require.NoError(t, err)
				assert.Equal(t, 3, left)
			},
		},
		{
			Name:             "withdraws tickets of the showing only",
			Method:           "POST",
			URL:              "/showings/1/tickets/release",
			Body:             strings.NewReader(`{"count": 2}`),
			ExpectedStatus:   http.StatusOK,
			ExpectedResponse: `{"released": true}`,
			BeforeTestFunc:   setup,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var showingLeft, otherLeft, records int
				err := app.DB.QueryRow(context.Background(), `
					SELECT
						COALESCE(SUM(quantity) FILTER (WHERE showing_id = 1), 0),
						COALESCE(SUM(quantity) FILTER (WHERE showing_id = 2), 0),
						COUNT(*)
					FROM tickets`).Scan(&showingLeft, &otherLeft, &records)
				require.NoError(t, err)
				assert.Equal(t, 0, showingLeft)
				assert.Equal(t, 1, otherLeft)
				assert.Equal(t, 3, records, "depleted tickets are kept")
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *TicketTestSuite) TestUpdateAndDeleteTicket() {
	setup := func(t testing.TB, app *TestApp) {
		resetInventory(t, app)
		insertTicket(t, app.DB, TestShowingId, 1, 4, TestTicketPrice)
		insertCart(t, app.DB)
		_, err := app.DB.Exec(context.Background(), `
			UPDATE tickets SET quantity = 3 WHERE id = 1;
			INSERT INTO cart_items (cart_id, ticket_id, quantity) VALUES (1, 1, 1);
			UPDATE carts SET total = 12.50 WHERE id = 1;`)
		require.NoError(t, err)
	}

	scenarios := []Scenario{
		{
			Name:           "changes the price without repricing carts",
			Method:         "PATCH",
			URL:            "/tickets/1",
			Body:           strings.NewReader(`{"price": "15"}`),
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: `{
				"ticket": {"ticketId": 1, "showingId": 1, "seatNumber": 1, "price": "15", "quantity": 3, "capacity": 4, "reserved": 1, "available": true}
			}`,
			BeforeTestFunc: setup,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var total string
				err := app.DB.QueryRow(context.Background(), "SELECT total::text FROM carts WHERE id = 1").Scan(&total)
				require.NoError(t, err)
				assert.Equal(t, "12.50", total)
			},
		},
		{
			Name:           "changes the quantity keeping reservations accounted",
			Method:         "PATCH",
			URL:            "/tickets/1",
			Body:           strings.NewReader(`{"quantity": 10}`),
			ExpectedStatus: http.StatusOK,
			ExpectedResponse: `{
				"ticket": {"ticketId": 1, "showingId": 1, "seatNumber": 1, "price": "12.5", "quantity": 10, "capacity": 11, "reserved": 1, "available": true}
			}`,
			BeforeTestFunc: setup,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				requireConserved(t, app.DB)
			},
		},
		{
			Name:             "refuses to delete a ticket held by a cart",
			Method:           "DELETE",
			URL:              "/tickets/1",
			ExpectedStatus:   http.StatusConflict,
			ExpectedResponse: `{"message": "ticket is held by one or more carts"}`,
			BeforeTestFunc:   setup,
		},
		{
			Name:           "deletes a free ticket",
			Method:         "DELETE",
			URL:            "/tickets/1",
			ExpectedStatus: http.StatusNoContent,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				resetInventory(t, app)
				insertTicket(t, app.DB, TestShowingId, 1, 4, TestTicketPrice)
			},
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				var count int
				err := app.DB.QueryRow(context.Background(), "SELECT COUNT(*) FROM tickets").Scan(&count)
				require.NoError(t, err)
				assert.Equal(t, 0, count)
			},
		},
		{
			Name:             "returns 404 for an unknown ticket",
			Method:           "GET",
			URL:              "/tickets/1",
			ExpectedStatus:   http.StatusNotFound,
			ExpectedResponse: `{"message": "ticket not found"}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}
