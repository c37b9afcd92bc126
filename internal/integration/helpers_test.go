package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"reference": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for i := range cookies {
		req.AddCookie(&cookies[i])
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}

		switch nested := m[k].(type) {
		case map[string]any:
			cleanMap(nested)
		case []any:
			for _, item := range nested {
				if im, ok := item.(map[string]any); ok {
					cleanMap(im)
				}
			}
		}
	}
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	sql, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(sql))
	require.NoError(t, err)
}

func flushAllCache(t testing.TB, client *redis.Client) {
	t.Helper()

	require.NoError(t, client.FlushAll(context.Background()).Err())
}

// resetInventory leaves two showings without tickets, carts or payments.
func resetInventory(t testing.TB, app *TestApp) {
	t.Helper()

	executeSQLFile(t, app.DB, "testdata/inventory_down.sql")
	flushAllCache(t, app.RedisClient)
	executeSQLFile(t, app.DB, "testdata/inventory_up.sql")
}

func insertTicket(t testing.TB, db *pgxpool.Pool, showingId, seat, quantity int, price string) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(), `
		INSERT INTO tickets (showing_id, seat_number, price, quantity, capacity)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id`, showingId, seat, price, quantity).Scan(&id)
	require.NoError(t, err)

	return id
}

func insertCart(t testing.TB, db *pgxpool.Pool) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(), `INSERT INTO carts DEFAULT VALUES RETURNING id`).Scan(&id)
	require.NoError(t, err)

	return id
}

// requireConserved checks that every ticket's reserved units equal what carts hold.
func requireConserved(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	rows, err := db.Query(context.Background(), `
		SELECT t.id, t.capacity - t.quantity, COALESCE(SUM(ci.quantity), 0)
		FROM tickets t
		LEFT JOIN cart_items ci ON ci.ticket_id = t.id
		GROUP BY t.id, t.capacity, t.quantity`)
	require.NoError(t, err)
	defer rows.Close()

	for rows.Next() {
		var id, reserved, held int
		require.NoError(t, rows.Scan(&id, &reserved, &held))
		require.Equal(t, reserved, held, "ticket %d: reserved units do not match cart items", id)
	}
	require.NoError(t, rows.Err())
}
