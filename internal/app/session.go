package app

import "net/http"

type sessionKey string

const (
	SessionKeyCartId = sessionKey("cartID")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) rememberCart(r *http.Request, cartID int) {
	app.sessionManager.Put(r.Context(), SessionKeyCartId.String(), cartID)
}

// sessionCartId returns the cart bound to the caller's session, or zero.
func (app *Application) sessionCartId(r *http.Request) int {
	return app.sessionManager.GetInt(r.Context(), SessionKeyCartId.String())
}
