package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/cinema-ticket-inventory/api"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

func (app *Application) CreateCartHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	cart, err := app.carts.GetOrCreateCart(r.Context(), nil)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	if previous := app.sessionCartId(r); previous != 0 {
		logger.Info("session cart replaced", "previous_cart_id", previous, "cart_id", cart.ID)
	}

	app.rememberCart(r, cart.ID)

	headers := http.Header{"Location": []string{fmt.Sprintf("/carts/%d", cart.ID)}}

	err = app.writeJSON(w, http.StatusCreated, api.CartResponse{Cart: toApiCart(cart)}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCurrentCartHandler(w http.ResponseWriter, r *http.Request) {
	cartId := app.sessionCartId(r)
	if cartId == 0 {
		app.notFoundResponseWithErr(w, r, fmt.Errorf("there is no cart bound to the current session"))
		return
	}

	app.writeCart(w, r, cartId)
}

func (app *Application) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	cartId, err := readIDParam(r, "cartId", "cart ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.writeCart(w, r, cartId)
}

func (app *Application) writeCart(w http.ResponseWriter, r *http.Request, cartId int) {
	cart, err := app.carts.GetOrCreateCart(r.Context(), &cartId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.CartResponse{Cart: toApiCart(cart)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) AddCartItemHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	cartId, err := readIDParam(r, "cartId", "cart ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.AddCartItemRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	cart, err := app.carts.AddTicketToCart(r.Context(), cartId, input.TicketId, input.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			logger.Warn("cart item rejected: not enough tickets left", "cart_id", cartId, "ticket_id", input.TicketId)
		}

		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.CartResponse{Cart: toApiCart(cart)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	cartId, err := readIDParam(r, "cartId", "cart ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticketId, err := readIDParam(r, "ticketId", "ticket ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cart, err := app.carts.RemoveTicketFromCart(r.Context(), cartId, ticketId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.CartResponse{Cart: toApiCart(cart)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiCart(cart *domain.Cart) api.Cart {
	items := make([]api.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, api.CartItem{
			TicketId:  item.TicketID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}

	return api.Cart{
		CartId:    cart.ID,
		Total:     cart.Total,
		Items:     items,
		CreatedAt: cart.CreatedAt,
	}
}
