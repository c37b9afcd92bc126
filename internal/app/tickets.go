package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinema-ticket-inventory/api"
	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
)

func (app *Application) ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	showingId, err := readIDParam(r, "showingId", "showing ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tickets, err := app.tickets.ListTickets(r.Context(), showingId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.TicketListResponse{Tickets: toApiTickets(tickets)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ProvisionTicketsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showingId, err := readIDParam(r, "showingId", "showing ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ProvisionTicketsRequest

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

	tickets, err := app.tickets.ProvisionTickets(r.Context(), showingId, input.Count, input.UnitPrice)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	logger.Info("tickets provisioned", "showing_id", showingId, "count", len(tickets))

	err = app.writeJSON(w, http.StatusCreated, api.TicketListResponse{Tickets: toApiTickets(tickets)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseTicketsHandler(w http.ResponseWriter, r *http.Request) {
	showingId, err := readIDParam(r, "showingId", "showing ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ReleaseTicketsRequest

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

	released, err := app.tickets.ReleaseTickets(r.Context(), showingId, input.Count)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if !released {
		status = http.StatusConflict
	}

	err = app.writeJSON(w, status, api.ReleaseTicketsResponse{Released: released}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketId, err := readIDParam(r, "ticketId", "ticket ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.tickets.GetTicket(r.Context(), ticketId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.TicketResponse{Ticket: toApiTicket(ticket)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketId, err := readIDParam(r, "ticketId", "ticket ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.UpdateTicketRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Price == nil && input.Quantity == nil {
		app.badRequestResponse(w, r, errors.New("at least one of price or quantity must be provided"))
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ticket, err := app.tickets.EditTicket(r.Context(), ticketId, input.Price, input.Quantity)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.TicketResponse{Ticket: toApiTicket(ticket)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketId, err := readIDParam(r, "ticketId", "ticket ID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.tickets.DeleteTicket(r.Context(), ticketId)
	if err != nil {
		app.inventoryErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toApiTicket(ticket *domain.Ticket) api.Ticket {
	return api.Ticket{
		TicketId:   ticket.ID,
		ShowingId:  ticket.ShowingID,
		SeatNumber: ticket.SeatNumber,
		Price:      ticket.Price,
		Quantity:   ticket.Quantity,
		Capacity:   ticket.Capacity,
		Reserved:   ticket.Reserved(),
		Available:  ticket.Available(),
	}
}

func toApiTickets(tickets []domain.Ticket) []api.Ticket {
	result := make([]api.Ticket, 0, len(tickets))
	for i := range tickets {
		result = append(result, toApiTicket(&tickets[i]))
	}

	return result
}
