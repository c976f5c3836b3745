package controllers

import (
	"log/slog"
	"net/http"

	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// JoinEventRequest is the request body for POST /events/{id}/join.
type JoinEventRequest struct {
	InviteCode string `json:"invite_code"`
}

// JoinEventSuccessResponse is the success envelope for POST /events/{id}/join.
type JoinEventSuccessResponse struct {
	Data  *domain.GuestTicket `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// JoinEvent godoc
// @Summary Join an event
// @Description Joins the event as a guest with its invite code. The new ticket starts with payment_status pending. The host cannot join their own event.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body JoinEventRequest true "Invite code"
// @Success 200 {object} controllers.JoinEventSuccessResponse "data contains the issued ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (host cannot join)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (wrong invite code)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already joined, event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/join [post]
func (c *GuestController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req JoinEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ticket, err := c.Service.JoinEvent(r.Context(), eventID, userID, req.InviteCode)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// TicketView is one joined event with the caller's own guest record.
type TicketView struct {
	Guest *domain.EventGuest `json:"guest"`
	Event domain.EventView   `json:"event"`
}

// TicketsSuccessResponse is the success envelope for GET /users/me/tickets.
type TicketsSuccessResponse struct {
	Data  []TicketView      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMyTickets godoc
// @Summary Caller's tickets
// @Description Lists the events the caller joined together with their guest record (ticket number, payment status, payment reference once paid).
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.TicketsSuccessResponse "data contains the tickets"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/tickets [get]
func (c *GuestController) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListTickets(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]TicketView, 0, len(items))
	for _, t := range items {
		out = append(out, TicketView{Guest: t.Guest, Event: domain.ProjectEvent(t.Event, userID)})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}
