package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventSuccessResponse is the success envelope for endpoints returning one stored event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventViewSuccessResponse is the success envelope for endpoints returning one event view.
type EventViewSuccessResponse struct {
	Data  domain.EventView  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventViewListSuccessResponse is the success envelope for GET /events/my.
type EventViewListSuccessResponse struct {
	Data  []domain.EventView `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// FeedPage is the data of GET /events/feed.
type FeedPage struct {
	Items []domain.EventView     `json:"items"`
	Meta  helpers.PaginationMeta `json:"meta"`
}

// FeedSuccessResponse is the success envelope for GET /events/feed.
type FeedSuccessResponse struct {
	Data  FeedPage          `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a monthly event hosted by the caller. A host may have at most one event per calendar month. event_date accepts RFC 3339 or a zone-less "2006-01-02T15:04" in the club time zone. The response includes the generated invite_code.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body domain.CreateEventInput true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (error.fields lists rejected fields)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (interest)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (host already has an event this month)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/create [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateEventInput
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, req)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// Feed godoc
// @Summary Upcoming events feed
// @Description Lists events dated from now on, soonest first. city matches the event location case-insensitively. Invite codes and ticket numbers are never included.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param city query string false "City to match against the location"
// @Param interest_id query string false "Interest ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.FeedSuccessResponse "data.items contains events, data.meta the pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/feed [get]
func (c *EventController) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	interestID := strings.TrimSpace(q.Get("interest_id"))
	if interestID != "" && !helpers.IsUUID(interestID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "interest_id must be a valid UUID")
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.Feed(r.Context(), q.Get("city"), interestID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FeedPage{
		Items: domain.ProjectEvents(items, ""),
		Meta:  helpers.NewPaginationMeta(params, total),
	})
}

// ListMyEvents godoc
// @Summary Events hosted by the caller
// @Description Lists the caller's hosted events with their guests, newest first. Includes invite codes and ticket numbers.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventViewListSuccessResponse "data contains the hosted events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/my [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListHosted(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.ProjectEvents(items, userID))
}

// GetInvite godoc
// @Summary Preview an invitation
// @Description Public preview of the event an invite code belongs to. The guest list, invite code and ticket numbers are not included.
// @Tags events
// @Produce json
// @Param code query string true "Invite code"
// @Success 200 {object} controllers.EventViewSuccessResponse "data contains the event preview"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/invite [get]
func (c *EventController) GetInvite(w http.ResponseWriter, r *http.Request) {
	d, err := c.Service.GetByInviteCode(r.Context(), strings.TrimSpace(r.URL.Query().Get("code")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.ProjectEvent(d, ""))
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with host, interest and guest list. invite_code and guests' ticket_number are included only when the caller is the host.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventViewSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	d, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.ProjectEvent(d, userID))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Host-only partial update. Omitted fields are unchanged. A new date must keep the host at one event per month, and max_guests may not drop below the number of joined guests.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body domain.UpdateEventInput true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateEventInput
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SendInvitationsRequest is the request body for POST /events/{id}/invitations.
type SendInvitationsRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,max=50,dive,required,email"`
}

// SendInvitationsResponse reports how many invitations went out and which addresses failed.
type SendInvitationsResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// SendInvitationsSuccessResponse is the success envelope for POST /events/{id}/invitations.
type SendInvitationsSuccessResponse struct {
	Data  SendInvitationsResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SendInvitations godoc
// @Summary Email invitations
// @Description Host-only. Emails the invite link (with the invite code) to each address. Duplicate addresses are sent once. Nothing is stored.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body SendInvitationsRequest true "Addresses to invite (1 to 50)"
// @Success 200 {object} controllers.SendInvitationsSuccessResponse "data.sent counts delivered emails, data.failed lists the rest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/invitations [post]
func (c *EventController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sent, failed, err := c.Service.SendInvitations(r.Context(), eventID, userID, req.Emails)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SendInvitationsResponse{Sent: sent, Failed: failed})
}
