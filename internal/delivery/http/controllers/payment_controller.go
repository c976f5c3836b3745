package controllers

import (
	"io"
	"log/slog"
	"net/http"

	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

// maxWebhookBytes caps gateway notification bodies.
const maxWebhookBytes = 64 << 10

type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateIntentRequest is the request body for POST /payments/create-intent.
type CreateIntentRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

// CreateIntentSuccessResponse is the success envelope for POST /payments/create-intent.
type CreateIntentSuccessResponse struct {
	Data  *domain.PaymentIntent `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CreateIntent godoc
// @Summary Start a ticket payment
// @Description Creates a payment with the configured provider for the caller's ticket and returns the confirmation handle. Nothing is stored, so the call can be retried.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateIntentRequest true "Event to pay for"
// @Success 200 {object} controllers.CreateIntentSuccessResponse "data contains the payment handle"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (free event)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or guest)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already paid, payment canceled)"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/create-intent [post]
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateIntentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	intent, err := c.Service.CreatePaymentIntent(r.Context(), userID, req.EventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, intent)
}

// WebhookAck is the body returned to the payment provider.
type WebhookAck struct {
	Received bool `json:"received"`
}

// Webhook godoc
// @Summary Payment provider notification
// @Description Receives signed payment notifications. The signature is verified by the configured provider. The response is always 200 so the provider does not retry; rejected or failed notifications are only logged.
// @Tags payments
// @Accept json
// @Produce json
// @Param body body object true "Provider notification"
// @Success 200 {object} controllers.WebhookAck
// @Router /payments/webhook [post]
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		c.Logger.WarnContext(r.Context(), "webhook body not read", "err", err)
	} else {
		c.Service.HandleNotification(r.Context(), r.Header, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}` + "\n"))
}
