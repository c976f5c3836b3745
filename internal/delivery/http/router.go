package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"birthdayclub/internal/delivery/http/controllers"
	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events    *controllers.EventController
	Guests    *controllers.GuestController
	Payments  *controllers.PaymentController
	Interests *controllers.InterestController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events/create", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/feed", auth(c.Events.Feed))
	mux.HandleFunc("GET /events/my", auth(c.Events.ListMyEvents))
	mux.HandleFunc("GET /events/invite", c.Events.GetInvite)
	mux.HandleFunc("GET /events/{id}", auth(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{id}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("POST /events/{id}/invitations", auth(c.Events.SendInvitations))

	// Guests
	mux.HandleFunc("POST /events/{id}/join", auth(c.Guests.JoinEvent))
	mux.HandleFunc("GET /users/me/tickets", auth(c.Guests.ListMyTickets))

	// Payments; the webhook is authenticated by the provider signature.
	mux.HandleFunc("POST /payments/create-intent", auth(c.Payments.CreateIntent))
	mux.HandleFunc("POST /payments/webhook", c.Payments.Webhook)

	// Interests
	mux.HandleFunc("GET /interests", auth(c.Interests.ListInterests))
	mux.HandleFunc("GET /users/me/interests", auth(c.Interests.ListMyInterests))
	mux.HandleFunc("PUT /users/me/interests", auth(c.Interests.ReplaceMyInterests))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
