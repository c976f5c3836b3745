package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"birthdayclub/internal/delivery/http/helpers"
	"birthdayclub/internal/delivery/http/middleware"
	"birthdayclub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	hostID   = "host-1"
	guestID  = "guest-1"
	eventID  = "6f1c1c3e-4b7a-4d8e-9a77-3f3f1d2a9b10"
	interest = "0b9cd5a0-1f0e-4b4c-8f0a-5c2c7e9d0e11"
)

// request builds a JSON request. An empty userID leaves the context unauthenticated.
func request(method, target, body, userID string, pathValues map[string]string) *http.Request {
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw), "response must be valid JSON envelope")
	if dest != nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}
}

func sampleDetails(withGuests bool) *domain.EventDetails {
	at := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	d := &domain.EventDetails{
		Event: &domain.Event{
			ID:          eventID,
			HostUserID:  hostID,
			InterestID:  interest,
			Title:       "Board game night",
			EventDate:   at,
			Location:    "Москва, Лофт",
			TicketPrice: 150000,
			MaxGuests:   10,
			InviteCode:  "0123456789abcdef",
			Status:      domain.EventStatusPlanned,
		},
		Host:          &domain.UserSummary{ID: hostID, Name: "Анна"},
		Interest:      &domain.Interest{ID: interest, Name: "Board games"},
		CurrentGuests: 1,
	}
	if withGuests {
		d.Guests = []*domain.GuestDetails{{
			Guest: &domain.EventGuest{ID: "g-1", EventID: eventID, UserID: guestID, TicketNumber: "MBC-ABC-01234567", PaymentStatus: domain.PaymentStatusPending, CreatedAt: at},
			User:  domain.UserSummary{ID: guestID, Name: "Борис"},
		}}
	}
	return d
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err error

	created      *domain.Event
	updated      *domain.Event
	details      *domain.EventDetails
	list         []*domain.EventDetails
	total        int
	sent         int
	failed       []string
	lastHostID   string
	lastCallerID string
	lastEventID  string
	lastCode     string
	lastCity     string
	lastInterest string
	lastParams   domain.PaginationParams
	lastCreate   domain.CreateEventInput
	lastUpdate   domain.UpdateEventInput
	lastEmails   []string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, hostID string, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastHostID, f.lastCreate = hostID, in
	return f.created, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, callerID string, in domain.UpdateEventInput) (*domain.Event, error) {
	f.lastEventID, f.lastCallerID, f.lastUpdate = eventID, callerID, in
	return f.updated, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	f.lastEventID = eventID
	return f.details, f.err
}

func (f *fakeEventService) GetByInviteCode(ctx context.Context, code string) (*domain.EventDetails, error) {
	f.lastCode = code
	return f.details, f.err
}

func (f *fakeEventService) Feed(ctx context.Context, city, interestID string, params domain.PaginationParams) ([]*domain.EventDetails, int, error) {
	f.lastCity, f.lastInterest, f.lastParams = city, interestID, params
	return f.list, f.total, f.err
}

func (f *fakeEventService) ListHosted(ctx context.Context, hostID string) ([]*domain.EventDetails, error) {
	f.lastHostID = hostID
	return f.list, f.err
}

func (f *fakeEventService) SendInvitations(ctx context.Context, eventID, callerID string, emails []string) (int, []string, error) {
	f.lastEventID, f.lastCallerID, f.lastEmails = eventID, callerID, emails
	return f.sent, f.failed, f.err
}

// fakeGuestService implements domain.GuestService for handler tests.
type fakeGuestService struct {
	err          error
	ticket       *domain.GuestTicket
	tickets      []*domain.UserTicket
	lastEventID  string
	lastCallerID string
	lastCode     string
}

func (f *fakeGuestService) JoinEvent(ctx context.Context, eventID, callerID, inviteCode string) (*domain.GuestTicket, error) {
	f.lastEventID, f.lastCallerID, f.lastCode = eventID, callerID, inviteCode
	return f.ticket, f.err
}

func (f *fakeGuestService) ListTickets(ctx context.Context, userID string) ([]*domain.UserTicket, error) {
	f.lastCallerID = userID
	return f.tickets, f.err
}

// fakePaymentService implements domain.PaymentService for handler tests.
type fakePaymentService struct {
	err           error
	intent        *domain.PaymentIntent
	lastCallerID  string
	lastEventID   string
	notifications int
	lastHeaders   map[string][]string
	lastBody      []byte
}

func (f *fakePaymentService) CreatePaymentIntent(ctx context.Context, callerID, eventID string) (*domain.PaymentIntent, error) {
	f.lastCallerID, f.lastEventID = callerID, eventID
	return f.intent, f.err
}

func (f *fakePaymentService) ApplyPaymentOutcome(ctx context.Context, outcome domain.PaymentOutcome) error {
	return f.err
}

func (f *fakePaymentService) HandleNotification(ctx context.Context, headers map[string][]string, body []byte) {
	f.notifications++
	f.lastHeaders, f.lastBody = headers, body
}

// fakeInterestService implements domain.InterestService for handler tests.
type fakeInterestService struct {
	err       error
	items     []*domain.Interest
	lastUser  string
	lastNames []string
}

func (f *fakeInterestService) List(ctx context.Context) ([]*domain.Interest, error) {
	return f.items, f.err
}

func (f *fakeInterestService) ListForUser(ctx context.Context, userID string) ([]*domain.Interest, error) {
	f.lastUser = userID
	return f.items, f.err
}

func (f *fakeInterestService) ReplaceForUser(ctx context.Context, userID string, names []string) ([]*domain.Interest, error) {
	f.lastUser, f.lastNames = userID, names
	return f.items, f.err
}
