package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birthdayclub/internal/domain"
)

type paymentFixture struct {
	store   *memStore
	guests  *fakeGuestRepo
	gateway *fakeGateway
	emails  *fakeEmailService
	svc     *paymentService
	event   *domain.Event
	guest   *domain.EventGuest
}

func newPaymentFixture(t *testing.T, status domain.PaymentStatus) *paymentFixture {
	t.Helper()
	store := newMemStore()
	store.addUser(hostID, "Анна", "anna@example.com")
	store.addUser(guestAID, "Борис", "boris@example.com")
	event := &domain.Event{
		ID:          "ev-1",
		HostUserID:  hostID,
		Title:       "Board game night",
		EventDate:   time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC),
		TicketPrice: 150000,
		MaxGuests:   10,
		InviteCode:  "0123456789abcdef",
	}
	store.addEvent(event)
	guest := &domain.EventGuest{
		ID:            "guest-row-1",
		EventID:       event.ID,
		UserID:        guestAID,
		TicketNumber:  "MBC-MJUOHS00-0A1B2C3D",
		PaymentStatus: status,
	}
	store.addGuest(guest)

	guests := &fakeGuestRepo{s: store}
	gateway := &fakeGateway{handle: &domain.PaymentHandle{PaymentID: "pay-1", ConfirmationURL: "https://pay.example.com/pay-1"}}
	emails := &fakeEmailService{}
	svc := NewPaymentService(&fakeEventRepo{s: store}, guests, &fakeUserRepo{s: store}, gateway, emails,
		discardLogger(), "RUB", time.UTC, 5*time.Second).(*paymentService)
	return &paymentFixture{store: store, guests: guests, gateway: gateway, emails: emails, svc: svc, event: event, guest: guest}
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns gateway handle", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		intent, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		require.NoError(t, err)
		assert.Equal(t, "fake", intent.Provider)
		assert.Equal(t, f.guest.ID, intent.GuestID)
		assert.Equal(t, "pay-1", intent.PaymentID)
		assert.Equal(t, "https://pay.example.com/pay-1", intent.ConfirmationURL)
		assert.Equal(t, domain.Money(150000), intent.Amount)
		assert.Equal(t, "RUB", intent.Currency)

		require.NotNil(t, f.gateway.lastReq)
		assert.Equal(t, f.guest.ID, f.gateway.lastReq.GuestID)
		assert.Equal(t, f.guest.TicketNumber, f.gateway.lastReq.TicketNumber)
		assert.Equal(t, "boris@example.com", f.gateway.lastReq.CustomerEmail)
		assert.Equal(t, domain.PaymentStatusPending, f.store.guest(f.guest.ID).PaymentStatus)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		_, err := f.svc.CreatePaymentIntent(ctx, "", f.event.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("missing event", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, "nope")
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("caller is not a guest", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		_, err := f.svc.CreatePaymentIntent(ctx, hostID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrGuestNotFound)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPaid)
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
		assert.Nil(t, f.gateway.lastReq)
	})

	t.Run("canceled", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusCanceled)
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrPaymentCanceled)
	})

	t.Run("free event", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		free := *f.event
		free.TicketPrice = 0
		f.store.addEvent(&free)
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("gateway unconfigured", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.gateway.createErr = domain.ErrGatewayUnconfigured
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})

	t.Run("gateway failure", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.gateway.createErr = errors.New("connection reset")
		_, err := f.svc.CreatePaymentIntent(ctx, guestAID, f.event.ID)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Equal(t, domain.PaymentStatusPending, f.store.guest(f.guest.ID).PaymentStatus)
	})
}

func TestPaymentService_ApplyPaymentOutcome(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		from       domain.PaymentStatus
		eventType  string
		wantStatus domain.PaymentStatus
		wantErr    error
		wantEmails int
	}{
		{name: "pending to paid", from: domain.PaymentStatusPending, eventType: domain.PaymentEventSucceeded, wantStatus: domain.PaymentStatusPaid, wantEmails: 1},
		{name: "pending to canceled", from: domain.PaymentStatusPending, eventType: domain.PaymentEventCanceled, wantStatus: domain.PaymentStatusCanceled},
		{name: "paid again is a no-op", from: domain.PaymentStatusPaid, eventType: domain.PaymentEventSucceeded, wantStatus: domain.PaymentStatusPaid},
		{name: "canceled again is a no-op", from: domain.PaymentStatusCanceled, eventType: domain.PaymentEventCanceled, wantStatus: domain.PaymentStatusCanceled},
		{name: "paid cannot be canceled", from: domain.PaymentStatusPaid, eventType: domain.PaymentEventCanceled, wantStatus: domain.PaymentStatusPaid, wantErr: domain.ErrInvalidTransition},
		{name: "canceled cannot be paid", from: domain.PaymentStatusCanceled, eventType: domain.PaymentEventSucceeded, wantStatus: domain.PaymentStatusCanceled, wantErr: domain.ErrInvalidTransition},
		{name: "unknown event ignored", from: domain.PaymentStatusPending, eventType: "payment.waiting_for_capture", wantStatus: domain.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t, tt.from)
			err := f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: tt.eventType, GuestID: f.guest.ID, Reference: "pay-1"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, f.store.guest(f.guest.ID).PaymentStatus)
			assert.Equal(t, tt.wantEmails, f.emails.paymentCount())
		})
	}

	t.Run("stores gateway reference", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		require.NoError(t, f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: f.guest.ID, Reference: "pay-1"}))
		stored := f.store.guest(f.guest.ID)
		require.NotNil(t, stored.QRCodeData)
		assert.Equal(t, "pay-1", *stored.QRCodeData)
		assert.Equal(t, f.guest.TicketNumber, f.emails.payments[0].TicketNumber)
	})

	t.Run("redelivery sends one email", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		outcome := domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: f.guest.ID, Reference: "pay-1"}
		for i := 0; i < 3; i++ {
			require.NoError(t, f.svc.ApplyPaymentOutcome(ctx, outcome))
		}
		assert.Equal(t, 1, f.emails.paymentCount())
	})

	t.Run("unknown guest", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		err := f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: "nope"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lost race to the same status", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.guests.beforeTransition = func(g *domain.EventGuest) { g.PaymentStatus = domain.PaymentStatusPaid }
		err := f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: f.guest.ID})
		assert.NoError(t, err)
		assert.Zero(t, f.emails.paymentCount())
	})

	t.Run("lost race to the opposite status", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.guests.beforeTransition = func(g *domain.EventGuest) { g.PaymentStatus = domain.PaymentStatusPaid }
		err := f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: domain.PaymentEventCanceled, GuestID: f.guest.ID})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.PaymentStatusPaid, f.store.guest(f.guest.ID).PaymentStatus)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.guests.transitionErr = errors.New("disk full")
		err := f.svc.ApplyPaymentOutcome(ctx, domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: f.guest.ID})
		assert.Error(t, err)
		assert.Equal(t, domain.PaymentStatusPending, f.store.guest(f.guest.ID).PaymentStatus)
	})
}

func TestPaymentService_HandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("applies verified outcome", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.gateway.outcome = &domain.PaymentOutcome{EventType: domain.PaymentEventSucceeded, GuestID: f.guest.ID, Reference: "pay-1"}
		f.svc.HandleNotification(ctx, nil, []byte(`{}`))
		assert.Equal(t, domain.PaymentStatusPaid, f.store.guest(f.guest.ID).PaymentStatus)
	})

	t.Run("rejected signature changes nothing", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPending)
		f.gateway.verifyErr = domain.ErrInvalidSignature
		f.svc.HandleNotification(ctx, nil, []byte(`{}`))
		assert.Equal(t, domain.PaymentStatusPending, f.store.guest(f.guest.ID).PaymentStatus)
	})

	t.Run("invalid transition is swallowed", func(t *testing.T) {
		f := newPaymentFixture(t, domain.PaymentStatusPaid)
		f.gateway.outcome = &domain.PaymentOutcome{EventType: domain.PaymentEventCanceled, GuestID: f.guest.ID}
		f.svc.HandleNotification(ctx, nil, []byte(`{}`))
		assert.Equal(t, domain.PaymentStatusPaid, f.store.guest(f.guest.ID).PaymentStatus)
	})
}
