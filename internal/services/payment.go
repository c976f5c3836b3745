package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"birthdayclub/internal/domain"
)

// maxTransitionAttempts bounds re-reads after a lost conditional update. Paid and
// canceled are terminal, so the second read always settles the outcome.
const maxTransitionAttempts = 3

type paymentService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	userRepo       domain.UserRepository
	gateway        domain.PaymentGateway
	emailService   domain.EmailService
	logger         *slog.Logger
	currency       string
	location       *time.Location
	contextTimeout time.Duration
	now            func() time.Time
}

func NewPaymentService(eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	userRepo domain.UserRepository,
	gateway domain.PaymentGateway,
	emailService domain.EmailService,
	logger *slog.Logger,
	currency string,
	location *time.Location,
	timeout time.Duration,
) domain.PaymentService {
	if location == nil {
		location = time.Local
	}
	return &paymentService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		userRepo:       userRepo,
		gateway:        gateway,
		emailService:   emailService,
		logger:         logger,
		currency:       currency,
		location:       location,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// CreatePaymentIntent asks the gateway for a payment handle. Nothing is written,
// so a failed call leaves the guest pending and can simply be retried.
func (s *paymentService) CreatePaymentIntent(ctx context.Context, callerID, eventID string) (*domain.PaymentIntent, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	guest, err := s.guestRepo.GetByEventAndUser(ctx, eventID, callerID)
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	switch guest.PaymentStatus {
	case domain.PaymentStatusPaid:
		return nil, domain.ErrAlreadyPaid
	case domain.PaymentStatusCanceled:
		return nil, domain.ErrPaymentCanceled
	}
	if event.TicketPrice <= 0 {
		return nil, domain.ErrFreeEvent
	}

	req := domain.PaymentRequest{
		GuestID:      guest.ID,
		EventID:      event.ID,
		TicketNumber: guest.TicketNumber,
		Description:  event.Title,
		Amount:       event.TicketPrice,
		Currency:     s.currency,
	}
	if user, err := s.userRepo.GetByID(ctx, callerID); err == nil {
		req.CustomerName, req.CustomerEmail = user.Name, user.Email
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	handle, err := s.gateway.CreatePayment(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment creation failed", "provider", s.gateway.Name(), "guest_id", guest.ID, "err", err)
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, fmt.Errorf("create payment: %w", err)
		}
		return nil, &domain.Error{Kind: domain.ErrUpstreamUnavailable, Message: "payment provider unavailable"}
	}
	s.logger.InfoContext(ctx, "payment created", "provider", s.gateway.Name(), "guest_id", guest.ID, "payment_id", handle.PaymentID)

	return &domain.PaymentIntent{
		Provider:        s.gateway.Name(),
		GuestID:         guest.ID,
		EventID:         event.ID,
		PaymentID:       handle.PaymentID,
		ConfirmationURL: handle.ConfirmationURL,
		ClientToken:     handle.ClientToken,
		Amount:          event.TicketPrice,
		Currency:        s.currency,
	}, nil
}

// ApplyPaymentOutcome moves a pending guest to paid or canceled. Re-applying the
// current status is a no-op; leaving a terminal status is ErrInvalidTransition
// and changes nothing. Unknown event types are ignored.
func (s *paymentService) ApplyPaymentOutcome(ctx context.Context, o domain.PaymentOutcome) error {
	var target domain.PaymentStatus
	switch o.EventType {
	case domain.PaymentEventSucceeded:
		target = domain.PaymentStatusPaid
	case domain.PaymentEventCanceled:
		target = domain.PaymentStatusCanceled
	default:
		s.logger.DebugContext(ctx, "payment event ignored", "event_type", o.EventType, "guest_id", o.GuestID)
		return nil
	}
	if o.GuestID == "" {
		return domain.ErrGuestNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		guest, err := s.guestRepo.GetByID(ctx, o.GuestID)
		if err != nil {
			return fmt.Errorf("get guest: %w", err)
		}
		switch guest.PaymentStatus {
		case target:
			return nil
		case domain.PaymentStatusPending:
		default:
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, guest.PaymentStatus, target)
		}

		var qr *string
		if target == domain.PaymentStatusPaid && o.Reference != "" {
			ref := o.Reference
			qr = &ref
		}
		changed, err := s.guestRepo.TransitionPayment(ctx, guest.ID, domain.PaymentStatusPending, target, qr, s.now().UTC())
		if err != nil {
			return fmt.Errorf("transition payment: %w", err)
		}
		if !changed {
			continue
		}
		s.logger.InfoContext(ctx, "payment status changed", "guest_id", guest.ID, "status", target, "reference", o.Reference)
		if target == domain.PaymentStatusPaid {
			s.notifyPaymentConfirmed(ctx, guest, o.Reference)
		}
		return nil
	}
	return fmt.Errorf("transition payment: guest %s kept changing", o.GuestID)
}

func (s *paymentService) notifyPaymentConfirmed(ctx context.Context, guest *domain.EventGuest, reference string) {
	user, err := s.userRepo.GetByID(ctx, guest.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "payment email skipped", "guest_id", guest.ID, "err", err)
		return
	}
	event, err := s.eventRepo.GetByID(ctx, guest.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "payment email skipped", "guest_id", guest.ID, "err", err)
		return
	}
	err = s.emailService.SendPaymentConfirmed(ctx, &domain.PaymentConfirmedEmailData{
		Email:        user.Email,
		GuestName:    user.Name,
		EventTitle:   event.Title,
		EventDate:    event.EventDate.In(s.location),
		TicketNumber: guest.TicketNumber,
		Reference:    reference,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "payment email failed", "guest_id", guest.ID, "err", err)
	}
}

// HandleNotification verifies a webhook through the gateway and applies it.
// Every failure is logged and swallowed.
func (s *paymentService) HandleNotification(ctx context.Context, headers map[string][]string, body []byte) {
	outcome, err := s.gateway.VerifyNotification(ctx, headers, body)
	if err != nil {
		s.logger.WarnContext(ctx, "payment notification rejected", "provider", s.gateway.Name(), "err", err)
		return
	}
	err = s.ApplyPaymentOutcome(ctx, *outcome)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidTransition):
		s.logger.WarnContext(ctx, "payment notification ignored",
			"provider", s.gateway.Name(), "event_type", outcome.EventType, "guest_id", outcome.GuestID, "err", err)
	default:
		s.logger.ErrorContext(ctx, "payment notification failed",
			"provider", s.gateway.Name(), "event_type", outcome.EventType, "guest_id", outcome.GuestID, "err", err)
	}
}
