package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"birthdayclub/internal/domain"
)

type guestService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	location       *time.Location
	contextTimeout time.Duration
	now            func() time.Time
}

func NewGuestService(eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	location *time.Location,
	timeout time.Duration,
) domain.GuestService {
	if location == nil {
		location = time.Local
	}
	return &guestService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		location:       location,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// JoinEvent checks, in order: the event exists, the caller is not the host,
// and the invite code matches exactly. The host is rejected even with a wrong
// code. Duplicate and capacity checks happen inside the atomic insert,
// duplicate first.
func (s *guestService) JoinEvent(ctx context.Context, eventID, callerID, inviteCode string) (*domain.GuestTicket, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if callerID == event.HostUserID {
		return nil, domain.ErrHostCannotJoin
	}
	if subtle.ConstantTimeCompare([]byte(inviteCode), []byte(event.InviteCode)) != 1 {
		return nil, domain.ErrWrongInviteCode
	}

	now := s.now().UTC()
	guest := &domain.EventGuest{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		UserID:        callerID,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for attempt := 1; ; attempt++ {
		if guest.TicketNumber, err = generateTicketNumber(now); err != nil {
			return nil, fmt.Errorf("generate ticket number: %w", err)
		}
		err = s.guestRepo.Join(ctx, guest)
		if errors.Is(err, domain.ErrDuplicateTicket) && attempt < ticketAttempts {
			s.logger.WarnContext(ctx, "ticket number collision, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("join event: %w", err)
		}
		break
	}
	s.logger.InfoContext(ctx, "guest joined", "event_id", event.ID, "guest_id", guest.ID, "user_id", callerID)
	s.notifyTicketIssued(ctx, event, guest)

	return &domain.GuestTicket{
		GuestID:       guest.ID,
		EventID:       guest.EventID,
		UserID:        guest.UserID,
		TicketNumber:  guest.TicketNumber,
		PaymentStatus: guest.PaymentStatus,
	}, nil
}

// notifyTicketIssued is best effort; the join already succeeded.
func (s *guestService) notifyTicketIssued(ctx context.Context, event *domain.Event, guest *domain.EventGuest) {
	user, err := s.userRepo.GetByID(ctx, guest.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "ticket email skipped", "guest_id", guest.ID, "err", err)
		return
	}
	err = s.emailService.SendTicketIssued(ctx, &domain.TicketIssuedEmailData{
		Email:        user.Email,
		GuestName:    user.Name,
		EventTitle:   event.Title,
		EventDate:    event.EventDate.In(s.location),
		Location:     event.Location,
		TicketNumber: guest.TicketNumber,
		TicketPrice:  event.TicketPrice,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "ticket email failed", "guest_id", guest.ID, "err", err)
	}
}

func (s *guestService) ListTickets(ctx context.Context, userID string) ([]*domain.UserTicket, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.guestRepo.ListTicketsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}
