package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"birthdayclub/internal/domain"
	"birthdayclub/internal/validation"
)

type eventService struct {
	eventRepo      domain.EventRepository
	interestRepo   domain.InterestRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	location       *time.Location
	publicBaseURL  string
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns the event side of the lifecycle manager. Month
// boundaries for the one-event-per-month rule are computed in location.
func NewEventService(eventRepo domain.EventRepository,
	interestRepo domain.InterestRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	location *time.Location,
	publicBaseURL string,
	timeout time.Duration,
) domain.EventService {
	if location == nil {
		location = time.Local
	}
	return &eventService{
		eventRepo:      eventRepo,
		interestRepo:   interestRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		location:       location,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Zone-less layouts are read in the club time zone.
var localDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseEventDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func invalidDate() error {
	ve := domain.NewValidationError()
	ve.Add("event_date", "must be a valid date and time")
	return ve
}

func (s *eventService) CreateEvent(ctx context.Context, hostID string, in domain.CreateEventInput) (*domain.Event, error) {
	if hostID == "" {
		return nil, domain.ErrUnauthenticated
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	date, err := parseEventDate(in.EventDate, s.location)
	if err != nil {
		return nil, invalidDate()
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.interestRepo.GetByID(ctx, in.InterestID); err != nil {
		return nil, fmt.Errorf("get interest: %w", err)
	}

	monthStart, monthEnd := domain.MonthBounds(date, s.location)
	now := s.now().UTC()
	event := &domain.Event{
		ID:          uuid.NewString(),
		HostUserID:  hostID,
		InterestID:  in.InterestID,
		Title:       in.Title,
		Description: in.Description,
		EventDate:   date.UTC(),
		Location:    in.Location,
		TicketPrice: in.TicketPrice,
		MaxGuests:   in.MaxGuests,
		Status:      domain.EventStatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for attempt := 1; ; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}
		event.InviteCode = code
		err = s.eventRepo.CreateInMonth(ctx, event, monthStart, monthEnd)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateInviteCode) && attempt < inviteCodeAttempts {
			s.logger.WarnContext(ctx, "invite code collision, retrying", "attempt", attempt)
			continue
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "host_id", hostID)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, in domain.UpdateEventInput) (*domain.Event, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	for _, p := range []*string{in.Title, in.Description, in.Location} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.HostUserID != callerID {
		return nil, domain.ErrNotEventHost
	}

	if in.Title != nil {
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Location != nil {
		event.Location = *in.Location
	}
	if in.TicketPrice != nil {
		event.TicketPrice = *in.TicketPrice
	}
	if in.MaxGuests != nil {
		event.MaxGuests = *in.MaxGuests
	}
	if in.EventDate != nil {
		date, err := parseEventDate(*in.EventDate, s.location)
		if err != nil {
			return nil, invalidDate()
		}
		event.EventDate = date.UTC()
	}
	event.UpdatedAt = s.now().UTC()

	monthStart, monthEnd := domain.MonthBounds(event.EventDate, s.location)
	if err := s.eventRepo.UpdateInMonth(ctx, event, monthStart, monthEnd); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	d, err := s.eventRepo.GetDetails(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return d, nil
}

// GetByInviteCode returns the public preview of the invited event, without guests.
func (s *eventService) GetByInviteCode(ctx context.Context, code string) (*domain.EventDetails, error) {
	if code == "" {
		ve := domain.NewValidationError()
		ve.Add("code", "is required")
		return nil, ve
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	d, err := s.eventRepo.GetDetails(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	d.Guests = nil
	return d, nil
}

func (s *eventService) Feed(ctx context.Context, city, interestID string, params domain.PaginationParams) ([]*domain.EventDetails, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.eventRepo.Feed(ctx, domain.FeedFilter{
		From:       s.now().UTC(),
		City:       strings.TrimSpace(city),
		InterestID: strings.TrimSpace(interestID),
		Pagination: params,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("feed: %w", err)
	}
	return items, total, nil
}

func (s *eventService) ListHosted(ctx context.Context, hostID string) ([]*domain.EventDetails, error) {
	if hostID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.eventRepo.ListByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list hosted events: %w", err)
	}
	return items, nil
}

// SendInvitations emails the invite link to each address. Addresses that could
// not be sent are returned in failed; nothing is stored.
func (s *eventService) SendInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if event.HostUserID != callerID {
		return 0, nil, domain.ErrNotEventHost
	}

	hostName := "Birthday Club host"
	if host, err := s.userRepo.GetByID(ctx, callerID); err == nil && strings.TrimSpace(host.Name) != "" {
		hostName = strings.TrimSpace(host.Name)
	}
	inviteURL := s.publicBaseURL + "/events/invite?code=" + url.QueryEscape(event.InviteCode)

	failed = []string{}
	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		data := &domain.EventInvitationEmailData{
			Email:      email,
			HostName:   hostName,
			EventTitle: event.Title,
			EventDate:  event.EventDate.In(s.location),
			Location:   event.Location,
			InviteCode: event.InviteCode,
			InviteURL:  inviteURL,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation not sent", "event_id", eventID, "email", email, "err", err)
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
