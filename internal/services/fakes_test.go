package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"birthdayclub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore backs the fake repositories so they can see each other's rows.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	interests map[string]*domain.Interest
	userInts  map[string][]string
	events    map[string]*domain.Event
	guests    map[string]*domain.EventGuest
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*domain.User),
		interests: make(map[string]*domain.Interest),
		userInts:  make(map[string][]string),
		events:    make(map[string]*domain.Event),
		guests:    make(map[string]*domain.EventGuest),
	}
}

func (s *memStore) addUser(id, name, email string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{ID: id, Name: name, Email: email}
	s.users[id] = u
	return u
}

func (s *memStore) addInterest(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests[id] = &domain.Interest{ID: id, Name: name}
}

func (s *memStore) addEvent(e *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
}

func (s *memStore) addGuest(g *domain.EventGuest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.guests[g.ID] = &cp
}

func (s *memStore) guest(id string) domain.EventGuest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.guests[id]
}

// guestCount must be called with mu held.
func (s *memStore) guestCount(eventID string) int {
	n := 0
	for _, g := range s.guests {
		if g.EventID == eventID {
			n++
		}
	}
	return n
}

// details must be called with mu held.
func (s *memStore) details(e *domain.Event, withGuests bool) *domain.EventDetails {
	cp := *e
	d := &domain.EventDetails{Event: &cp, CurrentGuests: s.guestCount(e.ID)}
	if u, ok := s.users[e.HostUserID]; ok {
		d.Host = &domain.UserSummary{ID: u.ID, Name: u.Name}
	}
	if in, ok := s.interests[e.InterestID]; ok {
		icp := *in
		d.Interest = &icp
	}
	if withGuests {
		d.Guests = []*domain.GuestDetails{}
		for _, g := range s.guests {
			if g.EventID != e.ID {
				continue
			}
			gcp := *g
			gd := &domain.GuestDetails{Guest: &gcp, User: domain.UserSummary{ID: g.UserID}}
			if u, ok := s.users[g.UserID]; ok {
				gd.User.Name = u.Name
			}
			d.Guests = append(d.Guests, gd)
		}
	}
	return d
}

type fakeEventRepo struct {
	s          *memStore
	createErrs []error // popped one per CreateInMonth call before the real insert
	creates    int
}

func (f *fakeEventRepo) hasEventInMonth(hostID, excludeID string, start, end time.Time) bool {
	for _, e := range f.s.events {
		if e.HostUserID == hostID && e.ID != excludeID && !e.EventDate.Before(start) && !e.EventDate.After(end) {
			return true
		}
	}
	return false
}

func (f *fakeEventRepo) CreateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.creates++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	if f.hasEventInMonth(e.HostUserID, "", monthStart, monthEnd) {
		return domain.ErrMonthlyLimitReached
	}
	cp := *e
	f.s.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) UpdateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	if f.hasEventInMonth(e.HostUserID, e.ID, monthStart, monthEnd) {
		return domain.ErrMonthlyLimitReached
	}
	if e.MaxGuests < f.s.guestCount(e.ID) {
		return domain.ErrCapacityBelowGuests
	}
	cp := *e
	f.s.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) GetByInviteCode(ctx context.Context, code string) (*domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.events {
		if e.InviteCode == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (f *fakeEventRepo) GetDetails(ctx context.Context, id string) (*domain.EventDetails, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return f.s.details(e, true), nil
}

func (f *fakeEventRepo) Feed(ctx context.Context, filter domain.FeedFilter) ([]*domain.EventDetails, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var all []*domain.EventDetails
	for _, e := range f.s.events {
		if e.EventDate.Before(filter.From) {
			continue
		}
		if filter.City != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(filter.City)) {
			continue
		}
		if filter.InterestID != "" && e.InterestID != filter.InterestID {
			continue
		}
		all = append(all, f.s.details(e, false))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Event.EventDate.Before(all[j].Event.EventDate) })
	total := len(all)
	off := filter.Pagination.Offset()
	if off > total {
		off = total
	}
	end := off + filter.Pagination.PageSize
	if end > total {
		end = total
	}
	return all[off:end], total, nil
}

func (f *fakeEventRepo) ListByHost(ctx context.Context, hostID string) ([]*domain.EventDetails, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*domain.EventDetails{}
	for _, e := range f.s.events {
		if e.HostUserID == hostID {
			out = append(out, f.s.details(e, true))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event.EventDate.After(out[j].Event.EventDate) })
	return out, nil
}

type fakeGuestRepo struct {
	s *memStore
	// beforeTransition runs before TransitionPayment compares the status,
	// letting a test simulate a concurrent writer.
	beforeTransition func(g *domain.EventGuest)
	transitionErr    error
	// ticketClashes makes the next n joins fail as if the ticket number were taken.
	ticketClashes int
	joinCalls     int
}

func (f *fakeGuestRepo) Join(ctx context.Context, g *domain.EventGuest) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.joinCalls++
	if f.ticketClashes > 0 {
		f.ticketClashes--
		return domain.ErrDuplicateTicket
	}
	e, ok := f.s.events[g.EventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	for _, existing := range f.s.guests {
		if existing.EventID == g.EventID && existing.UserID == g.UserID {
			return domain.ErrAlreadyJoined
		}
	}
	if f.s.guestCount(g.EventID) >= e.MaxGuests {
		return domain.ErrEventFull
	}
	cp := *g
	f.s.guests[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.EventGuest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	g, ok := f.s.guests[id]
	if !ok {
		return nil, domain.ErrGuestNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGuestRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventGuest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, g := range f.s.guests {
		if g.EventID == eventID && g.UserID == userID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, domain.ErrGuestNotFound
}

func (f *fakeGuestRepo) TransitionPayment(ctx context.Context, id string, from, to domain.PaymentStatus, qrCodeData *string, at time.Time) (bool, error) {
	if f.transitionErr != nil {
		return false, f.transitionErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	g, ok := f.s.guests[id]
	if !ok {
		return false, nil
	}
	if f.beforeTransition != nil {
		hook := f.beforeTransition
		f.beforeTransition = nil
		hook(g)
	}
	if g.PaymentStatus != from {
		return false, nil
	}
	g.PaymentStatus = to
	if qrCodeData != nil {
		qr := *qrCodeData
		g.QRCodeData = &qr
	}
	g.UpdatedAt = at
	return true, nil
}

func (f *fakeGuestRepo) ListTicketsByUser(ctx context.Context, userID string) ([]*domain.UserTicket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*domain.UserTicket{}
	for _, g := range f.s.guests {
		if g.UserID != userID {
			continue
		}
		e := f.s.events[g.EventID]
		gcp := *g
		out = append(out, &domain.UserTicket{Guest: &gcp, Event: f.s.details(e, false)})
	}
	return out, nil
}

type fakeInterestRepo struct {
	s          *memStore
	lastNames  []string
	replaceErr error
}

func (f *fakeInterestRepo) GetByID(ctx context.Context, id string) (*domain.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	in, ok := f.s.interests[id]
	if !ok {
		return nil, domain.ErrInterestNotFound
	}
	cp := *in
	return &cp, nil
}

func (f *fakeInterestRepo) List(ctx context.Context) ([]*domain.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*domain.Interest{}
	for _, in := range f.s.interests {
		cp := *in
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeInterestRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*domain.Interest{}
	for _, id := range f.s.userInts[userID] {
		cp := *f.s.interests[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInterestRepo) ReplaceForUser(ctx context.Context, userID string, names []string) ([]*domain.Interest, error) {
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.lastNames = append([]string(nil), names...)
	out := []*domain.Interest{}
	ids := []string{}
	for _, name := range names {
		var found *domain.Interest
		for _, in := range f.s.interests {
			if strings.EqualFold(in.Name, name) {
				found = in
				break
			}
		}
		if found == nil {
			found = &domain.Interest{ID: "int-" + strings.ToLower(name), Name: name}
			f.s.interests[found.ID] = found
		}
		ids = append(ids, found.ID)
		cp := *found
		out = append(out, &cp)
	}
	f.s.userInts[userID] = ids
	return out, nil
}

type fakeUserRepo struct {
	s   *memStore
	err error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// fakeEmailService records every message and fails recipients listed in failFor.
type fakeEmailService struct {
	mu          sync.Mutex
	tickets     []*domain.TicketIssuedEmailData
	payments    []*domain.PaymentConfirmedEmailData
	invitations []*domain.EventInvitationEmailData
	failFor     map[string]bool
	err         error
}

func (f *fakeEmailService) fail(to string) error {
	if f.err != nil {
		return f.err
	}
	if f.failFor[to] {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (f *fakeEmailService) SendTicketIssued(ctx context.Context, data *domain.TicketIssuedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.tickets = append(f.tickets, data)
	return nil
}

func (f *fakeEmailService) SendPaymentConfirmed(ctx context.Context, data *domain.PaymentConfirmedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.payments = append(f.payments, data)
	return nil
}

func (f *fakeEmailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) paymentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type fakeGateway struct {
	handle    *domain.PaymentHandle
	createErr error
	outcome   *domain.PaymentOutcome
	verifyErr error
	lastReq   *domain.PaymentRequest
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentHandle, error) {
	f.lastReq = &req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.handle, nil
}

func (f *fakeGateway) VerifyNotification(ctx context.Context, headers map[string][]string, body []byte) (*domain.PaymentOutcome, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.outcome, nil
}
