package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// memDB is an in-memory stand-in for Postgres. WithinTx snapshots the state and
// restores it when the callback fails.
type memDB struct {
	mu            sync.Mutex
	seq           int64
	users         map[int64]domain.User
	profiles      map[int64]domain.UserProfile
	priorities    map[int64]domain.Priority
	rules         map[int64]domain.SLARule
	areas         map[int64]domain.Area
	tickets       map[int64]domain.Ticket
	calcs         map[int64]domain.SLACalculation
	attachments   map[int64]domain.Attachment
	faqs          map[int64]domain.FAQ
	history       []domain.TicketHistory
	comments      []domain.TicketComment
	notifications []domain.Notification

	ticketWrites int
	slaWrites    int
	failNotify   error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[int64]domain.User{},
		profiles:    map[int64]domain.UserProfile{},
		priorities:  map[int64]domain.Priority{},
		rules:       map[int64]domain.SLARule{},
		areas:       map[int64]domain.Area{},
		tickets:     map[int64]domain.Ticket{},
		calcs:       map[int64]domain.SLACalculation{},
		attachments: map[int64]domain.Attachment{},
		faqs:        map[int64]domain.FAQ{},
	}
}

func (db *memDB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *memDB) repos() repository.Repositories {
	return repository.Repositories{
		Users:          fakeUsers{db},
		Profiles:       fakeProfiles{db},
		Priorities:     fakePriorities{db},
		Rules:          fakeRules{db},
		Areas:          fakeAreas{db},
		Tickets:        fakeTickets{db},
		SLACalculation: fakeCalcs{db},
		History:        fakeHistory{db},
		Comments:       fakeComments{db},
		Attachments:    fakeAttachments{db},
		Notifications:  fakeNotifications{db},
		FAQs:           fakeFAQs{db},
	}
}

type memSnapshot struct {
	seq           int64
	users         map[int64]domain.User
	profiles      map[int64]domain.UserProfile
	priorities    map[int64]domain.Priority
	rules         map[int64]domain.SLARule
	areas         map[int64]domain.Area
	tickets       map[int64]domain.Ticket
	calcs         map[int64]domain.SLACalculation
	attachments   map[int64]domain.Attachment
	history       []domain.TicketHistory
	comments      []domain.TicketComment
	notifications []domain.Notification
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		seq:           db.seq,
		users:         maps.Clone(db.users),
		profiles:      maps.Clone(db.profiles),
		priorities:    maps.Clone(db.priorities),
		rules:         maps.Clone(db.rules),
		areas:         maps.Clone(db.areas),
		tickets:       maps.Clone(db.tickets),
		calcs:         maps.Clone(db.calcs),
		attachments:   maps.Clone(db.attachments),
		history:       slices.Clone(db.history),
		comments:      slices.Clone(db.comments),
		notifications: slices.Clone(db.notifications),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seq = s.seq
	db.users = s.users
	db.profiles = s.profiles
	db.priorities = s.priorities
	db.rules = s.rules
	db.areas = s.areas
	db.tickets = s.tickets
	db.calcs = s.calcs
	db.attachments = s.attachments
	db.history = s.history
	db.comments = s.comments
	db.notifications = s.notifications
}

// WithinTx implements repository.Transactor.
func (db *memDB) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	snap := db.snapshot()
	if err := fn(db.repos()); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) addUser(u domain.User) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID == 0 {
		u.ID = db.nextID()
	}
	db.users[u.ID] = u
	return &u
}

func (db *memDB) addPriority(p domain.Priority) *domain.Priority {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID == 0 {
		p.ID = db.nextID()
	}
	db.priorities[p.ID] = p
	return &p
}

func (db *memDB) addRule(r domain.SLARule) *domain.SLARule {
	db.mu.Lock()
	defer db.mu.Unlock()
	if r.ID == 0 {
		r.ID = db.nextID()
	}
	db.rules[r.ID] = r
	return &r
}

func (db *memDB) addArea(a domain.Area) *domain.Area {
	db.mu.Lock()
	defer db.mu.Unlock()
	if a.ID == 0 {
		a.ID = db.nextID()
	}
	db.areas[a.ID] = a
	return &a
}

func (db *memDB) ticket(id int64) domain.Ticket {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tickets[id]
}

func (db *memDB) ticketPtr(id int64) *domain.Ticket {
	t := db.ticket(id)
	return &t
}

func (db *memDB) historyFor(ticketID int64) []domain.TicketHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []domain.TicketHistory
	for _, h := range db.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out
}

func (db *memDB) notificationsFor(userID int64) []domain.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []domain.Notification
	for _, n := range db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	user.ID = f.db.nextID()
	user.CreatedAt = t0
	f.db.users[user.ID] = *user
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) ListStaff(_ context.Context) ([]domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.User
	for _, u := range f.db.users {
		if u.IsActive && u.CanHandleTickets() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProfiles struct{ db *memDB }

func (f fakeProfiles) GetOrCreate(_ context.Context, userID int64) (*domain.UserProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[userID]
	if !ok {
		p = domain.UserProfile{UserID: userID}
		f.db.profiles[userID] = p
	}
	return &p, nil
}

func (f fakeProfiles) Update(_ context.Context, profile *domain.UserProfile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.profiles[profile.UserID]; !ok {
		return pgx.ErrNoRows
	}
	f.db.profiles[profile.UserID] = *profile
	return nil
}

func (f fakeProfiles) NationalIDTaken(_ context.Context, nationalID string, exceptUserID int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.profiles {
		if p.UserID != exceptUserID && p.NationalID != nil && *p.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}

type fakePriorities struct{ db *memDB }

func (f fakePriorities) Create(_ context.Context, priority *domain.Priority) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.priorities {
		if p.Key == priority.Key {
			return uniqueViolation("priorities_key_key")
		}
	}
	priority.ID = f.db.nextID()
	f.db.priorities[priority.ID] = *priority
	return nil
}

func (f fakePriorities) Update(_ context.Context, priority *domain.Priority) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.priorities[priority.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.db.priorities[priority.ID] = *priority
	return nil
}

func (f fakePriorities) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (f fakePriorities) List(_ context.Context) ([]domain.Priority, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := mapValues(f.db.priorities)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f fakePriorities) NextSortOrder(_ context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	next := 0
	for _, p := range f.db.priorities {
		next = max(next, p.SortOrder)
	}
	return next + 1, nil
}

func (f fakePriorities) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.priorities[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.priorities, id)
	for rid, r := range f.db.rules {
		if r.PriorityID == id {
			delete(f.db.rules, rid)
		}
	}
	return nil
}

type fakeRules struct{ db *memDB }

func (f fakeRules) Create(_ context.Context, rule *domain.SLARule) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.rules {
		if r.PriorityID == rule.PriorityID && r.TicketType == rule.TicketType {
			return uniqueViolation("sla_rules_priority_id_ticket_type_key")
		}
	}
	rule.ID = f.db.nextID()
	f.db.rules[rule.ID] = *rule
	return nil
}

func (f fakeRules) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.rules[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.rules, id)
	return nil
}

func (f fakeRules) List(_ context.Context) ([]domain.SLARule, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := mapValues(f.db.rules)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRules) Find(_ context.Context, priorityID int64, ticketType domain.TicketType) (*domain.SLARule, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.rules {
		if r.PriorityID == priorityID && r.TicketType == ticketType {
			return &r, nil
		}
	}
	return nil, nil
}

type fakeAreas struct{ db *memDB }

func (f fakeAreas) Create(_ context.Context, area *domain.Area) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, a := range f.db.areas {
		if a.Key == area.Key || a.Name == area.Name {
			return uniqueViolation("areas_key_key")
		}
	}
	area.ID = f.db.nextID()
	f.db.areas[area.ID] = *area
	return nil
}

func (f fakeAreas) GetByID(_ context.Context, id int64) (*domain.Area, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.areas[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (f fakeAreas) List(_ context.Context) ([]domain.Area, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := mapValues(f.db.areas)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f fakeAreas) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.areas[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.areas, id)
	return nil
}

type fakeTickets struct{ db *memDB }

func (f fakeTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	ticket.ID = f.db.nextID()
	f.db.tickets[ticket.ID] = *ticket
	f.db.ticketWrites++
	return nil
}

func (f fakeTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	next := *ticket
	next.SLADeadline = stored.SLADeadline
	next.SLAState = stored.SLAState
	next.CreatedAt = stored.CreatedAt
	next.RequesterID = stored.RequesterID
	f.db.tickets[ticket.ID] = next
	f.db.ticketWrites++
	return nil
}

func (f fakeTickets) UpdateSLA(_ context.Context, id int64, deadline *time.Time, state domain.SLAState) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.SLADeadline = deadline
	stored.SLAState = state
	f.db.tickets[id] = stored
	f.db.slaWrites++
	return nil
}

func (f fakeTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f fakeTickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.db.tickets {
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssigneeID != nil && !sameID(t.AssigneeID, filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.SLAStates) > 0 && !slices.Contains(filter.SLAStates, t.SLAState) {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequesterCritical != out[j].RequesterCritical {
			return out[i].RequesterCritical
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f fakeTickets) ListOverdue(_ context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.db.tickets {
		if t.Status.IsFinished() || t.SLAState != domain.SLAStatePending || t.SLADeadline == nil {
			continue
		}
		if t.SLADeadline.Before(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SLADeadline.Before(*out[j].SLADeadline) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeTickets) CountByPriority(_ context.Context, priorityID int64) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	count := 0
	for _, t := range f.db.tickets {
		if t.PriorityID == priorityID {
			count++
		}
	}
	return count, nil
}

func (f fakeTickets) CountByArea(_ context.Context, areaID int64) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	count := 0
	for _, t := range f.db.tickets {
		if t.AreaID != nil && *t.AreaID == areaID {
			count++
		}
	}
	return count, nil
}

func (f fakeTickets) SetRequesterCritical(_ context.Context, requesterID int64, critical bool) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for id, t := range f.db.tickets {
		if t.RequesterID == requesterID && t.RequesterCritical != critical {
			t.RequesterCritical = critical
			f.db.tickets[id] = t
			n++
		}
	}
	return n, nil
}

type fakeCalcs struct{ db *memDB }

func (f fakeCalcs) Upsert(_ context.Context, calc *domain.SLACalculation) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.calcs[calc.TicketID] = *calc
	return nil
}

func (f fakeCalcs) GetByTicket(_ context.Context, ticketID int64) (*domain.SLACalculation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.calcs[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

type fakeHistory struct{ db *memDB }

func (f fakeHistory) Create(_ context.Context, entry *domain.TicketHistory) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	entry.ID = f.db.nextID()
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	f.db.history = append(f.db.history, *entry)
	return nil
}

func (f fakeHistory) ListByTicket(_ context.Context, ticketID int64, filter repository.HistoryFilter) ([]domain.TicketHistory, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.TicketHistory
	for i := len(f.db.history) - 1; i >= 0; i-- {
		h := f.db.history[i]
		if h.TicketID != ticketID {
			continue
		}
		if filter.Action != nil && h.Action != *filter.Action {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

type fakeComments struct{ db *memDB }

func (f fakeComments) Create(_ context.Context, comment *domain.TicketComment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	comment.ID = f.db.nextID()
	f.db.comments = append(f.db.comments, *comment)
	return nil
}

func (f fakeComments) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketComment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.TicketComment
	for _, c := range f.db.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAttachments struct{ db *memDB }

func (f fakeAttachments) Create(_ context.Context, attachment *domain.Attachment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	attachment.ID = f.db.nextID()
	f.db.attachments[attachment.ID] = *attachment
	return nil
}

func (f fakeAttachments) GetByID(_ context.Context, id int64) (*domain.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (f fakeAttachments) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.attachments, id)
	return nil
}

func (f fakeAttachments) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Attachment
	for _, a := range f.db.attachments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotifications struct{ db *memDB }

func (f fakeNotifications) CreateBatch(_ context.Context, rows []*domain.Notification) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, n := range rows {
		if f.db.failNotify != nil {
			return f.db.failNotify
		}
		n.ID = f.db.nextID()
		f.db.notifications = append(f.db.notifications, *n)
	}
	return nil
}

func (f fakeNotifications) ListByUser(_ context.Context, userID int64, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Notification
	for i := len(f.db.notifications) - 1; i >= 0; i-- {
		n := f.db.notifications[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeNotifications) UnreadCount(_ context.Context, userID int64) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	count := 0
	for _, n := range f.db.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f fakeNotifications) MarkRead(_ context.Context, id, userID int64) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, n := range f.db.notifications {
		if n.ID == id && n.UserID == userID && !n.IsRead {
			f.db.notifications[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f fakeNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for i, row := range f.db.notifications {
		if row.UserID == userID && !row.IsRead {
			f.db.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// fakeCache is a map-backed repository.Cache that stores values by reference.
type fakeCache struct {
	values  map[string]any
	getErr  error
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]any{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) error {
	if c.getErr != nil {
		return c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	summary, ok := v.(*domain.ReportSummary)
	target, okDest := dest.(*domain.ReportSummary)
	if !ok || !okDest {
		return errors.New("unsupported cache value")
	}
	*target = *summary
	return nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.values[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}

// fixedClock is a settable clock.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFAQs struct{ db *memDB }

func (f fakeFAQs) Create(_ context.Context, faq *domain.FAQ) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	faq.ID = f.db.nextID()
	faq.CreatedAt = t0
	f.db.faqs[faq.ID] = *faq
	return nil
}

func (f fakeFAQs) GetByID(_ context.Context, id int64) (*domain.FAQ, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	faq, ok := f.db.faqs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &faq, nil
}

func (f fakeFAQs) Update(_ context.Context, faq *domain.FAQ) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.faqs[faq.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.db.faqs[faq.ID] = *faq
	return nil
}

func (f fakeFAQs) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.faqs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.faqs, id)
	return nil
}

func (f fakeFAQs) List(_ context.Context, filter repository.FAQFilter) ([]domain.FAQ, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var out []domain.FAQ
	for _, faq := range f.db.faqs {
		if filter.ActiveOnly && !faq.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(faq.Question), search) &&
			!strings.Contains(strings.ToLower(faq.Answer), search) {
			continue
		}
		out = append(out, faq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mapValues collects the values of m into a slice in unspecified order
// (equivalent of slices.Collect(maps.Values(m)), which requires Go 1.23).
func mapValues[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
