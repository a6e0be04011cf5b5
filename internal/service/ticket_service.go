package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows, the save hook and the change tracker.
type TicketService struct {
	repos      repository.Repositories
	tx         repository.Transactor
	picker     AgentPicker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Repositories repository.Repositories
	Transactor   repository.Transactor
	Picker       AgentPicker
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	PriorityID  int64
	Type        domain.TicketType
	AreaID      *int64
	Category    domain.TicketCategory
}

// AttachmentInput describes an uploaded file already placed in storage.
type AttachmentInput struct {
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
}

// TicketDetail is a ticket with its thread.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.TicketComment
	Attachments []domain.Attachment
	SLA         *domain.SLACalculation
}

// TicketListFilter describes listing filters; requesters only ever see their own tickets.
type TicketListFilter struct {
	AssigneeID *int64
	Statuses   []domain.TicketStatus
	SLAStates  []domain.SLAState
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	picker := deps.Picker
	if picker == nil {
		picker = NewRandomAgentPicker()
	}
	return &TicketService{
		repos:      deps.Repositories,
		tx:         deps.Transactor,
		picker:     picker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
		now:        clockOrDefault(deps.Clock),
	}
}

// SaveTicket persists ticket and refreshes its derived fields: requester
// criticality, closure timestamp, resolution time and the SLA pair plus its
// mirror. The base write, the SLA write and the mirror upsert share one transaction.
func (s *TicketService) SaveTicket(ctx context.Context, ticket *domain.Ticket) error {
	now := s.now()

	if ticket.RequesterID != 0 {
		profile, err := s.repos.Profiles.GetOrCreate(ctx, ticket.RequesterID)
		if err != nil {
			return apperrors.MapError(err)
		}
		ticket.RequesterCritical = profile.IsCritical
	}

	if ticket.ID == 0 && ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	if ticket.SLAState == "" {
		ticket.SLAState = domain.SLAStateNoRule
	}
	applyClosure(ticket, now)
	ticket.UpdatedAt = now

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if ticket.ID == 0 {
			if err := repos.Tickets.Create(ctx, ticket); err != nil {
				return err
			}
		} else if err := repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.syncSLA(ctx, repos, ticket, now)
	})
	if err != nil {
		return notFoundOr(err, "ticket", ticket.ID)
	}
	return nil
}

// RefreshSLA recomputes the SLA of a stored ticket against the current time
// without touching its base fields.
func (s *TicketService) RefreshSLA(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		ticket, err = repos.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		return s.syncSLA(ctx, repos, ticket, s.now())
	})
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	return ticket, nil
}

// syncSLA writes the deadline/state pair only when it changed and always
// overwrites the mirror.
func (s *TicketService) syncSLA(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, now time.Time) error {
	result, err := s.evaluateSLA(ctx, repos, ticket, nil, now)
	if err != nil {
		return err
	}
	if result.DiffersFrom(ticket) {
		if err := repos.Tickets.UpdateSLA(ctx, ticket.ID, result.Deadline, result.State); err != nil {
			return err
		}
		ticket.SLADeadline = result.Deadline
		ticket.SLAState = result.State
	}
	s.metrics.RecordSLA(string(result.State))
	return repos.SLACalculation.Upsert(ctx, &domain.SLACalculation{
		TicketID:      ticket.ID,
		RuleID:        result.RuleID(),
		TargetMinutes: result.TargetMinutes,
		Deadline:      result.Deadline,
		State:         result.State,
		ComputedAt:    now,
	})
}

// evaluateSLA resolves priority and rule for ticket and runs the engine. A
// missing priority degrades to no_rule. When priority is non-nil it is used
// instead of the stored one.
func (s *TicketService) evaluateSLA(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, priority *domain.Priority, now time.Time) (sla.Result, error) {
	if priority == nil && ticket.PriorityID != 0 {
		stored, err := repos.Priorities.GetByID(ctx, ticket.PriorityID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return sla.Result{}, err
		default:
			priority = stored
		}
	}

	var rules sla.RuleTable
	if priority != nil && ticket.Type != "" {
		rule, err := repos.Rules.Find(ctx, priority.ID, ticket.Type)
		if err != nil {
			return sla.Result{}, err
		}
		if rule != nil {
			rules = sla.RuleTable{*rule}
		}
	}
	return sla.Compute(sla.InputFor(ticket, priority, now), rules), nil
}

func applyClosure(ticket *domain.Ticket, now time.Time) {
	if ticket.Status.IsFinished() {
		if ticket.ClosedAt == nil {
			closedAt := now
			ticket.ClosedAt = &closedAt
		}
	} else {
		ticket.ClosedAt = nil
	}

	if ticket.ClosedAt == nil {
		ticket.ResolutionTime = nil
		return
	}
	resolution := ticket.ClosedAt.Sub(ticket.CreatedAt)
	ticket.ResolutionTime = &resolution
}

// CreateTicket opens a ticket for requester and auto-assigns an agent.
func (s *TicketService) CreateTicket(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if requester == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	fields := map[string]string{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields["title"] = "title is required"
	}
	if input.Type != "" && !input.Type.Valid() {
		fields["type"] = "unknown ticket type"
	}
	category := input.Category
	if category == "" {
		category = domain.TicketCategorySupport
	}
	if !category.Valid() {
		fields["category"] = "unknown category"
	}
	if input.PriorityID <= 0 {
		fields["priority_id"] = "priority is required"
	} else if _, err := s.repos.Priorities.GetByID(ctx, input.PriorityID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		fields["priority_id"] = "unknown priority"
	}
	if input.AreaID != nil {
		if _, err := s.repos.Areas.GetByID(ctx, *input.AreaID); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			fields["area_id"] = "unknown area"
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	staff, err := s.repos.Users.ListStaff(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignee := s.picker.PickAgent(staff)

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		RequesterID: requester.ID,
		PriorityID:  input.PriorityID,
		Status:      domain.TicketStatusOpen,
		Type:        input.Type,
		AreaID:      input.AreaID,
		Category:    category,
	}
	if assignee != nil {
		ticket.AssigneeID = int64Ptr(assignee.ID)
	}

	if err := s.SaveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  int64Ptr(requester.ID),
		Payload: events.TicketCreatedPayload{
			Ticket:    *ticket,
			Requester: *requester,
			Assignee:  assignee,
		},
	})
	return ticket, nil
}

// StaffUpdateTicket applies a change set on behalf of a staff member.
func (s *TicketService) StaffUpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, input TicketChangeInput, comment string) (*domain.Ticket, error) {
	if !actor.CanHandleTickets() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	changes, err := s.BuildChangeSet(ctx, input)
	if err != nil {
		return nil, err
	}

	prevStatus := ticket.Status
	prevAssignee := ticket.AssigneeID

	if _, err := s.UpdateTicket(ctx, ticket, actor, changes, comment); err != nil {
		return nil, err
	}

	payload := events.TicketUpdatedPayload{
		Ticket:          *ticket,
		Actor:           actor,
		StatusChanged:   ticket.Status != prevStatus,
		AssigneeChanged: !sameID(prevAssignee, ticket.AssigneeID),
	}
	if payload.AssigneeChanged && changes.Assignee != nil {
		payload.NewAssignee = changes.Assignee.User
	}
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  int64Ptr(actor.ID),
		Payload:  payload,
	})

	// The history COMMENT row is written by UpdateTicket; the thread copy is not.
	if body := strings.TrimSpace(comment); body != "" {
		note := &domain.TicketComment{
			TicketID:  ticket.ID,
			AuthorID:  actor.ID,
			Body:      body,
			CreatedAt: s.now(),
		}
		if err := s.repos.Comments.Create(ctx, note); err != nil {
			return nil, apperrors.MapError(err)
		}
		publishEvent(ctx, s.dispatcher, s.now, events.Event{
			Type:     events.EventCommentAdded,
			TicketID: ticket.ID,
			ActorID:  int64Ptr(actor.ID),
			Payload: events.CommentAddedPayload{
				Ticket:  *ticket,
				Author:  *actor,
				Comment: *note,
			},
		})
	}
	return ticket, nil
}

// CloseTicket is the staff shortcut for moving a ticket to closed.
func (s *TicketService) CloseTicket(ctx context.Context, actor *domain.User, ticketID int64, comment string) (*domain.Ticket, error) {
	closed := domain.TicketStatusClosed
	return s.StaffUpdateTicket(ctx, actor, ticketID, TicketChangeInput{Status: &closed}, comment)
}

// EditTicket lets the requester adjust the descriptive fields of their own ticket.
func (s *TicketService) EditTicket(ctx context.Context, requester *domain.User, ticketID int64, input TicketChangeInput) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, requester, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != requester.ID {
		return nil, apperrors.NewForbidden("only the requester can edit this ticket")
	}
	if input.Status != nil || input.PriorityID != nil || input.AssigneeID != nil || input.ClearAssignee {
		return nil, apperrors.NewForbidden("requesters may only change title, description, category and area")
	}
	changes, err := s.BuildChangeSet(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.UpdateTicket(ctx, ticket, requester, changes, "")
}

// AddComment appends a comment to the ticket thread and records it in the history.
func (s *TicketService) AddComment(ctx context.Context, author *domain.User, ticketID int64, body string) (*domain.TicketComment, error) {
	ticket, err := s.loadVisible(ctx, author, ticketID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewFieldValidationError(map[string]string{"body": "comment must not be empty"})
	}

	now := s.now()
	comment := &domain.TicketComment{
		TicketID:  ticket.ID,
		AuthorID:  author.ID,
		Body:      body,
		CreatedAt: now,
	}
	entry := &domain.TicketHistory{
		TicketID:  ticket.ID,
		ActorID:   int64Ptr(author.ID),
		Action:    domain.HistoryActionComment,
		NewValue:  body,
		CreatedAt: now,
	}
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Comments.Create(ctx, comment); err != nil {
			return err
		}
		return repos.History.Create(ctx, entry)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordHistory(string(entry.Action))

	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		ActorID:  int64Ptr(author.ID),
		Payload: events.CommentAddedPayload{
			Ticket:  *ticket,
			Author:  *author,
			Comment: *comment,
		},
	})
	return comment, nil
}

// AddAttachment stores attachment metadata and logs it.
func (s *TicketService) AddAttachment(ctx context.Context, actor *domain.User, ticketID int64, input AttachmentInput) (*domain.Attachment, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if strings.TrimSpace(input.FileName) == "" {
		fields["file_name"] = "file name is required"
	}
	if strings.TrimSpace(input.StorageKey) == "" {
		fields["storage_key"] = "storage key is required"
	}
	if input.SizeBytes < 0 {
		fields["size_bytes"] = "size must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidationError(fields)
	}

	attachment := &domain.Attachment{
		TicketID:    ticket.ID,
		UploadedBy:  actor.ID,
		StorageKey:  input.StorageKey,
		FileName:    strings.TrimSpace(input.FileName),
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		CreatedAt:   s.now(),
	}
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Attachments.Create(ctx, attachment); err != nil {
			return err
		}
		_, err := s.logAttachment(ctx, repos, ticket, actor, attachment, true)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// RemoveAttachment deletes attachment metadata and logs the removal. Staff and
// the uploader may remove an attachment.
func (s *TicketService) RemoveAttachment(ctx context.Context, actor *domain.User, ticketID, attachmentID int64) error {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return err
	}
	attachment, err := s.repos.Attachments.GetByID(ctx, attachmentID)
	if err != nil || attachment.TicketID != ticket.ID {
		if err == nil || errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", map[string]any{"id": attachmentID})
		}
		return apperrors.MapError(err)
	}
	if !actor.CanHandleTickets() && attachment.UploadedBy != actor.ID {
		return apperrors.NewForbidden("cannot remove this attachment")
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Attachments.Delete(ctx, attachment.ID); err != nil {
			return err
		}
		_, err := s.logAttachment(ctx, repos, ticket, actor, attachment, false)
		return err
	})
	if err != nil {
		return notFoundOr(err, "attachment", attachmentID)
	}
	return nil
}

// LogAttachment writes a single attachment history entry.
func (s *TicketService) LogAttachment(ctx context.Context, ticket *domain.Ticket, actor *domain.User, file *domain.Attachment, added bool) (*domain.TicketHistory, error) {
	entry, err := s.logAttachment(ctx, s.repos, ticket, actor, file, added)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

func (s *TicketService) logAttachment(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, actor *domain.User, file *domain.Attachment, added bool) (*domain.TicketHistory, error) {
	action := domain.HistoryActionAttachDel
	if added {
		action = domain.HistoryActionAttachAdd
	}
	entry := &domain.TicketHistory{
		TicketID: ticket.ID,
		ActorID:  actorID(actor),
		Action:   action,
		Field:    "attachment",
		NewValue: file.FileName,
		Metadata: map[string]any{
			"filename":     file.FileName,
			"size":         file.SizeBytes,
			"content_type": file.ContentType,
		},
		CreatedAt: s.now(),
	}
	if err := repos.History.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.metrics.RecordHistory(string(action))
	return entry, nil
}

// GetTicket returns the ticket with comments, attachments and SLA mirror.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*TicketDetail, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.repos.Attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail := &TicketDetail{Ticket: ticket, Comments: comments, Attachments: attachments}
	calc, err := s.repos.SLACalculation.GetByTicket(ctx, ticket.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, apperrors.MapError(err)
	default:
		detail.SLA = calc
	}
	return detail, nil
}

// ListTickets lists tickets visible to actor, critical requesters first.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.TicketFilter{
		AssigneeID: filter.AssigneeID,
		Statuses:   filter.Statuses,
		SLAStates:  filter.SLAStates,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !actor.CanHandleTickets() {
		repoFilter.RequesterID = int64Ptr(actor.ID)
	}
	tickets, err := s.repos.Tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns a ticket's audit log newest first.
func (s *TicketService) ListHistory(ctx context.Context, actor *domain.User, ticketID int64, filter repository.HistoryFilter) ([]domain.TicketHistory, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repos.History.ListByTicket(ctx, ticket.ID, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// loadVisible fetches a ticket the actor may see: its requester or staff.
// Hidden tickets report the same not found error as missing ones.
func (s *TicketService) loadVisible(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	if ticket.RequesterID != actor.ID && !actor.CanHandleTickets() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return ticket, nil
}

func actorID(actor *domain.User) *int64 {
	if actor == nil {
		return nil
	}
	return int64Ptr(actor.ID)
}
