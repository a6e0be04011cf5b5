package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const descriptionLogLimit = 140

// ChangeSet holds the proposed value of every tracked ticket attribute. A nil
// field means the attribute is not part of the change.
type ChangeSet struct {
	Status      *domain.TicketStatus
	Priority    *domain.Priority
	Assignee    *AssigneeChange
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Area        *domain.Area
}

// AssigneeChange sets the assignee; a nil User unassigns the ticket.
type AssigneeChange struct {
	User *domain.User
}

// TicketChangeInput is the id-based form of a ChangeSet as received from callers.
type TicketChangeInput struct {
	Status        *domain.TicketStatus
	PriorityID    *int64
	AssigneeID    *int64
	ClearAssignee bool
	Title         *string
	Description   *string
	Category      *domain.TicketCategory
	AreaID        *int64
}

// BuildChangeSet validates input and resolves its references.
func (s *TicketService) BuildChangeSet(ctx context.Context, input TicketChangeInput) (ChangeSet, error) {
	var changes ChangeSet
	fields := map[string]string{}

	if input.Status != nil {
		if input.Status.Valid() {
			changes.Status = input.Status
		} else {
			fields["status"] = "unknown status"
		}
	}
	if input.Category != nil {
		if input.Category.Valid() {
			changes.Category = input.Category
		} else {
			fields["category"] = "unknown category"
		}
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fields["title"] = "title is required"
		} else {
			changes.Title = &title
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		changes.Description = &description
	}

	if input.PriorityID != nil {
		priority, err := s.repos.Priorities.GetByID(ctx, *input.PriorityID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			fields["priority_id"] = "unknown priority"
		case err != nil:
			return ChangeSet{}, apperrors.MapError(err)
		default:
			changes.Priority = priority
		}
	}

	switch {
	case input.ClearAssignee:
		changes.Assignee = &AssigneeChange{}
	case input.AssigneeID != nil:
		user, err := s.repos.Users.GetByID(ctx, *input.AssigneeID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			fields["assignee_id"] = "unknown user"
		case err != nil:
			return ChangeSet{}, apperrors.MapError(err)
		case !user.IsActive || !user.CanHandleTickets():
			fields["assignee_id"] = "assignee must be an active staff member"
		default:
			changes.Assignee = &AssigneeChange{User: user}
		}
	}

	if input.AreaID != nil {
		area, err := s.repos.Areas.GetByID(ctx, *input.AreaID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			fields["area_id"] = "unknown area"
		case err != nil:
			return ChangeSet{}, apperrors.MapError(err)
		default:
			changes.Area = area
		}
	}

	if len(fields) > 0 {
		return ChangeSet{}, apperrors.NewFieldValidationError(fields)
	}
	return changes, nil
}

// UpdateTicket diffs changes against ticket, writes one history entry per
// attribute that actually changes (plus one for a non-empty comment), applies
// the new values and saves the ticket once. History is durable before the save
// so a retried save never duplicates entries.
func (s *TicketService) UpdateTicket(ctx context.Context, ticket *domain.Ticket, actor *domain.User, changes ChangeSet, comment string) (*domain.Ticket, error) {
	now := s.now()
	var entries []*domain.TicketHistory
	record := func(action domain.HistoryAction, field, oldValue, newValue string, metadata map[string]any) {
		entries = append(entries, &domain.TicketHistory{
			TicketID:  ticket.ID,
			ActorID:   actorID(actor),
			Action:    action,
			Field:     field,
			OldValue:  oldValue,
			NewValue:  newValue,
			Metadata:  metadata,
			CreatedAt: now,
		})
	}

	if changes.Status != nil && *changes.Status != ticket.Status {
		record(domain.HistoryActionStatus, "status", ticket.Status.Label(), changes.Status.Label(), nil)
		ticket.Status = *changes.Status
	}

	if changes.Priority != nil && changes.Priority.ID != ticket.PriorityID {
		oldName, err := s.priorityName(ctx, ticket.PriorityID)
		if err != nil {
			return nil, err
		}
		deadlineOld := ticket.SLADeadline
		ticket.PriorityID = changes.Priority.ID
		result, err := s.evaluateSLA(ctx, s.repos, ticket, changes.Priority, now)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		record(domain.HistoryActionPriority, "priority", oldName, changes.Priority.Name, map[string]any{
			"deadline_old": formatDeadline(deadlineOld),
			"deadline_new": formatDeadline(result.Deadline),
		})
	}

	if changes.Assignee != nil {
		var newID *int64
		newName := ""
		if changes.Assignee.User != nil {
			newID = int64Ptr(changes.Assignee.User.ID)
			newName = changes.Assignee.User.Username
		}
		if !sameID(ticket.AssigneeID, newID) {
			oldName, err := s.username(ctx, ticket.AssigneeID)
			if err != nil {
				return nil, err
			}
			record(domain.HistoryActionAssignee, "assignee", oldName, newName, nil)
			ticket.AssigneeID = newID
		}
	}

	if changes.Title != nil && *changes.Title != ticket.Title {
		record(domain.HistoryActionTitle, "title", ticket.Title, *changes.Title, nil)
		ticket.Title = *changes.Title
	}

	if changes.Description != nil && *changes.Description != ticket.Description {
		record(domain.HistoryActionDescription, "description",
			truncateForLog(ticket.Description), truncateForLog(*changes.Description), nil)
		ticket.Description = *changes.Description
	}

	if changes.Category != nil && *changes.Category != ticket.Category {
		record(domain.HistoryActionCategory, "category", ticket.Category.Label(), changes.Category.Label(), nil)
		ticket.Category = *changes.Category
	}

	if changes.Area != nil && !sameID(ticket.AreaID, int64Ptr(changes.Area.ID)) {
		oldName, err := s.areaName(ctx, ticket.AreaID)
		if err != nil {
			return nil, err
		}
		record(domain.HistoryActionArea, "area", oldName, changes.Area.Name, nil)
		ticket.AreaID = int64Ptr(changes.Area.ID)
	}

	if comment = strings.TrimSpace(comment); comment != "" {
		record(domain.HistoryActionComment, "", "", comment, nil)
	}

	if len(entries) > 0 {
		err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
			for _, entry := range entries {
				if err := repos.History.Create(ctx, entry); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, entry := range entries {
			s.metrics.RecordHistory(string(entry.Action))
		}
	}

	if err := s.SaveTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) priorityName(ctx context.Context, id int64) (string, error) {
	if id == 0 {
		return "", nil
	}
	priority, err := s.repos.Priorities.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return priority.Name, nil
}

func (s *TicketService) username(ctx context.Context, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	user, err := s.repos.Users.GetByID(ctx, *id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return user.Username, nil
}

func (s *TicketService) areaName(ctx context.Context, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	area, err := s.repos.Areas.GetByID(ctx, *id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return area.Name, nil
}

// truncateForLog keeps description history rows bounded.
func truncateForLog(s string) string {
	if utf8.RuneCountInString(s) <= descriptionLogLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:descriptionLogLimit]) + "…"
}

func formatDeadline(deadline *time.Time) any {
	if deadline == nil {
		return nil
	}
	return deadline.UTC().Format(time.RFC3339)
}
