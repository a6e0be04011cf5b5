package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventCommentAdded  EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload is published once a new ticket is persisted.
type TicketCreatedPayload struct {
	Ticket    domain.Ticket `json:"ticket"`
	Requester domain.User   `json:"requester"`
	Assignee  *domain.User  `json:"assignee,omitempty"`
}

// TicketUpdatedPayload is published after staff applies a change set.
type TicketUpdatedPayload struct {
	Ticket          domain.Ticket `json:"ticket"`
	Actor           *domain.User  `json:"actor,omitempty"`
	StatusChanged   bool          `json:"status_changed"`
	AssigneeChanged bool          `json:"assignee_changed"`
	NewAssignee     *domain.User  `json:"new_assignee,omitempty"`
}

// CommentAddedPayload is published after a comment is stored.
type CommentAddedPayload struct {
	Ticket  domain.Ticket        `json:"ticket"`
	Author  domain.User          `json:"author"`
	Comment domain.TicketComment `json:"comment"`
}
