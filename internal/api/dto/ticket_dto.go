package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriorityID  int64  `json:"priority_id"`
	Type        string `json:"type"`
	AreaID      *int64 `json:"area_id"`
	Category    string `json:"category"`
}

// UpdateTicketRequest carries the fields to change; absent fields are untouched.
type UpdateTicketRequest struct {
	Status        *string `json:"status"`
	PriorityID    *int64  `json:"priority_id"`
	AssigneeID    *int64  `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	AreaID        *int64  `json:"area_id"`
	Comment       string  `json:"comment"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Comment string `json:"comment"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// AttachmentRequest describes an uploaded file already placed in storage.
type AttachmentRequest struct {
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	RequesterID       int64                 `json:"requester_id"`
	AssigneeID        *int64                `json:"assignee_id"`
	PriorityID        int64                 `json:"priority_id"`
	Status            domain.TicketStatus   `json:"status"`
	StatusLabel       string                `json:"status_label"`
	Type              domain.TicketType     `json:"type"`
	AreaID            *int64                `json:"area_id"`
	Category          domain.TicketCategory `json:"category"`
	RequesterCritical bool                  `json:"requester_critical"`
	SLADeadline       *time.Time            `json:"sla_deadline"`
	SLAState          domain.SLAState       `json:"sla_state"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	ClosedAt          *time.Time            `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description       string               `json:"description"`
	ResolutionSeconds *int64               `json:"resolution_seconds"`
	SLA               *SLAResponse         `json:"sla,omitempty"`
	Comments          []CommentResponse    `json:"comments"`
	Attachments       []AttachmentResponse `json:"attachments"`
}

// SLAResponse mirrors the stored SLA calculation.
type SLAResponse struct {
	RuleID        *int64          `json:"rule_id"`
	TargetMinutes *int            `json:"target_minutes"`
	Deadline      *time.Time      `json:"deadline"`
	State         domain.SLAState `json:"state"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID          int64     `json:"id"`
	UploadedBy  int64     `json:"uploaded_by"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID        int64                `json:"id"`
	Action    domain.HistoryAction `json:"action"`
	ActorID   *int64               `json:"actor_id"`
	Field     string               `json:"field"`
	OldValue  string               `json:"old_value"`
	NewValue  string               `json:"new_value"`
	Metadata  map[string]any       `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewTicketSummary maps a ticket to its list representation.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:                ticket.ID,
		Title:             ticket.Title,
		RequesterID:       ticket.RequesterID,
		AssigneeID:        ticket.AssigneeID,
		PriorityID:        ticket.PriorityID,
		Status:            ticket.Status,
		StatusLabel:       ticket.Status.Label(),
		Type:              ticket.Type,
		AreaID:            ticket.AreaID,
		Category:          ticket.Category,
		RequesterCritical: ticket.RequesterCritical,
		SLADeadline:       ticket.SLADeadline,
		SLAState:          ticket.SLAState,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		ClosedAt:          ticket.ClosedAt,
	}
}

// NewTicketSummaries maps a slice of tickets.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return items
}

// NewTicketDetail maps a ticket with its thread and SLA mirror.
func NewTicketDetail(ticket *domain.Ticket, comments []domain.TicketComment, attachments []domain.Attachment, calc *domain.SLACalculation) TicketDetailResponse {
	resp := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		Comments:      make([]CommentResponse, 0, len(comments)),
		Attachments:   make([]AttachmentResponse, 0, len(attachments)),
	}
	if ticket.ResolutionTime != nil {
		secs := int64(ticket.ResolutionTime.Seconds())
		resp.ResolutionSeconds = &secs
	}
	if calc != nil {
		resp.SLA = &SLAResponse{
			RuleID:        calc.RuleID,
			TargetMinutes: calc.TargetMinutes,
			Deadline:      calc.Deadline,
			State:         calc.State,
			ComputedAt:    calc.ComputedAt,
		}
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&comments[i]))
	}
	for i := range attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&attachments[i]))
	}
	return resp
}

// NewCommentResponse maps a comment.
func NewCommentResponse(comment *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

// NewAttachmentResponse maps attachment metadata.
func NewAttachmentResponse(att *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          att.ID,
		UploadedBy:  att.UploadedBy,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		SizeBytes:   att.SizeBytes,
		CreatedAt:   att.CreatedAt,
	}
}

// NewHistoryResponses maps audit entries.
func NewHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	resp := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, TicketHistoryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			ActorID:   entry.ActorID,
			Field:     entry.Field,
			OldValue:  entry.OldValue,
			NewValue:  entry.NewValue,
			Metadata:  entry.Metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}
