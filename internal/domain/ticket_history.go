package domain

import "time"

// HistoryAction captures what changed in a history entry.
type HistoryAction string

const (
	HistoryActionStatus      HistoryAction = "STATUS"
	HistoryActionPriority    HistoryAction = "PRIORITY"
	HistoryActionAssignee    HistoryAction = "ASSIGNEE"
	HistoryActionTitle       HistoryAction = "TITLE"
	HistoryActionDescription HistoryAction = "DESCRIPTION"
	HistoryActionCategory    HistoryAction = "CATEGORY"
	HistoryActionArea        HistoryAction = "AREA"
	HistoryActionAttachAdd   HistoryAction = "ATTACH_ADD"
	HistoryActionAttachDel   HistoryAction = "ATTACH_DEL"
	HistoryActionComment     HistoryAction = "COMMENT"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID        int64
	TicketID  int64
	ActorID   *int64
	Action    HistoryAction
	Field     string
	OldValue  string
	NewValue  string
	Metadata  map[string]any
	CreatedAt time.Time
}
