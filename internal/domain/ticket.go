package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

var ticketStatusLabels = map[TicketStatus]string{
	TicketStatusOpen:       "Open",
	TicketStatusInProgress: "In Progress",
	TicketStatusResolved:   "Resolved",
	TicketStatusClosed:     "Closed",
}

// Label returns the display text for the status.
func (s TicketStatus) Label() string { return choiceLabel(ticketStatusLabels, s) }

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	_, ok := ticketStatusLabels[s]
	return ok
}

// IsFinished reports whether the status counts as closed for SLA purposes.
func (s TicketStatus) IsFinished() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketType selects which SLA rule applies.
type TicketType string

const (
	TicketTypeIncident TicketType = "incident"
	TicketTypeRequest  TicketType = "request"
)

var ticketTypeLabels = map[TicketType]string{
	TicketTypeIncident: "Incident",
	TicketTypeRequest:  "Request",
}

func (t TicketType) Label() string { return choiceLabel(ticketTypeLabels, t) }

func (t TicketType) Valid() bool {
	_, ok := ticketTypeLabels[t]
	return ok
}

// TicketCategory classifies the kind of help requested.
type TicketCategory string

const (
	TicketCategorySupport  TicketCategory = "support"
	TicketCategoryInquiry  TicketCategory = "inquiry"
	TicketCategoryIncident TicketCategory = "incident"
	TicketCategoryRequest  TicketCategory = "request"
)

var ticketCategoryLabels = map[TicketCategory]string{
	TicketCategorySupport:  "Technical Support",
	TicketCategoryInquiry:  "Inquiry",
	TicketCategoryIncident: "Incident",
	TicketCategoryRequest:  "Request",
}

func (c TicketCategory) Label() string { return choiceLabel(ticketCategoryLabels, c) }

func (c TicketCategory) Valid() bool {
	_, ok := ticketCategoryLabels[c]
	return ok
}

// SLAState is the compliance verdict for a ticket.
type SLAState string

const (
	SLAStatePending  SLAState = "pending"
	SLAStateBreached SLAState = "breached"
	SLAStateMet      SLAState = "met"
	SLAStateNoRule   SLAState = "no_rule"
)

var slaStateLabels = map[SLAState]string{
	SLAStatePending:  "Pending",
	SLAStateBreached: "Breached",
	SLAStateMet:      "Met",
	SLAStateNoRule:   "No rule",
}

func (s SLAState) Label() string { return choiceLabel(slaStateLabels, s) }

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                int64
	Title             string
	Description       string
	RequesterID       int64
	AssigneeID        *int64
	PriorityID        int64
	Status            TicketStatus
	Type              TicketType
	AreaID            *int64
	Category          TicketCategory
	RequesterCritical bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
	ResolutionTime    *time.Duration
	SLADeadline       *time.Time
	SLAState          SLAState
}

// SLACalculation mirrors the derived SLA fields of a ticket.
type SLACalculation struct {
	TicketID      int64
	RuleID        *int64
	TargetMinutes *int
	Deadline      *time.Time
	State         SLAState
	ComputedAt    time.Time
}

// TicketComment is a message left on a ticket thread.
type TicketComment struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}

// Attachment stores metadata for a file uploaded to a ticket.
type Attachment struct {
	ID          int64
	TicketID    int64
	UploadedBy  int64
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

func choiceLabel[K ~string](labels map[K]string, key K) string {
	if label, ok := labels[key]; ok {
		return label
	}
	return string(key)
}
