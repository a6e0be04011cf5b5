package domain

import "time"

// NotificationType tags the event a notification was raised for.
type NotificationType string

const (
	NotificationTicketCreated      NotificationType = "ticket_created"
	NotificationTicketConfirmation NotificationType = "ticket_confirmation"
	NotificationTicketAssigned     NotificationType = "ticket_assigned"
	NotificationStatusChanged      NotificationType = "status_changed"
	NotificationNewComment         NotificationType = "new_comment"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        int64
	UserID    int64
	ActorID   *int64
	Type      NotificationType
	Message   string
	URL       string
	IsRead    bool
	CreatedAt time.Time
}
