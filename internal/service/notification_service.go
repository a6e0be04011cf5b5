package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationService fans out in-app notifications and serves the read API.
// Its event handlers implement the recipient policy of the ticket lifecycle.
type NotificationService struct {
	repos      repository.Repositories
	tx         repository.Transactor
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
	now        Clock
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Repositories repository.Repositories
	Transactor   repository.Transactor
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Config       config.NotificationConfig
	Clock        Clock
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	cfg := deps.Config
	if cfg.LinkParam == "" {
		cfg.LinkParam = "notif_id"
	}
	return &NotificationService{
		repos:      deps.Repositories,
		tx:         deps.Transactor,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
		cfg:        cfg,
		now:        clockOrDefault(deps.Clock),
	}
}

// RegisterHandlers subscribes the recipient policy to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

// CreateNotification stores one notification per distinct non-nil recipient.
// All rows share type, message, link, actor and timestamp and are inserted
// all-or-nothing. No recipients is a no-op. It returns the rows created.
func (n *NotificationService) CreateNotification(ctx context.Context, notificationType domain.NotificationType, message, link string, actor *domain.User, recipients ...*domain.User) ([]*domain.Notification, error) {
	seen := make(map[int64]struct{}, len(recipients))
	createdAt := n.now()
	rows := make([]*domain.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		if recipient == nil {
			continue
		}
		if _, dup := seen[recipient.ID]; dup {
			continue
		}
		seen[recipient.ID] = struct{}{}
		rows = append(rows, &domain.Notification{
			UserID:    recipient.ID,
			ActorID:   actorID(actor),
			Type:      notificationType,
			Message:   message,
			URL:       link,
			CreatedAt: createdAt,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	err := n.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Notifications.CreateBatch(ctx, rows)
	})
	n.metrics.RecordNotifications(string(notificationType), len(rows), err)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// NotificationLink returns the notification URL carrying the notification id
// as a query parameter so following it can mark the notification as read.
func (n *NotificationService) NotificationLink(notification domain.Notification) string {
	return NotificationLink(notification, n.cfg.LinkParam)
}

// NotificationLink rewrites notification.URL adding param=<id>. Existing query
// parameters and fragments are kept.
func NotificationLink(notification domain.Notification, param string) string {
	if notification.URL == "" {
		return ""
	}
	u, err := url.Parse(notification.URL)
	if err != nil {
		return notification.URL
	}
	query := u.Query()
	query.Set(param, strconv.FormatInt(notification.ID, 10))
	u.RawQuery = query.Encode()
	return u.String()
}

// MarkAsRead marks a notification owned by userID as read. Notifications owned
// by someone else, or unknown ids, are ignored without error.
func (n *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	if _, err := n.repos.Notifications.MarkRead(ctx, notificationID, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// LinkParam names the query parameter NotificationLink appends.
func (n *NotificationService) LinkParam() string {
	return n.cfg.LinkParam
}

// MarkReadFromLink marks the notification named by a LinkParam value as read
// for userID. Blank or malformed values and ids owned by other users are ignored.
func (n *NotificationService) MarkReadFromLink(ctx context.Context, userID int64, raw string) {
	if raw == "" {
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return
	}
	if err := n.MarkAsRead(ctx, userID, id); err != nil {
		n.logger.Warn("mark notification read from link failed",
			zap.Int64("user_id", userID), zap.Int64("notification_id", id), zap.Error(err))
	}
}

// MarkAllAsRead marks every unread notification of userID as read.
func (n *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	count, err := n.repos.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// List returns userID's notifications newest first.
func (n *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	items, err := n.repos.Notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// UnreadCount returns how many notifications userID has not read.
func (n *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := n.repos.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// TicketLink is the in-app path of a ticket.
func TicketLink(ticketID int64) string {
	return fmt.Sprintf("/tickets/%d", ticketID)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	requester := payload.Requester
	link := TicketLink(ticket.ID)

	staff, err := n.staffExcept(ctx, requester.ID)
	if err != nil {
		return err
	}

	var errs []error
	_, err = n.CreateNotification(ctx, domain.NotificationTicketCreated,
		fmt.Sprintf("New ticket #%d from %s: %s", ticket.ID, requester.Username, ticket.Title),
		link, &requester, staff...)
	errs = append(errs, err)

	_, err = n.CreateNotification(ctx, domain.NotificationTicketConfirmation,
		fmt.Sprintf("Your ticket #%d was received", ticket.ID),
		link, &requester, &requester)
	errs = append(errs, err)

	if payload.Assignee != nil {
		_, err = n.CreateNotification(ctx, domain.NotificationTicketAssigned,
			fmt.Sprintf("Ticket #%d was assigned to you", ticket.ID),
			link, &requester, payload.Assignee)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	link := TicketLink(ticket.ID)

	var errs []error
	if payload.StatusChanged {
		requester, err := n.repos.Users.GetByID(ctx, ticket.RequesterID)
		if err != nil {
			errs = append(errs, err)
		} else {
			_, err = n.CreateNotification(ctx, domain.NotificationStatusChanged,
				fmt.Sprintf("Ticket #%d is now %s", ticket.ID, ticket.Status.Label()),
				link, payload.Actor, requester)
			errs = append(errs, err)
		}
	}
	if payload.AssigneeChanged && payload.NewAssignee != nil {
		_, err := n.CreateNotification(ctx, domain.NotificationTicketAssigned,
			fmt.Sprintf("Ticket #%d was assigned to you", ticket.ID),
			link, payload.Actor, payload.NewAssignee)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	author := payload.Author
	link := TicketLink(ticket.ID)
	message := fmt.Sprintf("New comment on ticket #%d from %s", ticket.ID, author.Username)

	if author.CanHandleTickets() {
		if ticket.RequesterID == author.ID {
			return nil
		}
		requester, err := n.repos.Users.GetByID(ctx, ticket.RequesterID)
		if err != nil {
			return err
		}
		_, err = n.CreateNotification(ctx, domain.NotificationNewComment, message, link, &author, requester)
		return err
	}

	if ticket.AssigneeID != nil && *ticket.AssigneeID != author.ID {
		assignee, err := n.repos.Users.GetByID(ctx, *ticket.AssigneeID)
		if err != nil {
			return err
		}
		_, err = n.CreateNotification(ctx, domain.NotificationNewComment, message, link, &author, assignee)
		return err
	}

	staff, err := n.staffExcept(ctx, author.ID)
	if err != nil {
		return err
	}
	_, err = n.CreateNotification(ctx, domain.NotificationNewComment, message, link, &author, staff...)
	return err
}

func (n *NotificationService) staffExcept(ctx context.Context, excludeID int64) ([]*domain.User, error) {
	staff, err := n.repos.Users.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]*domain.User, 0, len(staff))
	for i := range staff {
		if staff[i].ID == excludeID {
			continue
		}
		recipients = append(recipients, &staff[i])
	}
	return recipients, nil
}
