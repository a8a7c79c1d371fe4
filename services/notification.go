package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// Mailer sends a single email. Delivery is best-effort; the notification row
// is the source of truth regardless of the outcome.
type Mailer interface {
	Send(to, subject, body string) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(to, subject, body string) error

func (f MailerFunc) Send(to, subject, body string) error {
	return f(to, subject, body)
}

// NotificationService creates notification rows and forwards each one to the
// mail collaborator exactly once. A failed send is logged and swallowed;
// email_sent stays false and no retry is ever scheduled.
type NotificationService struct {
	store  store.Store
	authz  *Authorizer
	mailer Mailer
	now    func() time.Time
}

func NewNotificationService(st store.Store, authz *Authorizer, mailer Mailer) *NotificationService {
	return &NotificationService{
		store:  st,
		authz:  authz,
		mailer: mailer,
		now:    time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *NotificationService) SetClock(now func() time.Time) {
	s.now = now
}

// Notify creates a notification on behalf of an authenticated actor and
// attempts one email delivery.
func (s *NotificationService) Notify(actor *models.User, recipientID uint, message, notifType string, link *string) (*models.Notification, error) {
	if err := s.authz.Authorize(actor, ActionCreate, EntityNotification, nil); err != nil {
		return nil, err
	}
	return s.create(recipientID, message, notifType, link)
}

// NotifySystem creates a notification from an internal trigger (workflow side
// effects) with no acting user.
func (s *NotificationService) NotifySystem(recipientID uint, message, notifType string, link *string) (*models.Notification, error) {
	return s.create(recipientID, message, notifType, link)
}

func (s *NotificationService) create(recipientID uint, message, notifType string, link *string) (*models.Notification, error) {
	if message == "" {
		return nil, Validationf("notification message is required")
	}
	if notifType == "" {
		notifType = models.NotificationTypeInfo
	}
	if !models.ValidNotificationType(notifType) {
		return nil, Validationf("unknown notification type %q", notifType)
	}

	recipient, err := s.store.GetUser(recipientID)
	if err != nil {
		return nil, fromStore(err)
	}

	n := &models.Notification{
		RecipientID: recipientID,
		Message:     message,
		Type:        notifType,
		Link:        link,
		CreatedAt:   s.now(),
	}
	// the row is durable before any delivery attempt
	if err := s.store.CreateNotification(n); err != nil {
		return nil, fromStore(err)
	}

	s.dispatch(n, recipient)
	return n, nil
}

// dispatch makes the single best-effort delivery attempt. Failure is logged,
// never surfaced and never retried; success flips email_sent exactly once.
func (s *NotificationService) dispatch(n *models.Notification, recipient *models.User) {
	if s.mailer == nil || recipient.Email == "" {
		return
	}
	subject := fmt.Sprintf("FYP Notification: %s", titleCase(n.Type))
	if err := s.mailer.Send(recipient.Email, subject, n.Message); err != nil {
		log.Printf("notification %d: email to %s failed: %v", n.NotificationID, recipient.Email, err)
		return
	}
	if err := s.store.MarkNotificationEmailSent(n.NotificationID); err != nil {
		log.Printf("notification %d: failed to persist email_sent: %v", n.NotificationID, err)
		return
	}
	n.EmailSent = true
}

// List returns the notifications visible to the actor, newest first.
func (s *NotificationService) List(actor *models.User, unread *bool) ([]models.Notification, error) {
	filter, err := s.authz.NotificationScope(actor)
	if err != nil {
		return nil, err
	}
	filter.Unread = unread
	out, err := s.store.ListNotifications(filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns one notification if the actor may see it.
func (s *NotificationService) Get(actor *models.User, id uint) (*models.Notification, error) {
	n, err := s.store.GetNotification(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionGet, EntityNotification, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkRead flips the read flag, the only mutable field, for the recipient or
// an admin.
func (s *NotificationService) MarkRead(actor *models.User, id uint, read bool) (*models.Notification, error) {
	n, err := s.store.GetNotification(id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authz.Authorize(actor, ActionUpdate, EntityNotification, n); err != nil {
		return nil, err
	}
	if err := s.store.UpdateNotificationRead(id, read); err != nil {
		return nil, fromStore(err)
	}
	n.IsRead = read
	return n, nil
}

// MarkAllRead marks every unread notification of the actor as read and
// returns how many were updated.
func (s *NotificationService) MarkAllRead(actor *models.User) (int, error) {
	if actor == nil {
		return 0, ErrUnauthorized
	}
	unread := true
	rows, err := s.store.ListNotifications(store.NotificationFilter{RecipientID: &actor.UserID, Unread: &unread})
	if err != nil {
		return 0, fromStore(err)
	}
	updated := 0
	for _, n := range rows {
		if err := s.store.UpdateNotificationRead(n.NotificationID, true); err != nil {
			log.Printf("mark-all-read: notification %d: %v", n.NotificationID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// UnreadCount returns the number of unread notifications for the actor.
func (s *NotificationService) UnreadCount(actor *models.User) (int, error) {
	if actor == nil {
		return 0, ErrUnauthorized
	}
	unread := true
	rows, err := s.store.ListNotifications(store.NotificationFilter{RecipientID: &actor.UserID, Unread: &unread})
	if err != nil {
		return 0, fromStore(err)
	}
	return len(rows), nil
}
