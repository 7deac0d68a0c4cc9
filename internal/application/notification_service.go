package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-event-platform/internal/domain/repository"
	"github.com/oksasatya/go-event-platform/pkg/mailer"
	mailtpl "github.com/oksasatya/go-event-platform/pkg/mailer/templates"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
)

// NotificationService persists notifications and sends the email copy.
// The row is always written before any email is attempted, and email
// failures never reach the caller.
type NotificationService struct {
	Repo         repo.NotificationRepository
	Mailer       mailer.Sender
	EmailTypes   map[string]struct{}
	EmailTimeout time.Duration
	AppName      string
	Logger       *logrus.Logger

	wg sync.WaitGroup
}

func NewNotificationService(r repo.NotificationRepository, sender mailer.Sender, emailTypes []string, emailTimeout time.Duration, appName string, logger *logrus.Logger) *NotificationService {
	types := make(map[string]struct{}, len(emailTypes))
	for _, t := range emailTypes {
		types[strings.TrimSpace(t)] = struct{}{}
	}
	return &NotificationService{
		Repo:         r,
		Mailer:       sender,
		EmailTypes:   types,
		EmailTimeout: emailTimeout,
		AppName:      appName,
		Logger:       logger,
	}
}

// Create stores the notification and, for allow-listed types with a known
// recipient, sends the email on its own goroutine.
func (s *NotificationService) Create(ctx context.Context, in entity.NewNotification) (*entity.Notification, error) {
	if strings.TrimSpace(in.NotificationType) == "" {
		return nil, invalid("notification_type", "is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, invalid("message", "is required")
	}
	n := &entity.Notification{
		UserID:           in.UserID,
		EventID:          in.EventID,
		NotificationType: in.NotificationType,
		Message:          in.Message,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"notification_id": n.ID, "user_id": n.UserID, "type": n.NotificationType}).Info("notification created")

	if _, ok := s.EmailTypes[n.NotificationType]; ok {
		if in.RecipientEmail == "" {
			metrics.Emails.WithLabelValues("skipped").Inc()
			s.Logger.WithField("notification_id", n.ID).Debug("no recipient email, skipping")
		} else {
			s.sendAsync(*n, in.RecipientEmail)
		}
	}
	return n, nil
}

func (s *NotificationService) sendAsync(n entity.Notification, to string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.EmailTimeout)
		defer cancel()
		if err := s.sendEmail(ctx, n, to); err != nil {
			metrics.Emails.WithLabelValues("failed").Inc()
			s.Logger.WithError(err).WithFields(logrus.Fields{"notification_id": n.ID, "to": to}).Error("notification email failed")
			return
		}
		metrics.Emails.WithLabelValues("sent").Inc()
		s.Logger.WithFields(logrus.Fields{"notification_id": n.ID, "to": to}).Info("notification email sent")
	}()
}

func (s *NotificationService) sendEmail(ctx context.Context, n entity.Notification, to string) error {
	opts := []mailtpl.Option{mailtpl.WithTime(n.CreatedAt), mailtpl.WithUser(int64(n.UserID))}
	if n.EventID != nil {
		opts = append(opts, mailtpl.WithEvent(*n.EventID))
	}
	data := mailtpl.NewNotificationData(s.AppName, n.NotificationType, n.Message, to, opts...)
	subject, text, html, err := mailtpl.Render(mailtpl.Notification, data)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, to, subject, text, html)
}

// SendTestEmail renders and sends a "test" notification synchronously.
func (s *NotificationService) SendTestEmail(ctx context.Context, to string) error {
	ctx, cancel := context.WithTimeout(ctx, s.EmailTimeout)
	defer cancel()
	n := entity.Notification{
		UserID:           1,
		NotificationType: mailtpl.Test,
		Message:          "Test message",
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sendEmail(ctx, n, to); err != nil {
		metrics.Emails.WithLabelValues("failed").Inc()
		return err
	}
	metrics.Emails.WithLabelValues("sent").Inc()
	return nil
}

// Wait blocks until in-flight emails finish or ctx is done.
func (s *NotificationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *NotificationService) List(ctx context.Context, f entity.NotificationFilter, skip, limit int) ([]entity.Notification, error) {
	if err := CheckPage(skip, limit); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, f, skip, limit)
}

func (s *NotificationService) Get(ctx context.Context, id int64) (*entity.Notification, error) {
	n, err := s.Repo.GetByID(ctx, id)
	return n, mapNotificationErr(err)
}

// MarkRead sets is_read and stamps read_at.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*entity.Notification, error) {
	n, err := s.Repo.MarkRead(ctx, id, time.Now().UTC())
	return n, mapNotificationErr(err)
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	return mapNotificationErr(s.Repo.Delete(ctx, id))
}

func (s *NotificationService) UnreadCount(ctx context.Context, user entity.UserID) (int64, error) {
	return s.Repo.UnreadCount(ctx, user)
}

func mapNotificationErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
