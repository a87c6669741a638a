package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// NotificationService is the in-app notification sink. Delivery is a database
// write; consumers poll.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Send is the best-effort variant used as a side effect of other operations:
// a failed write is logged and swallowed so it never rolls back the caller.
func (s *NotificationService) Send(ctx context.Context, recipients []int64, title, message string, typ domain.NotificationType) {
	if _, err := s.Create(ctx, recipients, title, message, typ); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("notification write failed")
	}
}

func (s *NotificationService) Create(ctx context.Context, recipients []int64, title, message string, typ domain.NotificationType) (*domain.Notification, error) {
	if len(recipients) == 0 || title == "" {
		return nil, ErrInvalidInput
	}
	n := domain.Notification{
		Recipients: recipients,
		Title:      title,
		Message:    message,
		Type:       typ,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification; only a recipient may delete it.
func (s *NotificationService) Delete(ctx context.Context, id, userID int64) error {
	if id <= 0 || userID <= 0 {
		return ErrInvalidInput
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	addressed := false
	for _, r := range n.Recipients {
		if r == userID {
			addressed = true
			break
		}
	}
	if !addressed {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
