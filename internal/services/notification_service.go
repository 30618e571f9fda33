package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-backend/internal/cache"
	"campus-backend/internal/mailer"
	"campus-backend/internal/models"
	"campus-backend/internal/realtime"
	"campus-backend/internal/repositories"
	"campus-backend/internal/sideeffect"
)

type NotificationService struct {
	NotifRepo *repositories.NotificationRepository
	UserRepo  *repositories.UserRepository
	Mailer    mailer.EmailProvider
	Hub       *realtime.Hub
}

func NewNotificationService(
	notifRepo *repositories.NotificationRepository,
	userRepo *repositories.UserRepository,
	emailProvider mailer.EmailProvider,
	hub *realtime.Hub,
) *NotificationService {
	return &NotificationService{
		NotifRepo: notifRepo,
		UserRepo:  userRepo,
		Mailer:    emailProvider,
		Hub:       hub,
	}
}

// Dispatch fans out in-app notifications, an email per recipient, and a
// realtime signal. Runs after the caller's transaction has committed; each
// leg is best-effort and failures are logged, never returned.
func (s *NotificationService) Dispatch(n *models.CreateNotification, emailSubject, emailBody string) {
	if len(n.RecipientIDs) == 0 {
		return
	}

	tasks := []sideeffect.Task{
		{Name: "notifications", Fn: func(ctx context.Context) error {
			if err := s.NotifRepo.CreateFanOut(ctx, n); err != nil {
				return err
			}
			for _, id := range n.RecipientIDs {
				cache.InvalidateNotificationCaches(ctx, id)
			}
			return nil
		}},
		{Name: "broadcast-notifications", Fn: func(ctx context.Context) error {
			if s.Hub != nil {
				s.Hub.BroadcastNotifications()
			}
			return nil
		}},
	}

	if emailSubject != "" && s.Mailer != nil {
		recipients := append([]int(nil), n.RecipientIDs...)
		tasks = append(tasks, sideeffect.Task{Name: "email", Fn: func(ctx context.Context) error {
			var addrs []string
			for _, id := range recipients {
				user, err := s.UserRepo.GetByID(ctx, id)
				if err != nil {
					return fmt.Errorf("resolve recipient %d: %w", id, err)
				}
				addrs = append(addrs, user.Email)
			}
			return s.Mailer.Send(addrs, emailSubject, emailBody)
		}})
	}

	sideeffect.RunAsync(tasks...)
}

// BroadcastRequestUpdate signals connected clients that some request changed
func (s *NotificationService) BroadcastRequestUpdate() {
	sideeffect.Run(sideeffect.Task{Name: "broadcast-request-update", Fn: func(ctx context.Context) error {
		if s.Hub != nil {
			s.Hub.BroadcastRequestUpdate()
		}
		return nil
	}})
}

// notifListTTL is short because the unread state drives the frontend badge
const notifListTTL = 15 * time.Second

func (s *NotificationService) ListForUser(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error) {
	key := cache.NotificationListKey(userID, unreadOnly)
	if raw, ok := cache.GetCached(ctx, key); ok {
		var notifications []*models.Notification
		if err := json.Unmarshal(raw, &notifications); err == nil {
			return notifications, nil
		}
	}

	notifications, err := s.NotifRepo.ListByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(notifications); err == nil {
		cache.SetCached(ctx, key, raw, notifListTTL)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.NotifRepo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCaches(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.NotifRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCaches(ctx, userID)
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID int) error {
	if err := s.NotifRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCaches(ctx, userID)
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.NotifRepo.UnreadCount(ctx, userID)
}
