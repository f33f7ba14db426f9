package services

import (
	"context"
	"fmt"
	"sort"

	"sampahku/internal/models"
)

type NotificationService struct {
	Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{Deps: d.withDefaults()}
}

// ListCitizenNotifications returns a citizen's notifications, newest first
func (s *NotificationService) ListCitizenNotifications(ctx context.Context, citizenID string) ([]models.Notification, error) {
	items, err := s.Repos.Notifications.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, persistence("list notifications", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// MarkNotificationRead marks one of the citizen's notifications as read.
// Read notifications are never flipped back.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, citizenID, id string) (*models.Notification, error) {
	n, err := s.Repos.Notifications.Get(ctx, id)
	if err != nil {
		return nil, persistence("get notification", err)
	}
	if n == nil || n.CitizenID != citizenID {
		return nil, ErrNotificationNotFound
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.Repos.Notifications.MarkRead(ctx, []string{id}); err != nil {
		return nil, persistence("mark notification read", err)
	}
	n.IsRead = true
	return n, nil
}

// IssueReminder creates an unread payment reminder unless one is already
// outstanding for the citizen and period. It reports whether one was created.
func (s *NotificationService) IssueReminder(ctx context.Context, citizen models.Citizen, period string) (*models.Notification, bool, error) {
	existing, err := s.Repos.Notifications.ListUnread(ctx, citizen.ID, models.NotificationTypePaymentReminder, period)
	if err != nil {
		return nil, false, persistence("query reminders", err)
	}
	if len(existing) > 0 {
		return &existing[0], false, nil
	}

	n := &models.Notification{
		CitizenID: citizen.ID,
		Type:      models.NotificationTypePaymentReminder,
		Period:    period,
		Message:   ReminderMessage(citizen, period),
		CreatedAt: s.Now(),
	}
	if err := s.Repos.Notifications.Create(ctx, n); err != nil {
		return nil, false, persistence("create reminder", err)
	}
	return n, true, nil
}

// ReminderMessage is the text shown on the dashboard and sent over WhatsApp
func ReminderMessage(citizen models.Citizen, period string) string {
	return fmt.Sprintf("Yth. %s, iuran sampah periode %s sebesar Rp%d belum tercatat lunas. Mohon segera melakukan pembayaran kepada pengurus RT %s/RW %s.",
		citizen.Name, period, models.MinimumFee, citizen.RT, citizen.RW)
}
