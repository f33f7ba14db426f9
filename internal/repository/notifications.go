package repository

import (
	"context"

	"sampahku/internal/models"
	"sampahku/internal/store"
)

type NotificationRepository struct {
	store store.DocumentStore
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*models.Notification, error) {
	return get[models.Notification](ctx, r.store, models.CollectionNotifications, id)
}

// ListByCitizen returns every notification of a citizen
func (r *NotificationRepository) ListByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error) {
	return query[models.Notification](ctx, r.store, models.CollectionNotifications, store.Eq("citizenId", citizenID))
}

// ListUnread returns unread notifications of one type for a citizen and period
func (r *NotificationRepository) ListUnread(ctx context.Context, citizenID string, kind models.NotificationType, period string) ([]models.Notification, error) {
	return query[models.Notification](ctx, r.store, models.CollectionNotifications,
		store.Eq("citizenId", citizenID),
		store.Eq("type", string(kind)),
		store.Eq("period", period),
		store.Eq("isRead", false),
	)
}

// ListUnreadForPeriod returns unread notifications of one type across all citizens
func (r *NotificationRepository) ListUnreadForPeriod(ctx context.Context, kind models.NotificationType, period string) ([]models.Notification, error) {
	return query[models.Notification](ctx, r.store, models.CollectionNotifications,
		store.Eq("type", string(kind)),
		store.Eq("period", period),
		store.Eq("isRead", false),
	)
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	data, err := store.Encode(n)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, models.CollectionNotifications, data)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// MarkRead sets isRead on all ids in one atomic batch
func (r *NotificationRepository) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	patches := make([]store.Patch, 0, len(ids))
	for _, id := range ids {
		patches = append(patches, store.Patch{ID: id, Data: map[string]interface{}{"isRead": true}})
	}
	return r.store.BatchUpdate(ctx, models.CollectionNotifications, patches)
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionNotifications, id)
}
