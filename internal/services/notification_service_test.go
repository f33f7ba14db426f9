package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahku/internal/models"
)

func TestListCitizenNotifications_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.put(t, models.CollectionNotifications, "old", models.Notification{CitizenID: "c1", Type: models.NotificationTypePaymentReminder, Period: "Mei 2024", CreatedAt: testNow.Add(-30 * 24 * time.Hour)})
	f.put(t, models.CollectionNotifications, "new", models.Notification{CitizenID: "c1", Type: models.NotificationTypePaymentReminder, Period: "Juni 2024", CreatedAt: testNow})
	f.put(t, models.CollectionNotifications, "other", models.Notification{CitizenID: "c2", Type: models.NotificationTypePaymentReminder, Period: "Juni 2024", CreatedAt: testNow})
	svc := NewNotificationService(f.deps)

	items, err := svc.ListCitizenNotifications(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "old", items[1].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	f := newFixture(t)
	f.reminder(t, "n1", "c1", "Juni 2024", false)
	svc := NewNotificationService(f.deps)
	ctx := context.Background()

	_, err := svc.MarkNotificationRead(ctx, "c2", "n1")
	assert.ErrorIs(t, err, ErrNotificationNotFound, "another citizen's notification is invisible")
	assert.False(t, f.notification(t, "n1").IsRead)

	n, err := svc.MarkNotificationRead(ctx, "c1", "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.True(t, f.notification(t, "n1").IsRead)

	writes := f.counts.Writes()
	_, err = svc.MarkNotificationRead(ctx, "c1", "n1")
	require.NoError(t, err)
	assert.Equal(t, writes, f.counts.Writes(), "already read is a no-op")

	_, err = svc.MarkNotificationRead(ctx, "c1", "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestIssueReminder(t *testing.T) {
	f := newFixture(t)
	c := f.citizen(t, "c1", "Ani", "01", "02")
	svc := NewNotificationService(f.deps)
	ctx := context.Background()

	n, created, err := svc.IssueReminder(ctx, c, "Juni 2024")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, n.IsRead)
	assert.Contains(t, n.Message, "Ani")
	assert.Contains(t, n.Message, "Juni 2024")

	again, created, err := svc.IssueReminder(ctx, c, "Juni 2024")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, n.ID, again.ID)

	_, err = svc.MarkNotificationRead(ctx, "c1", n.ID)
	require.NoError(t, err)
	_, created, err = svc.IssueReminder(ctx, c, "Juni 2024")
	require.NoError(t, err)
	assert.True(t, created, "a read reminder does not suppress a new one")
}
