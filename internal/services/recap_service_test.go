package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahku/internal/models"
)

func seedRecap(t *testing.T, f *fixture) {
	t.Helper()
	f.citizen(t, "c1", "Ani", "01", "02")
	f.citizen(t, "c2", "Budi", "01", "02")
	f.citizen(t, "c3", "Citra", "03", "02")
	f.citizen(t, "c4", "Dedi", "01", "01")
	f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 30000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	f.payment(t, models.Payment{CitizenID: "c3", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPending, CreatedAt: testNow})
	f.payment(t, models.Payment{CitizenID: "c4", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	f.payment(t, models.Payment{CitizenID: "c2", Period: "Mei 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
}

func TestRecap(t *testing.T) {
	f := newFixture(t)
	seedRecap(t, f)
	svc := NewRecapService(f.deps)

	recap, err := svc.Recap(context.Background(), "2024-06")
	require.NoError(t, err)
	assert.Equal(t, "Juni 2024", recap.Period)
	assert.Equal(t, 4, recap.Citizens)
	assert.Equal(t, 2, recap.Paid)
	assert.Equal(t, 1, recap.Unpaid)
	assert.Equal(t, 1, recap.Pending)
	assert.Equal(t, int64(55000), recap.Collected)

	assert.Equal(t, []AreaRecap{
		{RT: "01", RW: "01", Citizens: 1, Paid: 1, Collected: 25000},
		{RT: "01", RW: "02", Citizens: 2, Paid: 1, Unpaid: 1, Collected: 30000},
		{RT: "03", RW: "02", Citizens: 1, Pending: 1},
	}, recap.Areas)

	_, err = svc.Recap(context.Background(), "bulan lalu")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRecap_CachedUntilPaymentWrite(t *testing.T) {
	f := newFixture(t)
	seedRecap(t, f)
	cache := newMemCache()
	f.deps.Cache = cache
	recaps := NewRecapService(f.deps)
	payments := NewPaymentService(f.deps, nil)
	ctx := context.Background()

	first, err := recaps.Recap(ctx, "Juni 2024")
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	cached, err := recaps.Recap(ctx, "06/2024")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, cached)

	_, err = payments.RecordPayment(ctx, RecordPaymentInput{CitizenID: "c2", Period: "Juni 2024"})
	require.NoError(t, err)

	fresh, err := recaps.Recap(ctx, "Juni 2024")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits, "invalidated entry is rebuilt")
	assert.Equal(t, 3, fresh.Paid)
	assert.Zero(t, fresh.Unpaid)
}
