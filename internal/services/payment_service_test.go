package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

func TestRecordPayment_ReconcilesReminders(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c3", "Siti", "01", "02")
	f.reminder(t, "n1", "c3", "Juni 2024", false)
	f.reminder(t, "n2", "c3", "Mei 2024", false)
	f.reminder(t, "n3", "c4", "Juni 2024", false)
	svc := NewPaymentService(f.deps, nil)

	rec, err := svc.RecordPayment(context.Background(), RecordPaymentInput{CitizenID: "c3", Period: "Juni 2024", RecordedBy: "rt-1"})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentKey("c3", "Juni 2024"), rec.Payment.ID)
	assert.Equal(t, models.PaymentStatusPaid, rec.Payment.Status)
	assert.Equal(t, models.MinimumFee, rec.Payment.Amount)
	assert.Equal(t, "2024-06-15", rec.Payment.PaymentDate)
	require.NotNil(t, rec.Payment.ProofURL)
	assert.Equal(t, models.ProofPlaceholderURL, *rec.Payment.ProofURL)
	assert.Equal(t, "rt-1", rec.Payment.RecordedBy)
	assert.Equal(t, "Siti", rec.Citizen.Name)
	assert.Empty(t, rec.Notices)
	assert.Equal(t, 1, rec.Reconciled)
	assert.NoError(t, rec.ReconcileErr)

	assert.True(t, f.notification(t, "n1").IsRead)
	assert.False(t, f.notification(t, "n2").IsRead, "other periods stay unread")
	assert.False(t, f.notification(t, "n3").IsRead, "other citizens stay unread")

	res, err := svc.CitizenStatus(context.Background(), "c3", "Juni 2024")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, res.Status)
	assert.Equal(t, []string{EventPaymentRecorded}, f.events.Names())
}

func TestRecordPayment_NormalizesPeriod(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c3", "Siti", "01", "02")
	f.reminder(t, "n1", "c3", "Juni 2024", false)
	svc := NewPaymentService(f.deps, nil)

	rec, err := svc.RecordPayment(context.Background(), RecordPaymentInput{CitizenID: "c3", Period: "2024-06"})
	require.NoError(t, err)
	assert.Equal(t, "Juni 2024", rec.Payment.Period)
	assert.True(t, f.notification(t, "n1").IsRead)
}

func TestRecordPayment_UnknownCitizenWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.reminder(t, "n1", "zzz", "Juni 2024", false)
	svc := NewPaymentService(f.deps, nil)

	rec, err := svc.RecordPayment(context.Background(), RecordPaymentInput{CitizenID: "zzz", Period: "Juni 2024"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrCitizenNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.counts.Writes())
	assert.False(t, f.notification(t, "n1").IsRead)
	assert.Empty(t, f.events.Names())
}

func TestRecordPayment_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input RecordPaymentInput
		field string
		err   error
	}{
		{"bad period", RecordPaymentInput{CitizenID: "c1", Period: "Juni"}, "period", ErrInvalidPeriod},
		{"negative amount", RecordPaymentInput{CitizenID: "c1", Period: "Juni 2024", Amount: -5}, "amount", ErrInvalidAmount},
		{"bad date", RecordPaymentInput{CitizenID: "c1", Period: "Juni 2024", PaymentDate: "15/06/2024"}, "paymentDate", ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.citizen(t, "c1", "Ani", "01", "02")
			svc := NewPaymentService(f.deps, nil)

			_, err := svc.RecordPayment(context.Background(), tt.input)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, f.counts.Writes())
		})
	}
}

func TestRecordPayment_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c1", "Ani", "01", "02")
	svc := NewPaymentService(f.deps, nil)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, RecordPaymentInput{CitizenID: "c1", Period: "Juni 2024"})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{CitizenID: "c1", Period: "06/2024"})
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	payments, err := svc.CitizenHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestRecordPayment_AmountBelowMinimumIsNeverLunas(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c1", "Ani", "01", "02")
	svc := NewPaymentService(f.deps, nil)
	ctx := context.Background()

	for i, amount := range []int64{1, 5000, 12500, 24999} {
		period := models.PeriodLabel(time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
		f.reminder(t, "r"+period, "c1", period, false)

		rec, err := svc.RecordPayment(ctx, RecordPaymentInput{CitizenID: "c1", Period: period, Amount: amount})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusUnpaid, rec.Payment.Status, "amount %d", amount)
		require.Len(t, rec.Notices, 1)
		assert.Equal(t, NoticeStatusDowngraded, rec.Notices[0].Code)
		assert.Zero(t, rec.Reconciled)
		assert.False(t, f.notification(t, "r"+period).IsRead, "reminder stays unread when not Lunas")
	}
}

func TestRecordPayment_ReconcileFailureKeepsPayment(t *testing.T) {
	mem := newFixture(t).mem
	f := newFixtureOn(t, mem, failingBatchStore{DocumentStore: mem})
	f.citizen(t, "c3", "Siti", "01", "02")
	f.reminder(t, "n1", "c3", "Juni 2024", false)
	svc := NewPaymentService(f.deps, nil)

	rec, err := svc.RecordPayment(context.Background(), RecordPaymentInput{CitizenID: "c3", Period: "Juni 2024"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, rec.Payment.Status)
	assert.Zero(t, rec.Reconciled)
	require.Error(t, rec.ReconcileErr)
	assert.True(t, errors.Is(rec.ReconcileErr, errStoreDown))

	stored, err := svc.GetPayment(context.Background(), rec.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.Status)
	assert.False(t, f.notification(t, "n1").IsRead)
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()
	amount := func(v int64) *int64 { return &v }
	status := func(s models.PaymentStatus) *models.PaymentStatus { return &s }

	t.Run("amount below minimum downgrades Lunas", func(t *testing.T) {
		f := newFixture(t)
		p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
		svc := NewPaymentService(f.deps, nil)

		res, err := svc.UpdatePayment(ctx, p.ID, PaymentUpdate{Amount: amount(10000)})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusUnpaid, res.Payment.Status)
		require.Len(t, res.Notices, 1)
		assert.True(t, strings.Contains(res.Notices[0].Message, "Belum Lunas"))

		stored, err := svc.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), stored.Amount)
		assert.Equal(t, models.PaymentStatusUnpaid, stored.Status)
	})

	t.Run("status edit checks the stored amount", func(t *testing.T) {
		f := newFixture(t)
		p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 20000, Status: models.PaymentStatusUnpaid, CreatedAt: testNow})
		svc := NewPaymentService(f.deps, nil)

		res, err := svc.UpdatePayment(ctx, p.ID, PaymentUpdate{Status: status(models.PaymentStatusPending)})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusUnpaid, res.Payment.Status)
		assert.Len(t, res.Notices, 1)
	})

	t.Run("transition to Lunas reconciles", func(t *testing.T) {
		f := newFixture(t)
		p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPending, CreatedAt: testNow})
		f.reminder(t, "n1", "c1", "Juni 2024", false)
		svc := NewPaymentService(f.deps, nil)

		res, err := svc.UpdatePayment(ctx, p.ID, PaymentUpdate{Status: status(models.PaymentStatusPaid)})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, res.Payment.Status)
		assert.Empty(t, res.Notices)
		assert.True(t, f.notification(t, "n1").IsRead)
		assert.Equal(t, []string{EventPaymentUpdated}, f.events.Names())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
		svc := NewPaymentService(f.deps, nil)

		_, err := svc.UpdatePayment(ctx, p.ID, PaymentUpdate{Status: status("Dibayar")})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("missing payment", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPaymentService(f.deps, nil)

		_, err := svc.UpdatePayment(ctx, "nope", PaymentUpdate{Amount: amount(30000)})
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestPaymentWritesInvalidateRecap(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c1", "Ani", "01", "02")
	cache := newMemCache()
	f.deps.Cache = cache
	svc := NewPaymentService(f.deps, nil)
	ctx := context.Background()

	rec, err := svc.RecordPayment(ctx, RecordPaymentInput{CitizenID: "c1", Period: "Juni 2024"})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePayment(ctx, rec.Payment.ID))

	assert.Equal(t, []string{"recap:Juni 2024", "recap:Juni 2024"}, cache.deleted)
	assert.Equal(t, []string{EventPaymentRecorded, EventPaymentDeleted}, f.events.Names())
}

func TestListPayments_NewestPeriodFirst(t *testing.T) {
	f := newFixture(t)
	for _, period := range []string{"Maret 2024", "Desember 2023", "Juni 2024"} {
		f.payment(t, models.Payment{CitizenID: "c1", Period: period, Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	}
	f.payment(t, models.Payment{CitizenID: "c2", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	svc := NewPaymentService(f.deps, nil)

	history, err := svc.CitizenHistory(context.Background(), "c1")
	require.NoError(t, err)
	periods := make([]string, 0, len(history))
	for _, p := range history {
		periods = append(periods, p.Period)
	}
	assert.Equal(t, []string{"Juni 2024", "Maret 2024", "Desember 2023"}, periods)

	june, err := svc.ListPayments(context.Background(), repository.PaymentFilter{Period: "2024-06"})
	require.NoError(t, err)
	assert.Len(t, june, 2)
}

func TestStatusBoardForArea(t *testing.T) {
	f := newFixture(t)
	f.citizen(t, "c1", "Ani", "01", "02")
	f.citizen(t, "c2", "Budi", "01", "02")
	f.citizen(t, "c3", "Citra", "03", "02")
	f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	svc := NewPaymentService(f.deps, nil)

	rows, err := svc.StatusBoard(context.Background(), models.Area{RT: "01", RW: "02"}, "juni 2024")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	got := map[string]models.PaymentStatus{}
	for _, r := range rows {
		got[r.Citizen.ID] = r.Status
	}
	assert.Equal(t, map[string]models.PaymentStatus{"c1": models.PaymentStatusPaid, "c2": models.PaymentStatusUnpaid}, got)
}

type fakeProofs struct {
	key, contentType string
}

func (p *fakeProofs) Upload(_ context.Context, key, contentType string, _ io.Reader, _ int64) (string, error) {
	p.key, p.contentType = key, contentType
	return "https://files.example/" + key, nil
}

func TestAttachProof(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	proofs := &fakeProofs{}
	svc := NewPaymentService(f.deps, proofs)

	updated, err := svc.AttachProof(context.Background(), p.ID, "Bukti.JPG", "image/jpeg", strings.NewReader("img"), 3)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", proofs.contentType)
	assert.True(t, strings.HasPrefix(proofs.key, "proofs/c1/"))
	assert.True(t, strings.HasSuffix(proofs.key, ".jpg"))
	require.NotNil(t, updated.ProofURL)
	assert.Equal(t, "https://files.example/"+proofs.key, *updated.ProofURL)
	assert.Equal(t, models.PaymentStatusPaid, updated.Status)
}

func TestAttachProof_WithoutStorage(t *testing.T) {
	f := newFixture(t)
	p := f.payment(t, models.Payment{CitizenID: "c1", Period: "Juni 2024", Amount: 25000, Status: models.PaymentStatusPaid, CreatedAt: testNow})
	svc := NewPaymentService(f.deps, nil)

	_, err := svc.AttachProof(context.Background(), p.ID, "bukti.jpg", "image/jpeg", strings.NewReader("img"), 3)
	assert.ErrorIs(t, err, ErrProofStorageUnavailable)
	assert.Zero(t, f.counts.Writes())
}
