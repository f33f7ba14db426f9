package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

// ProofStore uploads proof-of-payment files and returns their public URL
type ProofStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}

type PaymentService struct {
	Deps
	proofs ProofStore
}

func NewPaymentService(d Deps, proofs ProofStore) *PaymentService {
	return &PaymentService{Deps: d.withDefaults(), proofs: proofs}
}

// RecordPaymentInput is what the RT dashboard submits when a fee is paid.
// Period accepts any form NormalizePeriod understands. Amount 0 means MinimumFee.
type RecordPaymentInput struct {
	CitizenID   string `json:"citizenId"`
	Period      string `json:"period"`
	Amount      int64  `json:"amount"`
	PaymentDate string `json:"paymentDate"`
	RecordedBy  string `json:"-"`
}

// PaymentRecord is a committed payment enriched with its citizen
type PaymentRecord struct {
	Payment models.Payment  `json:"payment"`
	Citizen *models.Citizen `json:"citizen,omitempty"`
	Notices []Notice        `json:"notices,omitempty"`
	// Reconciled counts reminders marked read after the write
	Reconciled int `json:"reconciled"`
	// ReconcileErr is set when marking reminders failed; the payment itself is stored
	ReconcileErr error `json:"-"`
}

// RecordPayment stores a new payment for a citizen and clears the
// citizen's outstanding payment reminders for that period.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*PaymentRecord, error) {
	citizen, err := s.Repos.Citizens.Get(ctx, strings.TrimSpace(in.CitizenID))
	if err != nil {
		return nil, persistence("get citizen", err)
	}
	if citizen == nil {
		return nil, ErrCitizenNotFound
	}

	period, err := models.NormalizePeriod(in.Period)
	if err != nil {
		return nil, invalid("period", ErrInvalidPeriod, "Periode pembayaran tidak valid")
	}

	amount := in.Amount
	if amount == 0 {
		amount = models.MinimumFee
	}
	if amount < 0 {
		return nil, invalid("amount", ErrInvalidAmount, "Jumlah pembayaran tidak boleh negatif")
	}

	paymentDate := strings.TrimSpace(in.PaymentDate)
	if paymentDate == "" {
		paymentDate = s.today()
	} else if _, err := time.Parse(dateLayout, paymentDate); err != nil {
		return nil, invalid("paymentDate", ErrInvalidDate, "Tanggal pembayaran harus berformat YYYY-MM-DD")
	}

	record := &PaymentRecord{Citizen: citizen}
	status, overridden := ApplyAmountRule(amount, models.PaymentStatusPaid)
	if overridden {
		record.Notices = append(record.Notices, downgradeNotice(amount, models.PaymentStatusPaid))
	}

	now := s.Now()
	proof := models.ProofPlaceholderURL
	payment := models.Payment{
		CitizenID:   citizen.ID,
		Period:      period,
		Amount:      amount,
		PaymentDate: paymentDate,
		ProofURL:    &proof,
		Status:      status,
		RecordedBy:  in.RecordedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repos.Payments.Create(ctx, &payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			return nil, invalid("period", ErrDuplicatePayment,
				fmt.Sprintf("Pembayaran %s untuk warga ini sudah tercatat", period))
		}
		return nil, persistence("create payment", err)
	}
	record.Payment = payment

	s.Logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("citizen_id", citizen.ID),
		zap.String("period", period),
		zap.Int64("amount", amount),
		zap.String("status", string(status)))

	if status == models.PaymentStatusPaid {
		record.Reconciled, record.ReconcileErr = s.reconcileReminders(ctx, citizen.ID, period)
	}

	s.invalidateRecap(ctx, period)
	s.publish(ctx, EventPaymentRecorded, payment)
	return record, nil
}

// reconcileReminders marks unread payment reminders of the citizen for the
// period as read. A failure is logged and returned, never escalated.
func (s *PaymentService) reconcileReminders(ctx context.Context, citizenID, period string) (int, error) {
	reminders, err := s.Repos.Notifications.ListUnread(ctx, citizenID, models.NotificationTypePaymentReminder, period)
	if err != nil {
		s.Logger.Warn("Failed to query payment reminders", zap.String("citizen_id", citizenID), zap.String("period", period), zap.Error(err))
		return 0, persistence("query reminders", err)
	}
	if len(reminders) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(reminders))
	for _, n := range reminders {
		ids = append(ids, n.ID)
	}
	if err := s.Repos.Notifications.MarkRead(ctx, ids); err != nil {
		s.Logger.Warn("Failed to mark payment reminders read", zap.String("citizen_id", citizenID), zap.String("period", period), zap.Error(err))
		return 0, persistence("mark reminders read", err)
	}
	return len(ids), nil
}

// PaymentUpdate is a partial edit of a payment. Nil fields are left unchanged.
type PaymentUpdate struct {
	Amount      *int64                `json:"amount"`
	Status      *models.PaymentStatus `json:"status"`
	PaymentDate *string               `json:"paymentDate"`
	ProofURL    *string               `json:"proofUrl"`
}

// PaymentResult is an updated payment plus any override notices
type PaymentResult struct {
	Payment models.Payment `json:"payment"`
	Notices []Notice       `json:"notices,omitempty"`
}

// UpdatePayment edits a payment. Whenever amount or status is written the
// amount rule is checked against the resulting values.
func (s *PaymentService) UpdatePayment(ctx context.Context, id string, upd PaymentUpdate) (*PaymentResult, error) {
	current, err := s.Repos.Payments.Get(ctx, id)
	if err != nil {
		return nil, persistence("get payment", err)
	}
	if current == nil {
		return nil, ErrPaymentNotFound
	}

	if upd.Status != nil && !upd.Status.Valid() {
		return nil, invalid("status", ErrInvalidStatus, "Status pembayaran tidak dikenal")
	}
	if upd.Amount != nil && *upd.Amount < 0 {
		return nil, invalid("amount", ErrInvalidAmount, "Jumlah pembayaran tidak boleh negatif")
	}
	if upd.PaymentDate != nil && *upd.PaymentDate != "" {
		if _, err := time.Parse(dateLayout, *upd.PaymentDate); err != nil {
			return nil, invalid("paymentDate", ErrInvalidDate, "Tanggal pembayaran harus berformat YYYY-MM-DD")
		}
	}

	updated := *current
	fields := repository.Fields{}
	result := &PaymentResult{}

	if upd.Amount != nil || upd.Status != nil {
		if upd.Amount != nil {
			updated.Amount = *upd.Amount
		}
		requested := updated.Status
		if upd.Status != nil {
			requested = *upd.Status
		}
		status, overridden := ApplyAmountRule(updated.Amount, requested)
		if overridden {
			result.Notices = append(result.Notices, downgradeNotice(updated.Amount, requested))
			s.Logger.Warn("Payment status downgraded by amount rule",
				zap.String("payment_id", id),
				zap.Int64("amount", updated.Amount),
				zap.String("requested", string(requested)))
		}
		updated.Status = status
		fields["amount"] = updated.Amount
		fields["status"] = string(updated.Status)
	}
	if upd.PaymentDate != nil {
		updated.PaymentDate = *upd.PaymentDate
		fields["paymentDate"] = updated.PaymentDate
	}
	if upd.ProofURL != nil {
		proof := *upd.ProofURL
		updated.ProofURL = &proof
		fields["proofUrl"] = proof
	}
	if len(fields) == 0 {
		result.Payment = *current
		return result, nil
	}

	updated.UpdatedAt = s.Now()
	fields["updatedAt"] = updated.UpdatedAt
	if err := s.Repos.Payments.Update(ctx, id, fields); err != nil {
		return nil, persistence("update payment", err)
	}
	result.Payment = updated

	if updated.Status == models.PaymentStatusPaid && current.Status != models.PaymentStatusPaid {
		// reconciliation failure is already logged; the edit is committed
		_, _ = s.reconcileReminders(ctx, updated.CitizenID, updated.Period)
	}

	s.invalidateRecap(ctx, updated.Period)
	s.publish(ctx, EventPaymentUpdated, updated)
	return result, nil
}

// AttachProof uploads a proof of payment and stores its URL on the payment
func (s *PaymentService) AttachProof(ctx context.Context, id, filename, contentType string, r io.Reader, size int64) (*models.Payment, error) {
	if s.proofs == nil {
		return nil, ErrProofStorageUnavailable
	}
	current, err := s.Repos.Payments.Get(ctx, id)
	if err != nil {
		return nil, persistence("get payment", err)
	}
	if current == nil {
		return nil, ErrPaymentNotFound
	}

	key := fmt.Sprintf("proofs/%s/%d%s", current.CitizenID, s.Now().Unix(), strings.ToLower(path.Ext(filename)))
	url, err := s.proofs.Upload(ctx, key, contentType, r, size)
	if err != nil {
		return nil, fmt.Errorf("upload proof: %w", err)
	}

	res, err := s.UpdatePayment(ctx, id, PaymentUpdate{ProofURL: &url})
	if err != nil {
		return nil, err
	}
	return &res.Payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Repos.Payments.Get(ctx, id)
	if err != nil {
		return nil, persistence("get payment", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// ListPayments returns payments matching the filter, newest period first
func (s *PaymentService) ListPayments(ctx context.Context, f repository.PaymentFilter) ([]models.Payment, error) {
	if f.Period != "" {
		period, err := models.NormalizePeriod(f.Period)
		if err != nil {
			return nil, invalid("period", ErrInvalidPeriod, "Periode pembayaran tidak valid")
		}
		f.Period = period
	}
	payments, err := s.Repos.Payments.List(ctx, f)
	if err != nil {
		return nil, persistence("list payments", err)
	}
	sortByPeriodDesc(payments)
	return payments, nil
}

// CitizenHistory returns all payments of a citizen, newest period first
func (s *PaymentService) CitizenHistory(ctx context.Context, citizenID string) ([]models.Payment, error) {
	return s.ListPayments(ctx, repository.PaymentFilter{CitizenID: citizenID})
}

func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repos.Payments.Delete(ctx, id); err != nil {
		return persistence("delete payment", err)
	}
	s.invalidateRecap(ctx, current.Period)
	s.publish(ctx, EventPaymentDeleted, current)
	return nil
}

// CitizenStatus resolves the status of one citizen for a period
func (s *PaymentService) CitizenStatus(ctx context.Context, citizenID, period string) (Resolution, error) {
	label, err := models.NormalizePeriod(period)
	if err != nil {
		return Resolution{}, invalid("period", ErrInvalidPeriod, "Periode pembayaran tidak valid")
	}
	payments, err := s.Repos.Payments.List(ctx, repository.PaymentFilter{CitizenID: citizenID, Period: label})
	if err != nil {
		return Resolution{}, persistence("list payments", err)
	}
	res := ResolveStatus(citizenID, label, payments)
	s.warnDuplicates(citizenID, label, res)
	return res, nil
}

// StatusBoard resolves every citizen of an area for a period
func (s *PaymentService) StatusBoard(ctx context.Context, area models.Area, period string) ([]CitizenStatus, error) {
	label, err := models.NormalizePeriod(period)
	if err != nil {
		return nil, invalid("period", ErrInvalidPeriod, "Periode pembayaran tidak valid")
	}
	citizens, err := s.Repos.Citizens.List(ctx, area)
	if err != nil {
		return nil, persistence("list citizens", err)
	}
	payments, err := s.Repos.Payments.List(ctx, repository.PaymentFilter{Period: label})
	if err != nil {
		return nil, persistence("list payments", err)
	}

	rows := StatusBoard(citizens, label, payments)
	for _, row := range rows {
		s.warnDuplicates(row.Citizen.ID, label, row.Resolution)
	}
	return rows, nil
}

func (s *PaymentService) warnDuplicates(citizenID, period string, res Resolution) {
	if res.Duplicates == 0 {
		return
	}
	s.Logger.Warn("Multiple payments for one citizen and period",
		zap.String("citizen_id", citizenID),
		zap.String("period", period),
		zap.Int("duplicates", res.Duplicates),
		zap.String("chosen_payment_id", res.Payment.ID))
}

func (s *PaymentService) invalidateRecap(ctx context.Context, period string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, recapCacheKey(period)); err != nil {
		s.Logger.Warn("Failed to invalidate recap cache", zap.String("period", period), zap.Error(err))
	}
}

// sortByPeriodDesc orders payments by period, newest first; unparsable labels go last
func sortByPeriodDesc(payments []models.Payment) {
	key := func(p models.Payment) int {
		y, m, err := models.ParsePeriod(p.Period)
		if err != nil {
			return 0
		}
		return y*12 + int(m)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return key(payments[i]) > key(payments[j])
	})
}
