package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

// DisputeInput is a dispute as submitted by a citizen
type DisputeInput struct {
	CitizenID   string `json:"-"`
	CitizenName string `json:"citizenName"`
	RT          string `json:"rt"`
	RW          string `json:"rw"`
	Reason      string `json:"reason"`
	// PaymentID is the disputed payment, or "UMUM" / empty for a general dispute
	PaymentID string `json:"paymentId"`
}

// DisputeView is a dispute joined to the payment it refers to.
// Payment is nil for general disputes and for payments that no longer exist.
type DisputeView struct {
	models.Dispute
	Payment *models.Payment `json:"payment"`
}

type DisputeService struct {
	Deps
	// Strict rejects transitions outside models.DisputeTransitions
	Strict bool
}

func NewDisputeService(d Deps, strict bool) *DisputeService {
	return &DisputeService{Deps: d.withDefaults(), Strict: strict}
}

// CreateDispute files a new dispute with status Baru and today's server date
func (s *DisputeService) CreateDispute(ctx context.Context, in DisputeInput) (*models.Dispute, error) {
	name := strings.TrimSpace(in.CitizenName)
	reason := strings.TrimSpace(in.Reason)
	if name == "" || reason == "" {
		return nil, invalid("reason", ErrRequiredFields, "Nama dan alasan sanggahan wajib diisi")
	}

	paymentID := strings.TrimSpace(in.PaymentID)
	if paymentID == "" {
		paymentID = models.GeneralDisputePaymentID
	}
	if paymentID != models.GeneralDisputePaymentID {
		if err := s.checkDisputedPayment(ctx, in.CitizenID, paymentID); err != nil {
			return nil, err
		}
	}

	dispute := &models.Dispute{
		PaymentID:     paymentID,
		CitizenID:     in.CitizenID,
		CitizenName:   name,
		RT:            strings.TrimSpace(in.RT),
		RW:            strings.TrimSpace(in.RW),
		Reason:        reason,
		SubmittedDate: s.today(),
		Status:        models.DisputeStatusNew,
		UpdatedAt:     s.Now(),
	}
	if err := s.Repos.Disputes.Create(ctx, dispute); err != nil {
		return nil, persistence("create dispute", err)
	}

	s.Logger.Info("Dispute submitted", zap.String("dispute_id", dispute.ID), zap.String("payment_id", paymentID))
	s.publish(ctx, EventDisputeCreated, dispute)
	return dispute, nil
}

// checkDisputedPayment accepts only an existing payment of the disputing citizen
func (s *DisputeService) checkDisputedPayment(ctx context.Context, citizenID, paymentID string) error {
	rejected := invalid("paymentId", ErrInvalidDisputedPayment, "Pembayaran yang disanggah tidak ditemukan")
	if strings.Contains(paymentID, "/") {
		return rejected
	}
	p, err := s.Repos.Payments.Get(ctx, paymentID)
	if err != nil {
		return persistence("get disputed payment", err)
	}
	if p == nil || p.CitizenID != citizenID {
		return rejected
	}
	return nil
}

// TransitionDispute moves a dispute to status. Transitions outside the
// table are logged and, unless Strict is set, still applied.
// Setting the current status again is a no-op.
func (s *DisputeService) TransitionDispute(ctx context.Context, id string, status models.DisputeStatus, note string) (*models.Dispute, error) {
	if !status.Valid() {
		return nil, invalid("status", ErrInvalidStatus, "Status sanggahan tidak dikenal")
	}

	current, err := s.GetDispute(ctx, id)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if current.Status == status && note == "" {
		return current, nil
	}

	if !current.Status.CanTransitionTo(status) {
		if s.Strict {
			return nil, invalid("status", ErrInvalidTransition,
				fmt.Sprintf("Sanggahan berstatus %q tidak dapat diubah menjadi %q", current.Status, status))
		}
		s.Logger.Warn("Dispute transition outside the transition table",
			zap.String("dispute_id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)))
	}

	updated := *current
	updated.Status = status
	updated.UpdatedAt = s.Now()
	fields := repository.Fields{"status": string(status), "updatedAt": updated.UpdatedAt}
	if note != "" {
		updated.ResolutionNote = note
		fields["resolutionNote"] = note
	}
	if err := s.Repos.Disputes.Update(ctx, id, fields); err != nil {
		return nil, persistence("update dispute", err)
	}

	s.publish(ctx, EventDisputeTransitioned, map[string]interface{}{
		"id":   id,
		"from": current.Status,
		"to":   status,
	})
	return &updated, nil
}

func (s *DisputeService) GetDispute(ctx context.Context, id string) (*models.Dispute, error) {
	d, err := s.Repos.Disputes.Get(ctx, id)
	if err != nil {
		return nil, persistence("get dispute", err)
	}
	if d == nil {
		return nil, ErrDisputeNotFound
	}
	return d, nil
}

// ListDisputes returns disputes matching the filter, newest first, joined to their payments
func (s *DisputeService) ListDisputes(ctx context.Context, f repository.DisputeFilter) ([]DisputeView, error) {
	disputes, err := s.Repos.Disputes.List(ctx, f)
	if err != nil {
		return nil, persistence("list disputes", err)
	}
	sort.SliceStable(disputes, func(i, j int) bool {
		if disputes[i].SubmittedDate != disputes[j].SubmittedDate {
			return disputes[i].SubmittedDate > disputes[j].SubmittedDate
		}
		return disputes[i].UpdatedAt.After(disputes[j].UpdatedAt)
	})
	return s.join(ctx, disputes)
}

// ListCitizenDisputes returns the disputes a citizen filed
func (s *DisputeService) ListCitizenDisputes(ctx context.Context, citizenID string) ([]DisputeView, error) {
	return s.ListDisputes(ctx, repository.DisputeFilter{CitizenID: citizenID})
}

// join attaches each dispute's payment. A payment that cannot be loaded or
// belongs to another citizen joins as nil.
func (s *DisputeService) join(ctx context.Context, disputes []models.Dispute) ([]DisputeView, error) {
	views := make([]DisputeView, 0, len(disputes))
	for _, d := range disputes {
		view := DisputeView{Dispute: d}
		if !d.IsGeneral() {
			p, err := s.Repos.Payments.Get(ctx, d.PaymentID)
			switch {
			case err != nil:
				s.Logger.Warn("Failed to load disputed payment",
					zap.String("dispute_id", d.ID),
					zap.String("payment_id", d.PaymentID),
					zap.Error(err))
			case p != nil && p.CitizenID == d.CitizenID:
				view.Payment = p
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *DisputeService) DeleteDispute(ctx context.Context, id string) error {
	if _, err := s.GetDispute(ctx, id); err != nil {
		return err
	}
	if err := s.Repos.Disputes.Delete(ctx, id); err != nil {
		return persistence("delete dispute", err)
	}
	return nil
}
