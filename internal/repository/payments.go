package repository

import (
	"context"
	"errors"

	"sampahku/internal/models"
	"sampahku/internal/store"
)

// ErrDuplicatePayment is returned when a citizen already has a payment for the period
var ErrDuplicatePayment = errors.New("payment already recorded for this period")

// PaymentFilter narrows payment listings. Empty fields do not filter.
type PaymentFilter struct {
	CitizenID string
	Period    string
	Status    models.PaymentStatus
}

// PaymentRepository persists payments keyed by (citizenId, period)
type PaymentRepository struct {
	store store.DocumentStore
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	return get[models.Payment](ctx, r.store, models.CollectionPayments, id)
}

// List returns payments matching the filter
func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	var preds []store.Predicate
	if f.CitizenID != "" {
		preds = append(preds, store.Eq("citizenId", f.CitizenID))
	}
	if f.Period != "" {
		preds = append(preds, store.Eq("period", f.Period))
	}
	if f.Status != "" {
		preds = append(preds, store.Eq("status", string(f.Status)))
	}
	return query[models.Payment](ctx, r.store, models.CollectionPayments, preds...)
}

// Create stores the payment under its composite key
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	data, err := store.Encode(p)
	if err != nil {
		return err
	}
	id := models.PaymentKey(p.CitizenID, p.Period)
	if err := r.store.Create(ctx, models.CollectionPayments, id, data); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrDuplicatePayment
		}
		return err
	}
	p.ID = id
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, id string, fields Fields) error {
	return update(ctx, r.store, models.CollectionPayments, id, fields)
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionPayments, id)
}
