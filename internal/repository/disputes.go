package repository

import (
	"context"

	"sampahku/internal/models"
	"sampahku/internal/store"
)

// DisputeFilter narrows dispute listings
type DisputeFilter struct {
	CitizenID string
	Status    models.DisputeStatus
	Area      models.Area
}

type DisputeRepository struct {
	store store.DocumentStore
}

func (r *DisputeRepository) Get(ctx context.Context, id string) (*models.Dispute, error) {
	return get[models.Dispute](ctx, r.store, models.CollectionDisputes, id)
}

func (r *DisputeRepository) List(ctx context.Context, f DisputeFilter) ([]models.Dispute, error) {
	preds := areaPredicates(f.Area.RT, f.Area.RW)
	if f.CitizenID != "" {
		preds = append(preds, store.Eq("citizenId", f.CitizenID))
	}
	if f.Status != "" {
		preds = append(preds, store.Eq("status", string(f.Status)))
	}
	return query[models.Dispute](ctx, r.store, models.CollectionDisputes, preds...)
}

func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	data, err := store.Encode(d)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, models.CollectionDisputes, data)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *DisputeRepository) Update(ctx context.Context, id string, fields Fields) error {
	return update(ctx, r.store, models.CollectionDisputes, id, fields)
}

func (r *DisputeRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionDisputes, id)
}
