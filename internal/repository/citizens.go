package repository

import (
	"context"

	"sampahku/internal/models"
	"sampahku/internal/store"
)

// CitizenRepository persists citizens
type CitizenRepository struct {
	store store.DocumentStore
}

// Get returns the citizen or nil when absent
func (r *CitizenRepository) Get(ctx context.Context, id string) (*models.Citizen, error) {
	return get[models.Citizen](ctx, r.store, models.CollectionCitizens, id)
}

// List returns citizens, optionally restricted to one RT/RW
func (r *CitizenRepository) List(ctx context.Context, area models.Area) ([]models.Citizen, error) {
	return query[models.Citizen](ctx, r.store, models.CollectionCitizens, areaPredicates(area.RT, area.RW)...)
}

// FindByNIK returns every citizen registered with the NIK
func (r *CitizenRepository) FindByNIK(ctx context.Context, nik string) ([]models.Citizen, error) {
	return query[models.Citizen](ctx, r.store, models.CollectionCitizens, store.Eq("nik", nik))
}

// Create stores a new citizen and sets its id
func (r *CitizenRepository) Create(ctx context.Context, c *models.Citizen) error {
	data, err := store.Encode(c)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, models.CollectionCitizens, data)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CitizenRepository) Update(ctx context.Context, id string, fields Fields) error {
	return update(ctx, r.store, models.CollectionCitizens, id, fields)
}

func (r *CitizenRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionCitizens, id)
}
