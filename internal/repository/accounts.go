package repository

import (
	"context"

	"sampahku/internal/models"
	"sampahku/internal/store"
)

// AccountRepository persists RT accounts and the singleton admin account
type AccountRepository struct {
	store store.DocumentStore
}

func (r *AccountRepository) GetRT(ctx context.Context, id string) (*models.RTAccount, error) {
	return get[models.RTAccount](ctx, r.store, models.CollectionRTAccounts, id)
}

func (r *AccountRepository) ListRT(ctx context.Context) ([]models.RTAccount, error) {
	return query[models.RTAccount](ctx, r.store, models.CollectionRTAccounts)
}

// ListRTByArea returns the accounts managing one RT/RW
func (r *AccountRepository) ListRTByArea(ctx context.Context, area models.Area) ([]models.RTAccount, error) {
	return query[models.RTAccount](ctx, r.store, models.CollectionRTAccounts, areaPredicates(area.RT, area.RW)...)
}

func (r *AccountRepository) FindRTByUsername(ctx context.Context, username string) ([]models.RTAccount, error) {
	return query[models.RTAccount](ctx, r.store, models.CollectionRTAccounts, store.Eq("username", username))
}

func (r *AccountRepository) CreateRT(ctx context.Context, a *models.RTAccount) error {
	data, err := store.Encode(a)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, models.CollectionRTAccounts, data)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *AccountRepository) UpdateRT(ctx context.Context, id string, fields Fields) error {
	return update(ctx, r.store, models.CollectionRTAccounts, id, fields)
}

func (r *AccountRepository) DeleteRT(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionRTAccounts, id)
}

// GetAdmin returns the singleton admin account or nil if not provisioned
func (r *AccountRepository) GetAdmin(ctx context.Context) (*models.AdminAccount, error) {
	return get[models.AdminAccount](ctx, r.store, models.CollectionAdmins, models.AdminDocumentID)
}

// CreateAdmin provisions the singleton admin document
func (r *AccountRepository) CreateAdmin(ctx context.Context, a *models.AdminAccount) error {
	data, err := store.Encode(a)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, models.CollectionAdmins, models.AdminDocumentID, data); err != nil {
		return err
	}
	a.ID = models.AdminDocumentID
	return nil
}

func (r *AccountRepository) UpdateAdmin(ctx context.Context, fields Fields) error {
	return update(ctx, r.store, models.CollectionAdmins, models.AdminDocumentID, fields)
}
