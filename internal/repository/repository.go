// Package repository maps domain entities onto document-store collections.
package repository

import (
	"context"

	"sampahku/internal/store"
)

// Repositories groups every entity repository built on one store
type Repositories struct {
	Citizens      *CitizenRepository
	Payments      *PaymentRepository
	Disputes      *DisputeRepository
	Accounts      *AccountRepository
	Notifications *NotificationRepository
}

// New builds all repositories on the given document store
func New(s store.DocumentStore) *Repositories {
	return &Repositories{
		Citizens:      &CitizenRepository{store: s},
		Payments:      &PaymentRepository{store: s},
		Disputes:      &DisputeRepository{store: s},
		Accounts:      &AccountRepository{store: s},
		Notifications: &NotificationRepository{store: s},
	}
}

// Fields is a partial update of a document
type Fields map[string]interface{}

func get[T any](ctx context.Context, s store.DocumentStore, collection, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	doc, err := s.GetByID(ctx, collection, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var out T
	if err := store.Decode(*doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func query[T any](ctx context.Context, s store.DocumentStore, collection string, predicates ...store.Predicate) ([]T, error) {
	var (
		docs []store.Document
		err  error
	)
	if len(predicates) == 0 {
		docs, err = s.GetAll(ctx, collection)
	} else {
		docs, err = s.Query(ctx, collection, predicates...)
	}
	if err != nil {
		return nil, err
	}
	return store.DecodeAll[T](docs)
}

func update(ctx context.Context, s store.DocumentStore, collection, id string, fields Fields) error {
	data, err := store.Normalize(fields)
	if err != nil {
		return err
	}
	return s.Update(ctx, collection, id, data)
}

func areaPredicates(rt, rw string) []store.Predicate {
	var preds []store.Predicate
	if rt != "" {
		preds = append(preds, store.Eq("rt", rt))
	}
	if rw != "" {
		preds = append(preds, store.Eq("rw", rw))
	}
	return preds
}
