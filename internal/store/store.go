// Package store defines the document-store collaborator the domain services
// persist through, with Firestore, MongoDB and in-memory implementations.
package store

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Create when the id is taken
	ErrAlreadyExists = errors.New("document already exists")
	// ErrNotFound is returned by Update and BatchUpdate for missing documents
	ErrNotFound = errors.New("document not found")
	// ErrUnsupportedOperator is returned for predicate operators a backend cannot express
	ErrUnsupportedOperator = errors.New("unsupported query operator")
)

// Op is a comparison operator used in query predicates
type Op string

const (
	OpEqual        Op = "=="
	OpNotEqual     Op = "!="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpIn           Op = "in"
)

// Predicate is a single (field, op, value) filter
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Where builds a predicate
func Where(field string, op Op, value interface{}) Predicate {
	return Predicate{Field: field, Op: op, Value: value}
}

// Eq builds an equality predicate
func Eq(field string, value interface{}) Predicate {
	return Where(field, OpEqual, value)
}

// Document is a stored record with its id
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Patch is a partial update of one document
type Patch struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore is the capability surface the domain needs from a document database.
// GetByID returns (nil, nil) when the document does not exist.
type DocumentStore interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, predicates ...Predicate) ([]Document, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Create(ctx context.Context, collection, id string, data map[string]interface{}) error
	Update(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	// BatchUpdate applies every patch or none of them
	BatchUpdate(ctx context.Context, collection string, patches []Patch) error
	Close() error
}
