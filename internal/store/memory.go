package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore used in tests and local runs
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]interface{})}
}

func copyFields(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// sortedDocs returns documents ordered by id, like Firestore does by default
func sortedDocs(coll map[string]map[string]interface{}, keep func(map[string]interface{}) bool) []Document {
	docs := make([]Document, 0, len(coll))
	for id, fields := range coll {
		if keep != nil && !keep(fields) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: copyFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (m *MemoryStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedDocs(m.collections[collection], nil), nil
}

func (m *MemoryStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &Document{ID: id, Data: copyFields(fields)}, nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, predicates ...Predicate) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range predicates {
		if !knownOp(p.Op) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperator, p.Op)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedDocs(m.collections[collection], func(fields map[string]interface{}) bool {
		for _, p := range predicates {
			value, ok := fields[p.Field]
			if !ok || !matches(value, p.Op, p.Value) {
				return false
			}
		}
		return true
	}), nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := m.Create(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]map[string]interface{})
		m.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
	}
	coll[id] = copyFields(data)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return m.BatchUpdate(ctx, collection, []Patch{{ID: id, Data: data}})
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func (m *MemoryStore) BatchUpdate(ctx context.Context, collection string, patches []Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[collection]
	// Validate everything first so a missing document leaves the batch unapplied
	for _, p := range patches {
		if _, ok := coll[p.ID]; !ok {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, p.ID)
		}
	}
	for _, p := range patches {
		fields := coll[p.ID]
		for k, v := range p.Data {
			fields[k] = v
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func knownOp(op Op) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpIn:
		return true
	}
	return false
}

func matches(value interface{}, op Op, target interface{}) bool {
	switch op {
	case OpEqual:
		return compare(value, target) == 0
	case OpNotEqual:
		return compare(value, target) != 0
	case OpIn:
		rv := reflect.ValueOf(target)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if compare(value, rv.Index(i).Interface()) == 0 {
				return true
			}
		}
		return false
	}

	c := compare(value, target)
	if c == incomparable {
		return false
	}
	switch op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}

const incomparable = 2

// compare orders two scalar values; numbers of any Go type compare numerically
func compare(a, b interface{}) int {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return incomparable
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	switch av := a.(type) {
	case string:
		bv, ok := toString(b)
		if !ok {
			return incomparable
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return incomparable
		}
		if av == bv {
			return 0
		}
		return incomparable
	case nil:
		if b == nil {
			return 0
		}
		return incomparable
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return incomparable
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	// named string types such as models.PaymentStatus
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}
