package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
	"sampahku/internal/store"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

// countingStore counts writes that reach the wrapped store
type countingStore struct {
	store.DocumentStore
	mu     sync.Mutex
	writes int
}

func (s *countingStore) count() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *countingStore) Add(ctx context.Context, c string, data map[string]interface{}) (string, error) {
	s.count()
	return s.DocumentStore.Add(ctx, c, data)
}

func (s *countingStore) Create(ctx context.Context, c, id string, data map[string]interface{}) error {
	s.count()
	return s.DocumentStore.Create(ctx, c, id, data)
}

func (s *countingStore) Update(ctx context.Context, c, id string, data map[string]interface{}) error {
	s.count()
	return s.DocumentStore.Update(ctx, c, id, data)
}

func (s *countingStore) Delete(ctx context.Context, c, id string) error {
	s.count()
	return s.DocumentStore.Delete(ctx, c, id)
}

func (s *countingStore) BatchUpdate(ctx context.Context, c string, patches []store.Patch) error {
	s.count()
	return s.DocumentStore.BatchUpdate(ctx, c, patches)
}

var errStoreDown = errors.New("store unavailable")

// failingBatchStore rejects every batch update
type failingBatchStore struct {
	store.DocumentStore
}

func (failingBatchStore) BatchUpdate(context.Context, string, []store.Patch) error {
	return errStoreDown
}

// failingGetStore fails every lookup of one document id
type failingGetStore struct {
	store.DocumentStore
	id string
}

func (s failingGetStore) GetByID(ctx context.Context, collection, id string) (*store.Document, error) {
	if id == s.id {
		return nil, errStoreDown
	}
	return s.DocumentStore.GetByID(ctx, collection, id)
}

type publishedEvent struct {
	Name    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, name string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Name: name, Payload: payload})
	return nil
}

func (p *recordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name)
	}
	return names
}

type fixture struct {
	mem    *store.MemoryStore
	counts *countingStore
	repos  *repository.Repositories
	events *recordingPublisher
	deps   Deps
	seq    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	counts := &countingStore{DocumentStore: mem}
	return newFixtureOn(t, mem, counts)
}

func newFixtureOn(t *testing.T, mem *store.MemoryStore, s store.DocumentStore) *fixture {
	t.Helper()
	counts, _ := s.(*countingStore)
	repos := repository.New(s)
	events := &recordingPublisher{}
	return &fixture{
		mem:    mem,
		counts: counts,
		repos:  repos,
		events: events,
		deps: Deps{
			Repos:  repos,
			Events: events,
			Logger: zap.NewNop(),
			Now:    func() time.Time { return testNow },
		},
	}
}

func (f *fixture) put(t *testing.T, collection, id string, v interface{}) {
	t.Helper()
	data, err := store.Encode(v)
	require.NoError(t, err)
	require.NoError(t, f.mem.Create(context.Background(), collection, id, data))
}

func (f *fixture) citizen(t *testing.T, id, name, rt, rw string) models.Citizen {
	t.Helper()
	f.seq++
	c := models.Citizen{
		Name:         name,
		NIK:          fmt.Sprintf("32010100%08d", f.seq),
		KK:           "3201010000009999",
		Address:      "Jl. Melati " + id,
		RT:           rt,
		RW:           rw,
		CouponNumber: "K-" + id,
		Phone:        fmt.Sprintf("0812%08d", f.seq),
	}
	f.put(t, models.CollectionCitizens, id, c)
	c.ID = id
	return c
}

func (f *fixture) payment(t *testing.T, p models.Payment) models.Payment {
	t.Helper()
	if p.ID == "" {
		p.ID = models.PaymentKey(p.CitizenID, p.Period)
	}
	f.put(t, models.CollectionPayments, p.ID, p)
	return p
}

func (f *fixture) reminder(t *testing.T, id, citizenID, period string, read bool) {
	t.Helper()
	f.put(t, models.CollectionNotifications, id, models.Notification{
		CitizenID: citizenID,
		Type:      models.NotificationTypePaymentReminder,
		Period:    period,
		IsRead:    read,
		CreatedAt: testNow.Add(-24 * time.Hour),
	})
}

func (f *fixture) notification(t *testing.T, id string) models.Notification {
	t.Helper()
	n, err := f.repos.Notifications.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, n)
	return *n
}

// memCache is an in-memory Cache
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	hits    int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}
