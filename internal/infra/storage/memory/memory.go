// Package memory is the in-memory storage used when no database is
// configured, which keeps local development and the API tests independent
// of Postgres. It is not durable.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/infra/storage"
)

type MemoryStorage struct {
	users        map[uuid.UUID]*domain.User
	activities   map[uuid.UUID]*domain.Activity
	categories   map[uuid.UUID]*domain.Category
	geofences    map[uuid.UUID]*domain.Geofence
	llmProviders map[uuid.UUID]*domain.LLMProvider
	messages     map[string]*domain.Message // keyed by Twilio SID
	mu           sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:        make(map[uuid.UUID]*domain.User),
		activities:   make(map[uuid.UUID]*domain.Activity),
		categories:   make(map[uuid.UUID]*domain.Category),
		geofences:    make(map[uuid.UUID]*domain.Geofence),
		llmProviders: make(map[uuid.UUID]*domain.LLMProvider),
		messages:     make(map[string]*domain.Message),
	}
}

// Probe satisfies the health monitor; memory storage is always reachable.
func (s *MemoryStorage) Probe(ctx context.Context) (time.Duration, error) {
	return 0, nil
}

// -----------------------------------------------------------------------------
// User Repository
// -----------------------------------------------------------------------------

type UserRepo struct {
	store *MemoryStorage
}

func NewUserRepo(store *MemoryStorage) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Save(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = time.Now().UTC()
	r.store.users[u.ID] = &u
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.users[id], nil
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	users := make([]*domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	return nil
}

// -----------------------------------------------------------------------------
// Activity Repository
// -----------------------------------------------------------------------------

type ActivityRepo struct {
	store *MemoryStorage
}

func NewActivityRepo(store *MemoryStorage) *ActivityRepo {
	return &ActivityRepo{store: store}
}

func (r *ActivityRepo) Save(ctx context.Context, activity *domain.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a := *activity
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.store.activities[a.ID] = &a
	return nil
}

func (r *ActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.activities[id], nil
}

func (r *ActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Activity
	for _, a := range r.store.activities {
		if a.UserID == userID && !a.OccurredAt.Before(from) && a.OccurredAt.Before(to) {
			out = append(out, a)
		}
	}
	sortActivities(out)
	return out, nil
}

func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Activity, 0, len(r.store.activities))
	for _, a := range r.store.activities {
		out = append(out, a)
	}
	sortActivities(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.activities, id)
	return nil
}

func sortActivities(activities []*domain.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].OccurredAt.After(activities[j].OccurredAt)
	})
}

// -----------------------------------------------------------------------------
// Category Repository
// -----------------------------------------------------------------------------

type CategoryRepo struct {
	store *MemoryStorage
}

func NewCategoryRepo(store *MemoryStorage) *CategoryRepo {
	return &CategoryRepo{store: store}
}

func (r *CategoryRepo) Save(ctx context.Context, category *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *category
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.store.categories[c.ID] = &c
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.categories[id], nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.categories, id)
	return nil
}

// -----------------------------------------------------------------------------
// Geofence Repository
// -----------------------------------------------------------------------------

type GeofenceRepo struct {
	store *MemoryStorage
}

func NewGeofenceRepo(store *MemoryStorage) *GeofenceRepo {
	return &GeofenceRepo{store: store}
}

func (r *GeofenceRepo) Save(ctx context.Context, fence *domain.Geofence) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f := *fence
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	r.store.geofences[f.ID] = &f
	return nil
}

func (r *GeofenceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Geofence, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.geofences[id], nil
}

func (r *GeofenceRepo) List(ctx context.Context) ([]*domain.Geofence, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Geofence, 0, len(r.store.geofences))
	for _, f := range r.store.geofences {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *GeofenceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.geofences, id)
	return nil
}

// -----------------------------------------------------------------------------
// LLM Provider Repository
// -----------------------------------------------------------------------------

type LLMProviderRepo struct {
	store *MemoryStorage
}

func NewLLMProviderRepo(store *MemoryStorage) *LLMProviderRepo {
	return &LLMProviderRepo{store: store}
}

func (r *LLMProviderRepo) Save(ctx context.Context, provider *domain.LLMProvider) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := *provider
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()
	r.store.llmProviders[p.ID] = &p
	return nil
}

func (r *LLMProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LLMProvider, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.llmProviders[id], nil
}

func (r *LLMProviderRepo) List(ctx context.Context) ([]*domain.LLMProvider, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.LLMProvider, 0, len(r.store.llmProviders))
	for _, p := range r.store.llmProviders {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *LLMProviderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.llmProviders, id)
	return nil
}

// -----------------------------------------------------------------------------
// Message Repository
// -----------------------------------------------------------------------------

type MessageRepo struct {
	store *MemoryStorage
}

func NewMessageRepo(store *MemoryStorage) *MessageRepo {
	return &MessageRepo{store: store}
}

func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := *msg
	r.store.messages[m.TwilioSID] = &m
	return nil
}

func (r *MessageRepo) GetBySID(ctx context.Context, sid string) (*domain.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.messages[sid], nil
}

func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Message, 0, len(r.store.messages))
	for _, m := range r.store.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Report Repository
// -----------------------------------------------------------------------------

type ReportRepo struct {
	store *MemoryStorage
}

func NewReportRepo(store *MemoryStorage) *ReportRepo {
	return &ReportRepo{store: store}
}

func (r *ReportRepo) Workload(ctx context.Context, from, to time.Time) ([]storage.WorkloadEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	type key struct {
		user     uuid.UUID
		category uuid.UUID
	}
	counts := make(map[key]int)
	for _, a := range r.store.activities {
		if a.OccurredAt.Before(from) || !a.OccurredAt.Before(to) {
			continue
		}
		counts[key{a.UserID, a.CategoryID}]++
	}

	entries := make([]storage.WorkloadEntry, 0, len(counts))
	for k, n := range counts {
		entry := storage.WorkloadEntry{UserID: k.user, CategoryID: k.category, Count: n}
		if u := r.store.users[k.user]; u != nil {
			entry.UserName = u.Name
		}
		if c := r.store.categories[k.category]; c != nil {
			entry.CategoryName = c.Name
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UserName != entries[j].UserName {
			return entries[i].UserName < entries[j].UserName
		}
		return entries[i].CategoryName < entries[j].CategoryName
	})
	return entries, nil
}
