package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

type fakeUserRepo struct {
	byPhone map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
	saveErr error
	getErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byPhone: make(map[string]*domain.User),
		byID:    make(map[uuid.UUID]*domain.User),
	}
}

func (f *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.byID[user.ID] = user
	f.byPhone[user.Phone] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID[id], nil
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byPhone[phone], nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	users := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeActivityRepo struct {
	saved   []*domain.Activity
	saveErr error
}

func (f *fakeActivityRepo) Save(_ context.Context, a *domain.Activity) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeActivityRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Activity, error) {
	for _, a := range f.saved {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeActivityRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Activity, error) {
	var out []*domain.Activity
	for _, a := range f.saved {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]*domain.Activity, error) {
	if len(f.saved) > limit {
		return f.saved[:limit], nil
	}
	return f.saved, nil
}

func (f *fakeActivityRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

type fakeCategoryRepo struct {
	categories []*domain.Category
}

func (f *fakeCategoryRepo) Save(_ context.Context, c *domain.Category) error {
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

type fakeGeofenceRepo struct {
	fences []*domain.Geofence
}

func (f *fakeGeofenceRepo) Save(_ context.Context, g *domain.Geofence) error {
	f.fences = append(f.fences, g)
	return nil
}

func (f *fakeGeofenceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Geofence, error) {
	for _, g := range f.fences {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeGeofenceRepo) List(_ context.Context) ([]*domain.Geofence, error) {
	return f.fences, nil
}

func (f *fakeGeofenceRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

type fakeMessageRepo struct {
	saved   []*domain.Message
	saveErr error
	saveFn  func(ctx context.Context, m *domain.Message) error
}

func (f *fakeMessageRepo) Save(ctx context.Context, m *domain.Message) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, m)
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeMessageRepo) GetBySID(_ context.Context, sid string) (*domain.Message, error) {
	for _, m := range f.saved {
		if m.TwilioSID == sid {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) ListRecent(_ context.Context, limit int) ([]*domain.Message, error) {
	return f.saved, nil
}

type fakeDeduper struct {
	seen    map[string]bool
	cleared []string
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

// Honors ctx the way go-redis does: a dead context fails the command.
func (f *fakeDeduper) MarkDelivery(ctx context.Context, sid string, _ time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if f.seen[sid] {
		return false, nil
	}
	f.seen[sid] = true
	return true, nil
}

func (f *fakeDeduper) ClearDelivery(ctx context.Context, sid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(f.seen, sid)
	f.cleared = append(f.cleared, sid)
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendWhatsApp(_ context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+": "+body)
	return nil
}

type serverFixture struct {
	server     *Server
	users      *fakeUserRepo
	activities *fakeActivityRepo
	categories *fakeCategoryRepo
	geofences  *fakeGeofenceRepo
	messages   *fakeMessageRepo
	dedup      *fakeDeduper
	sender     *fakeSender
}

func newFixture() *serverFixture {
	f := &serverFixture{
		users:      newFakeUserRepo(),
		activities: &fakeActivityRepo{},
		categories: &fakeCategoryRepo{},
		geofences:  &fakeGeofenceRepo{},
		messages:   &fakeMessageRepo{},
		dedup:      newFakeDeduper(),
		sender:     &fakeSender{},
	}
	f.server = NewServer(
		slog.New(slog.DiscardHandler),
		0,
		Repos{
			Users:      f.users,
			Activities: f.activities,
			Categories: f.categories,
			Geofences:  f.geofences,
			Messages:   f.messages,
		},
		nil,
		f.dedup,
		f.sender,
		WebhookOptions{DedupTTL: time.Hour, AutoAck: true},
	)
	return f
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.server.Handler.ServeHTTP(rec, req)
	return rec
}
