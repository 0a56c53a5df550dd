package controller

import (
	"context"
	"sync"
	"testing"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/session"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryKV) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memoryKV) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *memoryKV) DeleteMany(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// newSession は user が nil なら未ログインのセッションを作成します
func newSession(t *testing.T, user *model.UserInfo) *session.Store {
	t.Helper()

	s := session.NewStore(&memoryKV{})
	if user != nil {
		if err := s.SignIn(context.Background(), *user, "tok"); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
	}
	return s
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []*model.Category
	err        error
	calls      int
}

func (f *fakeCategoryRepo) FetchCategories(ctx context.Context) ([]*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.categories, f.err
}

func (f *fakeCategoryRepo) set(categories []*model.Category, err error) {
	f.mu.Lock()
	f.categories, f.err = categories, err
	f.mu.Unlock()
}

type fakeItemRepo struct {
	mu       sync.Mutex
	items    []*model.Item
	item     *model.Item
	upserted int64
	err      error

	// started と release が設定されている場合、FetchItems は release が閉じられるまで待ちます
	started chan struct{}
	release chan struct{}

	calls     int
	queries   []model.ItemQuery
	lastDraft model.ItemDraft
	deleted   []int64
}

func (f *fakeItemRepo) FetchItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error) {
	f.mu.Lock()
	f.calls++
	f.queries = append(f.queries, q)
	items, err := f.items, f.err
	started, release := f.started, f.release
	f.mu.Unlock()

	if release != nil {
		started <- struct{}{}
		<-release
	}
	return items, err
}

func (f *fakeItemRepo) FetchByID(ctx context.Context, itemID int64) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.item, f.err
}

func (f *fakeItemRepo) Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastDraft = draft
	return f.upserted, f.err
}

func (f *fakeItemRepo) DeleteByID(ctx context.Context, token string, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.deleted = append(f.deleted, itemID)
	return f.err
}

func (f *fakeItemRepo) set(items []*model.Item, err error) {
	f.mu.Lock()
	f.items, f.err = items, err
	f.mu.Unlock()
}

func (f *fakeItemRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeUserRepo struct {
	profile *model.Profile
	patch   model.IdentityPatch
	err     error
	calls   int
}

func (f *fakeUserRepo) Login(ctx context.Context, cred model.Credentials) (*model.Session, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeUserRepo) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeUserRepo) FetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	f.calls++
	return f.profile, f.err
}

func (f *fakeUserRepo) UpdateGeo(ctx context.Context, token string, update model.GeoUpdate) (model.IdentityPatch, error) {
	f.calls++
	return f.patch, f.err
}

type fakeGeocoder struct {
	point *model.GeoPoint
	err   error
}

func (f fakeGeocoder) Geocode(ctx context.Context, address string) (*model.GeoPoint, error) {
	return f.point, f.err
}

func (f fakeGeocoder) ReverseGeocode(ctx context.Context, at model.Coordinates) (*model.GeoPoint, error) {
	return f.point, f.err
}

type fakePlaceRepo struct {
	mu     sync.Mutex
	places []*model.Place
	err    error
}

func (f *fakePlaceRepo) SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.places, f.err
}

type recordingNavigator struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNavigator) Back()               { n.record("back") }
func (n *recordingNavigator) Replace(route Route) { n.record("replace:" + string(route)) }
func (n *recordingNavigator) Reset(route Route)   { n.record("reset:" + string(route)) }

func (n *recordingNavigator) record(s string) {
	n.mu.Lock()
	n.calls = append(n.calls, s)
	n.mu.Unlock()
}

func (n *recordingNavigator) history() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

type alert struct {
	title   string
	message string
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (a *recordingAlerter) Alert(title, message string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, alert{title: title, message: message})
	a.mu.Unlock()
}

func (a *recordingAlerter) last() (alert, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.alerts) == 0 {
		return alert{}, false
	}
	return a.alerts[len(a.alerts)-1], true
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
