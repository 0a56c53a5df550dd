package usecase

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

type fakeCategoryRepo struct {
	categories []*model.Category
	err        error
}

func (f fakeCategoryRepo) FetchCategories(ctx context.Context) ([]*model.Category, error) {
	return f.categories, f.err
}

type fakeItemRepo struct {
	items    []*model.Item
	item     *model.Item
	upserted int64
	err      error

	calls     int
	lastQuery model.ItemQuery
	lastDraft model.ItemDraft
}

func (f *fakeItemRepo) FetchItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error) {
	f.calls++
	f.lastQuery = q
	return f.items, f.err
}

func (f *fakeItemRepo) FetchByID(ctx context.Context, itemID int64) (*model.Item, error) {
	f.calls++
	return f.item, f.err
}

func (f *fakeItemRepo) Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error) {
	f.calls++
	f.lastDraft = draft
	return f.upserted, f.err
}

func (f *fakeItemRepo) DeleteByID(ctx context.Context, token string, itemID int64) error {
	f.calls++
	return f.err
}

type fakeUserRepo struct {
	session *model.Session
	profile *model.Profile
	patch   model.IdentityPatch
	err     error

	calls      int
	lastReg    model.Registration
	lastUpdate model.GeoUpdate
}

func (f *fakeUserRepo) Login(ctx context.Context, cred model.Credentials) (*model.Session, error) {
	f.calls++
	return f.session, f.err
}

func (f *fakeUserRepo) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	f.calls++
	f.lastReg = reg
	return f.session, f.err
}

func (f *fakeUserRepo) FetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	f.calls++
	return f.profile, f.err
}

func (f *fakeUserRepo) UpdateGeo(ctx context.Context, token string, update model.GeoUpdate) (model.IdentityPatch, error) {
	f.calls++
	f.lastUpdate = update
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
	places []*model.Place
	err    error
}

func (f fakePlaceRepo) SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error) {
	return f.places, f.err
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
