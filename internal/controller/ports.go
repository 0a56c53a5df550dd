package controller

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

// Catalog は閲覧系のユースケースです
type Catalog interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListPickerCategories(ctx context.Context) ([]*model.Category, error)
	ListItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error)
	GetItem(ctx context.Context, itemID int64) (*model.Item, error)
}

// Listing は出品の変更系のユースケースです
type Listing interface {
	Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error)
	Delete(ctx context.Context, token string, itemID int64) error
}

// Account は認証とマイページのユースケースです
type Account interface {
	Login(ctx context.Context, cred model.Credentials) (*model.Session, error)
	Register(ctx context.Context, reg model.Registration) (*model.Session, error)
	Profile(ctx context.Context, token string) (*model.Profile, error)
	UpdateAddress(ctx context.Context, token, address string) (model.IdentityPatch, error)
}

// Places は施設検索のユースケースです
type Places interface {
	SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error)
}
