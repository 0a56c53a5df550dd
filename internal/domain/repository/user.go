package repository

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

// UserRepository は認証とユーザー情報の取得・更新を抽象化します。
type UserRepository interface {
	Login(ctx context.Context, cred model.Credentials) (*model.Session, error)
	Register(ctx context.Context, reg model.Registration) (*model.Session, error)
	// FetchProfile はトークンの持ち主の情報と出品一覧を取得します
	FetchProfile(ctx context.Context, token string) (*model.Profile, error)
	// UpdateGeo は住所・座標を更新し、レスポンスに含まれていた識別情報を返します
	UpdateGeo(ctx context.Context, token string, update model.GeoUpdate) (model.IdentityPatch, error)
}
