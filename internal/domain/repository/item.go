package repository

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

// ItemRepository は商品の取得・作成・削除の方法を抽象化します。
// 実装がREST APIなのか、ローカルのキャッシュなのかはドメイン層は知りません。
type ItemRepository interface {
	// FetchItems は条件に合う商品一覧を取得します
	FetchItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error)
	// FetchByID は指定された商品IDの詳細を取得します
	FetchByID(ctx context.Context, itemID int64) (*model.Item, error)
	// Upsert は商品を作成または更新し、保存された商品IDを返します（不明な場合は0）
	Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error)
	// DeleteByID は商品をサーバー側から削除します
	DeleteByID(ctx context.Context, token string, itemID int64) error
}
