package repository

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

// CategoryRepository はカテゴリ一覧の取得方法を抽象化します。
type CategoryRepository interface {
	// FetchCategories はサーバーに登録されているカテゴリを表示順に取得します
	// 合成カテゴリ「All」は含みません
	FetchCategories(ctx context.Context) ([]*model.Category, error)
}
