package usecase

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// CatalogUsecase はカテゴリ・商品一覧・商品詳細の閲覧を担当します
type CatalogUsecase struct {
	categories repository.CategoryRepository
	items      repository.ItemRepository
}

// NewCatalogUsecase は新しいCatalogUsecaseインスタンスを作成します
func NewCatalogUsecase(categories repository.CategoryRepository, items repository.ItemRepository) *CatalogUsecase {
	return &CatalogUsecase{
		categories: categories,
		items:      items,
	}
}

// ListCategories はカテゴリ一覧の先頭に「All」を加えて返します
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]*model.Category, error) {
	fetched, err := u.categories.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Category, 0, len(fetched)+1)
	out = append(out, model.AllCategory())
	for _, c := range fetched {
		if c == nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ListPickerCategories は出品フォーム用に「All」を含まないカテゴリ一覧を返します
func (u *CatalogUsecase) ListPickerCategories(ctx context.Context) ([]*model.Category, error) {
	all, err := u.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return all[1:], nil
}

// ListItems は検索条件を正規化してから商品一覧を取得します
func (u *CatalogUsecase) ListItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error) {
	items, err := u.items.FetchItems(ctx, q.Normalize())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Item{}
	}
	return items, nil
}

// GetItem は商品詳細を取得します
// 不正なIDの場合は通信せずに検証エラーを返します
func (u *CatalogUsecase) GetItem(ctx context.Context, itemID int64) (*model.Item, error) {
	if itemID <= 0 {
		return nil, model.Invalid("invalid item id")
	}
	return u.items.FetchByID(ctx, itemID)
}
