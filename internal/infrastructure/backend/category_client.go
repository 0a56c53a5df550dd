package backend

import (
	"context"
	"fmt"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

type categoryClient struct {
	*Client
}

// NewCategoryClient は新しいCategoryRepositoryの実装を作成します
func NewCategoryClient(c *Client) repository.CategoryRepository {
	return &categoryClient{Client: c}
}

// FetchCategories はカテゴリ一覧をサーバーが返した順序のまま取得します
func (c *categoryClient) FetchCategories(ctx context.Context) ([]*model.Category, error) {
	var dtos []categoryDTO
	if err := c.get(ctx, "/api/item/get_categories", nil, "", &dtos); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	categories := make([]*model.Category, 0, len(dtos))
	for _, d := range dtos {
		categories = append(categories, d.toModel())
	}
	return categories, nil
}
