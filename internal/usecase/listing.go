package usecase

import (
	"context"
	"strconv"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// ListingUsecase は出品の作成・更新・削除を担当します
type ListingUsecase struct {
	items repository.ItemRepository
}

// NewListingUsecase は新しいListingUsecaseインスタンスを作成します
func NewListingUsecase(items repository.ItemRepository) *ListingUsecase {
	return &ListingUsecase{items: items}
}

// ValidateDraft は送信前の入力検証を行い、前後の空白を取り除いた下書きを返します
func ValidateDraft(draft model.ItemDraft) (model.ItemDraft, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Content = strings.TrimSpace(draft.Content)
	draft.Price = strings.TrimSpace(draft.Price)

	if draft.Title == "" || draft.Price == "" || draft.Content == "" {
		return draft, model.Invalid("Please fill in the title, price and description.")
	}
	price, err := strconv.ParseInt(draft.Price, 10, 64)
	if err != nil || price < 0 {
		return draft, model.Invalid("Price must be a whole number of 0 or more.")
	}
	if len(draft.Images) > model.MaxItemImages {
		return draft, model.Invalid("You can attach up to " + strconv.Itoa(model.MaxItemImages) + " images.")
	}
	if draft.ItemID < 0 || draft.CategoryID < 0 {
		return draft, model.Invalid("invalid item or category id")
	}
	return draft, nil
}

// Upsert は下書きを検証してから商品を作成または更新し、保存された商品IDを返します
// 検証に失敗した場合は通信しません
func (u *ListingUsecase) Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error) {
	draft, err := ValidateDraft(draft)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(token) == "" {
		return 0, model.Unauthenticated("")
	}
	return u.items.Upsert(ctx, token, draft)
}

// Delete は商品を削除します
func (u *ListingUsecase) Delete(ctx context.Context, token string, itemID int64) error {
	if strings.TrimSpace(token) == "" {
		return model.Unauthenticated("")
	}
	if itemID <= 0 {
		return model.Invalid("invalid item id")
	}
	return u.items.DeleteByID(ctx, token, itemID)
}
