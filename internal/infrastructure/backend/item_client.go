package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// itemClient は商品APIを呼び出してドメインモデルに変換する実装です
// 腐敗防止層として、バックエンドのJSON構造をドメインモデルから切り離します
type itemClient struct {
	*Client
}

// NewItemClient は新しいItemRepositoryの実装を作成します
func NewItemClient(c *Client) repository.ItemRepository {
	return &itemClient{Client: c}
}

// FetchItems は条件に合う商品一覧を取得します
func (c *itemClient) FetchItems(ctx context.Context, q model.ItemQuery) ([]*model.Item, error) {
	var dtos []itemDTO
	if err := c.get(ctx, "/api/item/get_items", itemsQuery(q), "", &dtos); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return itemsToModel(dtos), nil
}

// itemsQuery は検索条件をクエリ文字列に変換します
// 「All」カテゴリと空のキーワードは空文字として送らず、パラメータごと省略します
func itemsQuery(q model.ItemQuery) url.Values {
	q = q.Normalize()
	values := url.Values{}
	if q.CategoryID != model.AllCategoryID {
		values.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.SearchKeyword != "" {
		values.Set("search_keyword", q.SearchKeyword)
	}
	return values
}

// FetchByID は指定された商品IDの詳細を取得します
func (c *itemClient) FetchByID(ctx context.Context, itemID int64) (*model.Item, error) {
	if itemID <= 0 {
		return nil, model.Invalid("invalid item id")
	}

	query := url.Values{}
	query.Set("item_id", strconv.FormatInt(itemID, 10))

	var dto *itemDTO
	if err := c.get(ctx, "/api/item/get_item_by_id", query, "", &dto); err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	if dto == nil {
		return nil, model.Rejected("item not found")
	}
	return dto.toModel(), nil
}

// Upsert は商品をマルチパートで送信します
// 画像はホスト済みのものも含めてすべてバイナリとして送り直します
func (c *itemClient) Upsert(ctx context.Context, token string, draft model.ItemDraft) (int64, error) {
	if err := requireToken(token); err != nil {
		return 0, err
	}

	form := newMultipartForm()
	form.field("category_id", strconv.FormatInt(draft.CategoryID, 10))
	form.field("item_id", strconv.FormatInt(draft.ItemID, 10))
	form.field("title", draft.Title)
	form.field("content", draft.Content)
	form.field("price", strings.TrimSpace(draft.Price))

	for i, src := range draft.Images {
		img, err := c.loadImage(ctx, src, i)
		if err != nil {
			return 0, fmt.Errorf("load image %d: %w", i, err)
		}
		form.file("files", img)
	}

	req, err := form.request(ctx, http.MethodPost, c.endpoint("/api/item/upsert_item", nil))
	if err != nil {
		return 0, err
	}
	c.authorize(req, token)

	var raw json.RawMessage
	if err := c.call(req, c.uploadTimeout, &raw); err != nil {
		return 0, fmt.Errorf("upsert item: %w", err)
	}

	// data の形はエンドポイントの版によって異なるため、item_id が読めた場合だけ使います
	var saved struct {
		ItemID int64 `json:"item_id"`
	}
	if err := json.Unmarshal(raw, &saved); err != nil || saved.ItemID == 0 {
		saved.ItemID = draft.ItemID
	}
	return saved.ItemID, nil
}

// DeleteByID は商品を削除します
func (c *itemClient) DeleteByID(ctx context.Context, token string, itemID int64) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if itemID <= 0 {
		return model.Invalid("invalid item id")
	}

	form := newMultipartForm()
	form.field("id", strconv.FormatInt(itemID, 10))

	req, err := form.request(ctx, http.MethodPost, c.endpoint("/api/item/delete_item_by_id", nil))
	if err != nil {
		return err
	}
	c.authorize(req, token)

	if err := c.call(req, 0, nil); err != nil {
		return fmt.Errorf("delete item %d: %w", itemID, err)
	}
	return nil
}
