package controller

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/session"
	"jo3qma.com/marketplace/internal/usecase"
)

// UploadState は出品フォームの状態です
type UploadState struct {
	Phase        Phase
	Categories   []*model.Category // 「All」を含まない選択肢
	Form         model.ItemDraft
	Submitting   bool
	ErrorMessage string
}

// UploadController は出品の作成・編集フォームを管理します
// itemID が 0 の場合は新規作成です
type UploadController struct {
	itemID     int64
	catalog    Catalog
	listing    Listing
	session    session.Reader
	nav        Navigator
	alert      Alerter
	logger     *slog.Logger
	life       *lifecycle
	submitting *guard

	mu    sync.Mutex
	state UploadState
}

// NewUploadController は新しいUploadControllerを作成します
func NewUploadController(itemID int64, catalog Catalog, listing Listing, sess session.Reader, nav Navigator, alert Alerter, logger *slog.Logger) *UploadController {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadController{
		itemID:     itemID,
		catalog:    catalog,
		listing:    listing,
		session:    sess,
		nav:        nav,
		alert:      alert,
		logger:     logger.With("screen", "upload", "item_id", itemID),
		life:       newLifecycle(),
		submitting: newGuard(),
		state:      UploadState{Form: model.ItemDraft{ItemID: itemID}},
	}
}

// State は現在の状態のコピーを返します
func (c *UploadController) State() UploadState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Categories = slices.Clone(s.Categories)
	s.Form.Images = slices.Clone(s.Form.Images)
	s.Submitting = c.submitting.busy()
	return s
}

// Focus はカテゴリの選択肢を読み込み、編集の場合は既存の商品でフォームを埋めます
func (c *UploadController) Focus(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "load")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	categories, err := c.catalog.ListPickerCategories(ctx)
	var item *model.Item
	if err == nil && c.itemID > 0 {
		item, err = c.catalog.GetItem(ctx, c.itemID)
		if err == nil && item == nil {
			err = model.Rejected("item not found")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("load", epoch); stale != nil {
		return stale
	}
	if err != nil {
		c.logger.Warn("failed to load form", "error", err)
		c.state.Phase = PhaseError
		c.state.ErrorMessage = model.UserMessage(err, "Could not load the form.")
		return err
	}

	c.state.Categories = categories
	if item != nil {
		c.state.Form = draftFromItem(item)
	}
	if c.state.Form.CategoryID == model.AllCategoryID && len(categories) > 0 {
		c.state.Form.CategoryID = categories[0].ID
	}
	c.state.Phase = PhaseReady
	return nil
}

func draftFromItem(item *model.Item) model.ItemDraft {
	images := make([]model.ImageSource, 0, len(item.Images))
	for _, img := range item.Images {
		images = append(images, model.ImageSource{Ref: img.URL, ImgID: img.ImgID})
	}
	return model.ItemDraft{
		ItemID:     item.ItemID,
		CategoryID: item.CategoryID,
		Title:      item.Title,
		Content:    item.Content,
		Price:      strconv.FormatInt(item.Price, 10),
		Images:     images,
	}
}

// SetTitle はタイトルの入力を反映します
func (c *UploadController) SetTitle(v string) { c.edit(func(f *model.ItemDraft) { f.Title = v }) }

// SetContent は本文の入力を反映します
func (c *UploadController) SetContent(v string) { c.edit(func(f *model.ItemDraft) { f.Content = v }) }

// SetPrice は価格の入力を反映します
func (c *UploadController) SetPrice(v string) { c.edit(func(f *model.ItemDraft) { f.Price = v }) }

// SetCategory はカテゴリの選択を反映します
func (c *UploadController) SetCategory(id int64) { c.edit(func(f *model.ItemDraft) { f.CategoryID = id }) }

func (c *UploadController) edit(fn func(f *model.ItemDraft)) {
	c.mu.Lock()
	fn(&c.state.Form)
	c.mu.Unlock()
}

// PickImages は選択された画像を追加し、追加できた枚数を返します
// 上限を超えた分は捨てて、アラートで知らせます
func (c *UploadController) PickImages(refs ...string) int {
	c.mu.Lock()
	added := 0
	dropped := 0
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if len(c.state.Form.Images) >= model.MaxItemImages {
			dropped++
			continue
		}
		c.state.Form.Images = append(c.state.Form.Images, model.ImageSource{Ref: ref})
		added++
	}
	c.mu.Unlock()

	if dropped > 0 {
		c.alert.Alert("Too many images", fmt.Sprintf("You can attach up to %d images.", model.MaxItemImages))
	}
	return added
}

// RemoveImage は index の画像を取り除きます
func (c *UploadController) RemoveImage(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.state.Form.Images) {
		return model.Invalid(fmt.Sprintf("image index %d out of range", index))
	}
	c.state.Form.Images = slices.Delete(c.state.Form.Images, index, index+1)
	return nil
}

// Submit はフォームを検証して送信し、保存された商品IDを返します
// 失敗した場合はサーバーのメッセージをそのまま表示し、入力内容は保持します
func (c *UploadController) Submit(ctx context.Context) (int64, error) {
	var saved int64
	err := c.submitting.run(func() error {
		ctx, done, epoch, err := c.life.begin(ctx, "submit")
		if err != nil {
			return err
		}
		defer done()

		c.mu.Lock()
		draft := c.state.Form
		draft.Images = slices.Clone(draft.Images)
		c.mu.Unlock()

		if _, err := usecase.ValidateDraft(draft); err != nil {
			c.alert.Alert("Check your input", model.UserMessage(err, "Please check the form."))
			return err
		}
		token, err := c.session.Token()
		if err != nil {
			c.alert.Alert("Login required", model.UserMessage(err, "Please log in first."))
			return err
		}

		id, err := c.listing.Upsert(ctx, token, draft)
		if stale := c.life.check("submit", epoch); stale != nil {
			return stale
		}
		if err != nil {
			c.logger.Warn("failed to save item", "error", err)
			c.mu.Lock()
			c.state.ErrorMessage = model.UserMessage(err, "Could not save the item.")
			c.mu.Unlock()
			c.alert.Alert("Upload failed", model.UserMessage(err, "Could not save the item."))
			return err
		}

		saved = id
		c.logger.Info("item saved", "saved_id", id)
		c.alert.Alert("Saved", "Your item has been saved.")
		c.nav.Replace(RouteHome)
		return nil
	})
	return saved, err
}

// Dispose は画面を破棄し、実行中の結果を捨てるようにします
func (c *UploadController) Dispose() {
	c.life.dispose()
}
