package controller

import (
	"context"
	"log/slog"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/session"
)

// DetailState は商品詳細画面の状態です
type DetailState struct {
	Phase            Phase
	Item             *model.Item
	ErrorMessage     string
	ConfirmingDelete bool // 削除確認モーダルを表示中
	Deleting         bool
}

// DetailController は商品詳細の表示と削除フローを管理します
type DetailController struct {
	itemID   int64
	catalog  Catalog
	listing  Listing
	session  session.Reader
	nav      Navigator
	alert    Alerter
	logger   *slog.Logger
	life     *lifecycle
	deleting *guard
	carousel *Carousel

	mu    sync.Mutex
	state DetailState
}

// NewDetailController は新しいDetailControllerを作成します
func NewDetailController(itemID int64, catalog Catalog, listing Listing, sess session.Reader, nav Navigator, alert Alerter, view ListView, logger *slog.Logger) *DetailController {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailController{
		itemID:   itemID,
		catalog:  catalog,
		listing:  listing,
		session:  sess,
		nav:      nav,
		alert:    alert,
		logger:   logger.With("screen", "detail", "item_id", itemID),
		life:     newLifecycle(),
		deleting: newGuard(),
		carousel: NewCarousel(0, view),
	}
}

// State は現在の状態のコピーを返します
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Item != nil {
		item := *s.Item
		s.Item = &item
	}
	s.Deleting = c.deleting.busy()
	return s
}

// Carousel は画像カルーセルを返します
func (c *DetailController) Carousel() *Carousel {
	return c.carousel
}

// Focus は商品詳細を読み込みます
// 不正なIDの場合は通信せずにエラー状態になります
func (c *DetailController) Focus(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "detail")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.state.ConfirmingDelete = false
	c.mu.Unlock()

	item, err := c.catalog.GetItem(ctx, c.itemID)
	if err == nil && item == nil {
		err = model.Rejected("item not found")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("detail", epoch); stale != nil {
		return stale
	}
	if err != nil {
		c.logger.Warn("failed to load item", "error", err)
		c.state.Phase = PhaseError
		c.state.ErrorMessage = model.UserMessage(err, "Could not load the item.")
		return err
	}

	c.state.Item = item
	c.state.Phase = PhaseReady
	c.carousel.Reset(len(item.Images))
	return nil
}

// IsOwner はログイン中のユーザーが出品者かどうかを返します
func (c *DetailController) IsOwner() bool {
	c.mu.Lock()
	item := c.state.Item
	c.mu.Unlock()
	return c.ownedBy(item)
}

func (c *DetailController) ownedBy(item *model.Item) bool {
	if item == nil || c.session == nil {
		return false
	}
	cur, ok := c.session.Current()
	return ok && cur.UserInfo.ID != 0 && cur.UserInfo.ID == item.UserID
}

// RequestDelete は削除確認モーダルを表示します
func (c *DetailController) RequestDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.life.disposed() {
		return ErrDisposed
	}
	if !c.ownedBy(c.state.Item) {
		return model.Invalid("Only the seller can delete this item.")
	}
	c.state.ConfirmingDelete = true
	return nil
}

// CancelDelete は削除確認モーダルを閉じます
func (c *DetailController) CancelDelete() {
	c.mu.Lock()
	c.state.ConfirmingDelete = false
	c.mu.Unlock()
}

// ConfirmDelete はモーダルを閉じてから削除を実行します
// 成功すると前の画面に戻り、失敗するとアラートを表示して詳細画面に留まります
func (c *DetailController) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	confirming := c.state.ConfirmingDelete
	c.state.ConfirmingDelete = false
	c.mu.Unlock()
	if !confirming {
		return model.Invalid("deletion was not confirmed")
	}

	return c.deleting.run(func() error {
		ctx, done, epoch, err := c.life.begin(ctx, "delete")
		if err != nil {
			return err
		}
		defer done()

		token, err := c.session.Token()
		if err == nil {
			err = c.listing.Delete(ctx, token, c.itemID)
		}

		if stale := c.life.check("delete", epoch); stale != nil {
			return stale
		}
		if err != nil {
			c.logger.Warn("failed to delete item", "error", err)
			c.alert.Alert("Delete failed", model.UserMessage(err, "Could not delete the item."))
			return err
		}

		c.logger.Info("item deleted")
		c.nav.Back()
		return nil
	})
}

// Dispose は画面を破棄し、実行中の結果を捨てるようにします
func (c *DetailController) Dispose() {
	c.life.dispose()
}
