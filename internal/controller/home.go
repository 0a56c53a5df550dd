package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
)

// HomeState はホーム画面（カテゴリと商品一覧）の状態です
type HomeState struct {
	Phase              Phase
	Categories         []*model.Category
	SelectedCategoryID int64
	SearchKeyword      string
	Items              []*model.Item
	Refreshing         bool
	ErrorMessage       string
}

// HomeController はホーム画面の読み込み順序と状態を管理します
type HomeController struct {
	catalog Catalog
	logger  *slog.Logger
	life    *lifecycle

	mu    sync.Mutex
	state HomeState
}

// NewHomeController は新しいHomeControllerを作成します
func NewHomeController(catalog Catalog, logger *slog.Logger) *HomeController {
	if logger == nil {
		logger = slog.Default()
	}
	return &HomeController{
		catalog: catalog,
		logger:  logger.With("screen", "home"),
		life:    newLifecycle(),
		state:   HomeState{SelectedCategoryID: model.AllCategoryID},
	}
}

// State は現在の状態のコピーを返します
func (c *HomeController) State() HomeState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Categories = slices.Clone(s.Categories)
	s.Items = slices.Clone(s.Items)
	return s
}

// Focus はエラー表示を消してから、カテゴリ → 商品一覧の順に読み込みます
func (c *HomeController) Focus(ctx context.Context) error {
	c.mu.Lock()
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	return c.load(ctx)
}

// Refresh は引っ張って更新の操作です
// 成功・失敗にかかわらず Refreshing は false に戻ります
func (c *HomeController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.state.Refreshing = true
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.state.Refreshing = false
		c.mu.Unlock()
	}()
	return c.load(ctx)
}

// SelectCategory はカテゴリを切り替えて商品一覧だけを再取得します
func (c *HomeController) SelectCategory(ctx context.Context, categoryID int64) error {
	c.mu.Lock()
	c.state.SelectedCategoryID = categoryID
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	return c.loadItems(ctx)
}

// SetCategory は再取得せずにカテゴリの選択だけを変更します
// 次の Focus または Search で使われます
func (c *HomeController) SetCategory(categoryID int64) {
	c.mu.Lock()
	c.state.SelectedCategoryID = categoryID
	c.mu.Unlock()
}

// SetSearchKeyword は検索キーワードの入力を反映します
func (c *HomeController) SetSearchKeyword(keyword string) {
	c.mu.Lock()
	c.state.SearchKeyword = keyword
	c.mu.Unlock()
}

// Search は現在のキーワードで商品一覧だけを再取得します
func (c *HomeController) Search(ctx context.Context) error {
	c.mu.Lock()
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	return c.loadItems(ctx)
}

// Dispose は画面を破棄し、実行中の読み込み結果を捨てるようにします
func (c *HomeController) Dispose() {
	c.life.dispose()
}

// load はカテゴリの取得が終わってから商品一覧を取得します
// 既定の絞り込みが取得したカテゴリ一覧に依存するため、並行には取得しません
func (c *HomeController) load(ctx context.Context) error {
	catErr := c.loadCategories(ctx)
	if ignorable(catErr) {
		return catErr
	}
	itemErr := c.loadItems(ctx)
	if itemErr != nil {
		return itemErr
	}
	return catErr
}

func (c *HomeController) loadCategories(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "categories")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.mu.Unlock()

	categories, err := c.catalog.ListCategories(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("categories", epoch); stale != nil {
		return stale
	}
	if err != nil {
		// 以前のカテゴリ一覧は残したまま、商品一覧の取得は続けます
		c.logger.Warn("failed to load categories", "error", err)
		c.state.ErrorMessage = model.UserMessage(err, "Could not load categories.")
		return err
	}

	c.state.Categories = categories
	if !containsCategory(categories, c.state.SelectedCategoryID) && len(categories) > 0 {
		c.state.SelectedCategoryID = categories[0].ID
	}
	return nil
}

func (c *HomeController) loadItems(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "items")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	q := model.ItemQuery{
		CategoryID:    c.state.SelectedCategoryID,
		SearchKeyword: c.state.SearchKeyword,
	}
	c.mu.Unlock()

	items, err := c.catalog.ListItems(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("items", epoch); stale != nil {
		return stale
	}
	if err != nil {
		c.logger.Warn("failed to load items", "error", err, "category_id", q.CategoryID)
		c.state.Phase = PhaseError
		c.state.ErrorMessage = model.UserMessage(err, "Could not load items.")
		return err
	}

	c.state.Items = items
	c.state.Phase = PhaseReady
	return nil
}

func containsCategory(categories []*model.Category, id int64) bool {
	for _, cat := range categories {
		if cat != nil && cat.ID == id {
			return true
		}
	}
	return false
}
