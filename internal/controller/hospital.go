package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/usecase"
)

// HospitalState は病院・薬局検索画面の状態です
type HospitalState struct {
	Phase        Phase
	Keyword      string
	Location     *model.Coordinates
	Sort         model.PlaceSort
	Places       []*model.Place // サーバーから返ってきた順
	ErrorMessage string
}

// HospitalSearchController は周辺施設の検索と並び替えを管理します
type HospitalSearchController struct {
	places Places
	logger *slog.Logger
	life   *lifecycle

	mu    sync.Mutex
	state HospitalState
}

// NewHospitalSearchController は新しいHospitalSearchControllerを作成します
func NewHospitalSearchController(places Places, logger *slog.Logger) *HospitalSearchController {
	if logger == nil {
		logger = slog.Default()
	}
	return &HospitalSearchController{
		places: places,
		logger: logger.With("screen", "hospital"),
		life:   newLifecycle(),
	}
}

// State は現在の状態のコピーを返します
func (c *HospitalSearchController) State() HospitalState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Places = slices.Clone(s.Places)
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	return s
}

// Sorted は現在の並び順で並べた施設一覧を返します
func (c *HospitalSearchController) Sorted() []*model.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	return usecase.SortPlaces(c.state.Places, c.state.Sort)
}

// Focus は遷移元から渡されたキーワードと現在地で検索します
func (c *HospitalSearchController) Focus(ctx context.Context, keyword string, location *model.Coordinates) error {
	c.mu.Lock()
	c.state.Keyword = keyword
	c.state.Location = location
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	return c.Search(ctx)
}

// SetKeyword は検索キーワードの入力を反映します
func (c *HospitalSearchController) SetKeyword(keyword string) {
	c.mu.Lock()
	c.state.Keyword = keyword
	c.mu.Unlock()
}

// SetSort は並び順を切り替えます。再検索はしません
func (c *HospitalSearchController) SetSort(by model.PlaceSort) {
	c.mu.Lock()
	c.state.Sort = by
	c.mu.Unlock()
}

// Search は現在のキーワードで検索します
// 失敗した場合は前回の結果を残します
func (c *HospitalSearchController) Search(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "search")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	keyword, location := c.state.Keyword, c.state.Location
	c.mu.Unlock()

	places, err := c.places.SearchHospitals(ctx, keyword, location)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("search", epoch); stale != nil {
		return stale
	}
	if err != nil {
		c.logger.Warn("failed to search hospitals", "error", err)
		c.state.Phase = PhaseError
		c.state.ErrorMessage = model.UserMessage(err, "Could not search nearby places.")
		return err
	}

	c.state.Places = places
	c.state.Phase = PhaseReady
	return nil
}

// Dispose は画面を破棄し、実行中の結果を捨てるようにします
func (c *HospitalSearchController) Dispose() {
	c.life.dispose()
}
