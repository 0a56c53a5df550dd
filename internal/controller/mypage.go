package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/session"
)

// MyPageState はマイページの状態です
type MyPageState struct {
	Phase           Phase
	Profile         *model.Profile
	ErrorMessage    string
	UpdatingAddress bool
}

// MyPageController は自分の情報・出品一覧・住所更新・ログアウトを管理します
type MyPageController struct {
	account  Account
	session  session.ReadWriter
	nav      Navigator
	alert    Alerter
	logger   *slog.Logger
	life     *lifecycle
	updating *guard

	mu    sync.Mutex
	state MyPageState
}

// NewMyPageController は新しいMyPageControllerを作成します
func NewMyPageController(account Account, sess session.ReadWriter, nav Navigator, alert Alerter, logger *slog.Logger) *MyPageController {
	if logger == nil {
		logger = slog.Default()
	}
	return &MyPageController{
		account:  account,
		session:  sess,
		nav:      nav,
		alert:    alert,
		logger:   logger.With("screen", "mypage"),
		life:     newLifecycle(),
		updating: newGuard(),
	}
}

// State は現在の状態のコピーを返します
func (c *MyPageController) State() MyPageState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Profile != nil {
		p := *s.Profile
		p.Items = slices.Clone(p.Items)
		s.Profile = &p
	}
	s.UpdatingAddress = c.updating.busy()
	return s
}

// Focus はプロフィールを読み込みます
// ログインしていない場合は通信せずに未認証状態になります
func (c *MyPageController) Focus(ctx context.Context) error {
	ctx, done, epoch, err := c.life.begin(ctx, "profile")
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	token, err := c.session.Token()
	if err != nil {
		c.mu.Lock()
		c.state.Phase = PhaseUnauthenticated
		c.state.ErrorMessage = model.UserMessage(err, "Please log in first.")
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.mu.Unlock()

	profile, err := c.account.Profile(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.life.check("profile", epoch); stale != nil {
		return stale
	}
	if err != nil {
		c.logger.Warn("failed to load profile", "error", err)
		c.state.Phase = failurePhase(err)
		c.state.ErrorMessage = model.UserMessage(err, "Could not load your profile.")
		return err
	}

	c.state.Profile = profile
	c.state.Phase = PhaseReady
	return nil
}

// UpdateAddress は住所を更新し、返ってきた識別情報を画面とセッションに反映します
// 更新レスポンスには出品一覧が含まれないため、表示中の出品一覧はそのまま残します
// サーバーが更新を受け付けた後は、画面が破棄されていてもセッションには反映します
func (c *MyPageController) UpdateAddress(ctx context.Context, address string) error {
	return c.updating.run(func() error {
		ctx, done, epoch, err := c.life.begin(ctx, "address")
		if err != nil {
			return err
		}
		defer done()

		token, err := c.session.Token()
		if err == nil {
			var patch model.IdentityPatch
			patch, err = c.account.UpdateAddress(ctx, token, address)
			if err == nil {
				c.syncSession(context.WithoutCancel(ctx), patch)
			}
			if stale := c.life.check("address", epoch); stale != nil {
				return stale
			}
			if err == nil {
				c.applyToView(patch)
				c.alert.Alert("Address updated", "Your address has been updated.")
				return nil
			}
		}

		c.logger.Warn("failed to update address", "error", err)
		c.alert.Alert("Address update failed", model.UserMessage(err, "Could not update your address."))
		return err
	})
}

func (c *MyPageController) applyToView(patch model.IdentityPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Profile != nil {
		next := *c.state.Profile
		next.UserInfo = patch.Apply(next.UserInfo)
		c.state.Profile = &next
	}
}

func (c *MyPageController) syncSession(ctx context.Context, patch model.IdentityPatch) {
	if _, err := c.session.UpdatePartial(ctx, patch); err != nil {
		c.logger.Warn("failed to update session identity", "error", err)
	}
}

// SignOut はセッションを削除してログイン画面に戻ります
func (c *MyPageController) SignOut(ctx context.Context) {
	c.session.SignOut(ctx)
	c.mu.Lock()
	c.state = MyPageState{Phase: PhaseUnauthenticated}
	c.mu.Unlock()
	c.nav.Reset(RouteLogin)
}

// Dispose は画面を破棄し、実行中の結果を捨てるようにします
func (c *MyPageController) Dispose() {
	c.life.dispose()
}
