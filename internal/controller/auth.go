package controller

import (
	"context"
	"log/slog"
	"sync"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/session"
)

// FormState はログイン・会員登録フォームの状態です
type FormState struct {
	Submitting   bool
	ErrorMessage string
}

// authForm はログインと会員登録で共通の送信処理です
type authForm struct {
	session    session.Writer
	nav        Navigator
	alert      Alerter
	logger     *slog.Logger
	life       *lifecycle
	submitting *guard
	failTitle  string

	mu           sync.Mutex
	errorMessage string
}

func newAuthForm(sess session.Writer, nav Navigator, alert Alerter, logger *slog.Logger, screen, failTitle string) *authForm {
	if logger == nil {
		logger = slog.Default()
	}
	return &authForm{
		session:    sess,
		nav:        nav,
		alert:      alert,
		logger:     logger.With("screen", screen),
		life:       newLifecycle(),
		submitting: newGuard(),
		failTitle:  failTitle,
	}
}

func (f *authForm) state() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{Submitting: f.submitting.busy(), ErrorMessage: f.errorMessage}
}

// submit は authenticate の結果でセッションを保存し、ホームを起点に画面スタックを作り直します
// 失敗した場合は保存済みのセッションに触れません
func (f *authForm) submit(ctx context.Context, authenticate func(ctx context.Context) (*model.Session, error)) error {
	return f.submitting.run(func() error {
		ctx, done, epoch, err := f.life.begin(ctx, "submit")
		if err != nil {
			return err
		}
		defer done()

		f.mu.Lock()
		f.errorMessage = ""
		f.mu.Unlock()

		sess, err := authenticate(ctx)
		if stale := f.life.check("submit", epoch); stale != nil {
			return stale
		}
		if err == nil {
			err = f.session.SignIn(ctx, sess.UserInfo, sess.Token)
		}
		if err != nil {
			f.logger.Warn("authentication failed", "error", err)
			msg := model.UserMessage(err, "Please try again.")
			f.mu.Lock()
			f.errorMessage = msg
			f.mu.Unlock()
			f.alert.Alert(f.failTitle, msg)
			return err
		}

		f.logger.Info("signed in", "user_id", sess.UserInfo.ID)
		f.nav.Reset(RouteHome)
		return nil
	})
}

// LoginController はログインフォームを管理します
type LoginController struct {
	account Account
	form    *authForm
}

// NewLoginController は新しいLoginControllerを作成します
func NewLoginController(account Account, sess session.Writer, nav Navigator, alert Alerter, logger *slog.Logger) *LoginController {
	return &LoginController{
		account: account,
		form:    newAuthForm(sess, nav, alert, logger, "login", "Login failed"),
	}
}

// State は現在の状態を返します
func (c *LoginController) State() FormState { return c.form.state() }

// Submit はログインし、成功するとホーム画面に遷移します
func (c *LoginController) Submit(ctx context.Context, cred model.Credentials) error {
	return c.form.submit(ctx, func(ctx context.Context) (*model.Session, error) {
		return c.account.Login(ctx, cred)
	})
}

// Dispose は画面を破棄します
func (c *LoginController) Dispose() { c.form.life.dispose() }

// RegisterController は会員登録フォームを管理します
type RegisterController struct {
	account Account
	form    *authForm
}

// NewRegisterController は新しいRegisterControllerを作成します
func NewRegisterController(account Account, sess session.Writer, nav Navigator, alert Alerter, logger *slog.Logger) *RegisterController {
	return &RegisterController{
		account: account,
		form:    newAuthForm(sess, nav, alert, logger, "register", "Sign-up failed"),
	}
}

// State は現在の状態を返します
func (c *RegisterController) State() FormState { return c.form.state() }

// Submit は会員登録し、成功するとそのままログインしてホーム画面に遷移します
func (c *RegisterController) Submit(ctx context.Context, reg model.Registration) error {
	return c.form.submit(ctx, func(ctx context.Context) (*model.Session, error) {
		return c.account.Register(ctx, reg)
	})
}

// Dispose は画面を破棄します
func (c *RegisterController) Dispose() { c.form.life.dispose() }
