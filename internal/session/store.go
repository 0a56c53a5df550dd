// Package session は端末に保存されるログイン状態を管理します。
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// 端末ストレージ上のキーです
const (
	KeyUserInfo = "userInfo"
	KeyToken    = "token"
)

const restoreTimeout = 3 * time.Second

// Reader はセッションを読み取るだけの画面に渡す権限です
type Reader interface {
	Current() (model.Session, bool)
	Token() (string, error)
	IsAuthenticated() bool
}

// Writer はログイン・ログアウト・プロフィール更新を行う画面だけに渡す権限です
type Writer interface {
	SignIn(ctx context.Context, info model.UserInfo, token string) error
	SignOut(ctx context.Context)
	UpdatePartial(ctx context.Context, patch model.IdentityPatch) (model.UserInfo, error)
}

// ReadWriter は Reader と Writer の両方の権限です
type ReadWriter interface {
	Reader
	Writer
}

// Store はメモリ上のセッションと端末ストレージを同期させます
// メモリ上の値が正であり、永続化の失敗はログに残すだけで呼び出し元には返しません
type Store struct {
	kv     repository.KeyValueStorage
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *model.Session
}

var _ ReadWriter = (*Store)(nil)

// Option は Store の設定を変更します
type Option func(*Store)

// WithLogger はログ出力先を設定します
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock はトークン期限の判定に使う現在時刻を差し替えます
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore は新しいStoreを作成します
// 作成直後は未ログイン状態なので、起動時に Restore を呼んでください
func NewStore(kv repository.KeyValueStorage, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore は端末ストレージからセッションを復元し、ログイン済みかどうかを返します
// 片方のキーしか残っていない場合は未ログインとして扱い、残ったキーを削除します
func (s *Store) Restore(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, restoreTimeout)
	defer cancel()

	values, err := s.kv.GetMany(ctx, KeyUserInfo, KeyToken)
	if err != nil {
		s.logger.Warn("failed to restore session", "error", err)
		s.set(nil)
		return false
	}

	raw, hasInfo := values[KeyUserInfo]
	token, hasToken := values[KeyToken]
	if !hasInfo && !hasToken {
		s.set(nil)
		return false
	}

	var info model.UserInfo
	if hasInfo {
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			s.logger.Warn("stored user info is broken", "error", err)
			hasInfo = false
		}
	}

	restored := &model.Session{UserInfo: info, Token: token}
	if !hasInfo || !hasToken || !restored.Valid() {
		s.logger.Warn("discarding partial session", "has_user_info", hasInfo, "has_token", hasToken)
		s.set(nil)
		if err := s.kv.DeleteMany(ctx, KeyUserInfo, KeyToken); err != nil {
			s.logger.Warn("failed to clear partial session", "error", err)
		}
		return false
	}

	s.set(restored)
	s.logger.Debug("session restored", "user_id", info.ID)
	return true
}

// SignIn は識別情報とトークンを同時に保存します
// どちらかが欠けている場合は何も保存せずに検証エラーを返します
func (s *Store) SignIn(ctx context.Context, info model.UserInfo, token string) error {
	next := &model.Session{UserInfo: info, Token: strings.TrimSpace(token)}
	if !next.Valid() {
		return model.Invalid("login response is missing user info or token")
	}

	s.set(next)
	s.persist(ctx, next)
	return nil
}

// SignOut はメモリと端末ストレージの両方からセッションを削除します
func (s *Store) SignOut(ctx context.Context) {
	s.set(nil)
	if err := s.kv.DeleteMany(ctx, KeyUserInfo, KeyToken); err != nil {
		s.logger.Warn("failed to clear session", "error", err)
	}
}

// UpdatePartial は patch に含まれる識別情報だけを上書きし、結果を返します
// ユーザーIDとトークンは変わりません
func (s *Store) UpdatePartial(ctx context.Context, patch model.IdentityPatch) (model.UserInfo, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return model.UserInfo{}, model.Unauthenticated("")
	}
	next := &model.Session{UserInfo: patch.Apply(s.current.UserInfo), Token: s.current.Token}
	s.current = next
	s.mu.Unlock()

	s.persist(ctx, next)
	return next.UserInfo, nil
}

// Current は現在のセッションのコピーを返します
func (s *Store) Current() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return model.Session{}, false
	}
	return *s.current, true
}

// Token は認証ヘッダーに使うトークンを返します
// 未ログイン、またはJWTの有効期限が切れている場合は model.ErrUnauthenticated を返します
func (s *Store) Token() (string, error) {
	cur, ok := s.Current()
	if !ok {
		return "", model.Unauthenticated("")
	}
	if expired(cur.Token, s.now()) {
		return "", model.Unauthenticated("Your session has expired. Please log in again.")
	}
	return cur.Token, nil
}

// IsAuthenticated は有効なトークンを持っているかを返します
func (s *Store) IsAuthenticated() bool {
	_, err := s.Token()
	return err == nil
}

func (s *Store) set(next *model.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, sess *model.Session) {
	raw, err := json.Marshal(sess.UserInfo)
	if err != nil {
		s.logger.Warn("failed to encode user info", "error", err)
		return
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		KeyUserInfo: string(raw),
		KeyToken:    sess.Token,
	}); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}

// expired はトークンがJWTで exp が過ぎている場合に true を返します
// 署名はサーバーが検証するので、ここでは検証しません
// JWTとして読めないトークンは端末側では期限切れにしません
func expired(token string, now time.Time) bool {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
