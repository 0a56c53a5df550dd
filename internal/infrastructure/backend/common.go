package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/infrastructure/httpx"
)

const genericFailure = "The request could not be completed."

// Client はマーケットバックエンドとの通信を共通化します
// 各リポジトリ実装はこの Client を共有し、エンドポイントごとの変換だけを受け持ちます
type Client struct {
	fetcher       *httpx.Fetcher
	baseURL       string
	bearerPrefix  bool
	uploadTimeout time.Duration
	logger        *slog.Logger
	loadImage     imageLoader
}

// Option は Client の設定を変更します
type Option func(*Client)

// WithBearerPrefix は Authorization ヘッダーに "Bearer " を付けて送るようにします
// すでに付いているトークンには二重に付けません
func WithBearerPrefix() Option {
	return func(c *Client) { c.bearerPrefix = true }
}

// WithUploadTimeout は画像アップロードを伴うリクエストのタイムアウトを変更します
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.uploadTimeout = d
		}
	}
}

// WithLogger はログ出力先を変更します
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient は新しいClientを作成します
func NewClient(baseURL string, fetcher *httpx.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:       fetcher,
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		uploadTimeout: httpx.UploadTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = httpx.NewFetcher(nil, 0, c.logger)
	}
	c.loadImage = c.defaultImageLoader
	return c
}

// envelope はすべてのAPIレスポンスに共通する外枠です
// Success が false の場合、Data を信頼してはいけません
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get は GET リクエストを送信し、data を out にデコードします
func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		c.authorize(req, token)
	}
	return c.call(req, 0, out)
}

// call はリクエストを送信し、共通の外枠を検証してから data を out にデコードします
func (c *Client) call(req *http.Request, timeout time.Duration, out any) error {
	res, err := c.fetcher.Do(req.Context(), req, timeout)
	if err != nil {
		return model.Transport(err)
	}
	return decodeEnvelope(res, out)
}

func decodeEnvelope(res *httpx.Response, out any) error {
	var env envelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		if !res.OK() {
			return model.Rejected(statusText(res.StatusCode))
		}
		return model.Transport(fmt.Errorf("failed to decode response: %w", err))
	}

	if !res.OK() || !env.Success {
		msg := strings.TrimSpace(env.Msg)
		if msg == "" && !res.OK() {
			msg = statusText(res.StatusCode)
		}
		if msg == "" {
			msg = genericFailure
		}
		return model.Rejected(msg)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return model.Transport(fmt.Errorf("failed to decode data: %w", err))
	}
	return nil
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}

// authorize は Authorization ヘッダーを設定します
func (c *Client) authorize(req *http.Request, token string) {
	if c.bearerPrefix && !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	req.Header.Set("Authorization", token)
}

// requireToken は保護されたエンドポイントをトークンなしで呼ばないようにします
func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return model.Unauthenticated("")
	}
	return nil
}

// number は数値・数値文字列・空文字列のいずれでも受け付けるJSONの数値です
// 外部APIによって "123" と 123 が混在するため、受け口で吸収します
type number struct {
	val float64
	ok  bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if s == "" || s == "null" {
		*n = number{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = number{val: v, ok: true}
	return nil
}

func (n number) ptr() *float64 {
	if !n.ok {
		return nil
	}
	v := n.val
	return &v
}

func (n number) int64() int64 {
	return int64(n.val)
}

// parseTime は RFC3339、またはDBの日時形式を解釈します
// 解釈できない場合はゼロ値のままにします
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// drain はレスポンス以外の読み取りでエラーを無視せずに閉じるためのヘルパーです
func drain(rc io.ReadCloser, logger *slog.Logger) {
	if err := rc.Close(); err != nil {
		logger.Debug("failed to close reader", "error", err)
	}
}
