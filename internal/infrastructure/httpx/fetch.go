package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"jo3qma.com/marketplace/internal/domain/model"
)

const (
	// DefaultTimeout は画面操作から呼ばれる通常のリクエストのタイムアウトです
	DefaultTimeout = 10 * time.Second
	// UploadTimeout は画像を含むアップロードのタイムアウトです
	UploadTimeout = 5 * time.Minute
	// MaxBodyBytes はレスポンス本文として読み込む上限です
	MaxBodyBytes = 16 << 20
)

// ErrBodyTooLarge は本文が MaxBodyBytes を超えたことを表します
// 途中まで読んだ本文は返しません
var ErrBodyTooLarge = errors.New("response body too large")

// Response は本文まで読み切ったレスポンスです
// 本文はタイムアウトの範囲内で読み込まれるため、期限後に副作用が起きることはありません
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK はステータスコードが 2xx かどうかを返します
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher はタイムアウト付きでHTTPリクエストを送信します
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
	logger  *slog.Logger
}

// NewFetcher は新しいFetcherを作成します
// timeout が 0 以下の場合は DefaultTimeout を使います
func NewFetcher(client *http.Client, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, timeout: timeout, maxBody: MaxBodyBytes, logger: logger}
}

// Do は req を送信し、timeout 以内に応答がなければリクエストを中断して model.ErrTimeout を返します
// timeout が 0 以下の場合は Fetcher の既定値を使います
// それ以外の通信エラーは原因のエラーをそのまま返します
func (f *Fetcher) Do(ctx context.Context, req *http.Request, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = f.timeout
	}

	ctx, cancel := context.WithTimeoutCause(ctx, timeout, model.ErrTimeout)
	defer cancel()

	requestID := uuid.NewString()
	req = req.WithContext(ctx)
	req.Header.Set("X-Request-Id", requestID)

	log := f.logger.With("method", req.Method, "url", req.URL.Redacted(), "request_id", requestID)
	started := time.Now()
	log.Debug("request started")

	res, err := f.client.Do(req)
	if err != nil {
		err = classify(ctx, err, timeout)
		log.Warn("request failed", "error", err, "elapsed", time.Since(started))
		return nil, err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Debug("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBody+1))
	if err != nil {
		err = classify(ctx, err, timeout)
		log.Warn("failed to read response body", "error", err, "elapsed", time.Since(started))
		return nil, err
	}
	if int64(len(body)) > f.maxBody {
		log.Warn("response body exceeds limit", "limit", f.maxBody, "elapsed", time.Since(started))
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBody)
	}

	log.Debug("request finished", "status", res.StatusCode, "elapsed", time.Since(started))
	return &Response{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// classify は自分のタイマーによる中断だけを Timeout として扱います
// 呼び出し元のキャンセルやその他の通信エラーは元のエラーを返します
func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(context.Cause(ctx), model.ErrTimeout) {
		return &model.Error{Kind: model.ErrTimeout, Err: fmt.Errorf("no response within %s", timeout)}
	}
	return err
}
