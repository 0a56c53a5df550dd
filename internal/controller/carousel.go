package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"jo3qma.com/marketplace/internal/domain/model"
)

// ErrNotLaidOut は一覧ビューがまだ対象位置を計測していないことを表します
var ErrNotLaidOut = errors.New("index not laid out yet")

const (
	scrollRetryDelay    = 500 * time.Millisecond
	scrollRetryAttempts = 5
)

// ListView は画像を横に並べる一覧ビューのポートです
type ListView interface {
	// ScrollToIndex は index の位置までスクロールします
	// まだ計測されていない位置の場合は ErrNotLaidOut を返します
	ScrollToIndex(index int) error
}

// Carousel は商品詳細の画像カルーセルの表示位置を管理します
type Carousel struct {
	view       ListView
	retryDelay time.Duration
	attempts   int

	mu     sync.Mutex
	count  int
	active int
}

// NewCarousel は新しいCarouselを作成します
// view が nil の場合はスクロールせずに表示位置だけを更新します
func NewCarousel(count int, view ListView) *Carousel {
	return &Carousel{
		view:       view,
		retryDelay: scrollRetryDelay,
		attempts:   scrollRetryAttempts,
		count:      max(count, 0),
	}
}

// ActiveIndex は現在表示している画像の位置です
func (c *Carousel) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Len は画像の枚数です
func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset は画像の枚数を変更し、表示位置を先頭に戻します
func (c *Carousel) Reset(count int) {
	c.mu.Lock()
	c.count = max(count, 0)
	c.active = 0
	c.mu.Unlock()
}

// ScrollTo は index の画像までスクロールします
// ビューがまだ計測していない場合は一定時間おいて再試行します
func (c *Carousel) ScrollTo(ctx context.Context, index int) error {
	c.mu.Lock()
	count := c.count
	c.mu.Unlock()
	if index < 0 || index >= count {
		return model.Invalid(fmt.Sprintf("image index %d out of range", index))
	}

	if c.view != nil {
		if err := c.scroll(ctx, index); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.active = index
	c.mu.Unlock()
	return nil
}

func (c *Carousel) scroll(ctx context.Context, index int) error {
	var err error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		err = c.view.ScrollToIndex(index)
		if !errors.Is(err, ErrNotLaidOut) {
			return err
		}
	}
	return fmt.Errorf("failed to scroll to image %d: %w", index, err)
}

// Next は次の画像にスクロールします。末尾では何もしません
func (c *Carousel) Next(ctx context.Context) error {
	i := c.ActiveIndex() + 1
	if i >= c.Len() {
		return nil
	}
	return c.ScrollTo(ctx, i)
}

// Prev は前の画像にスクロールします。先頭では何もしません
func (c *Carousel) Prev(ctx context.Context) error {
	i := c.ActiveIndex() - 1
	if i < 0 {
		return nil
	}
	return c.ScrollTo(ctx, i)
}

// OnScrollEnd はユーザーのスワイプが止まった位置から表示位置を更新します
func (c *Carousel) OnScrollEnd(offsetX, width float64) {
	if width <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return
	}
	i := int(math.Round(offsetX / width))
	c.active = min(max(i, 0), c.count-1)
}
