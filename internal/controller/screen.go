// Package controller は各画面の状態遷移を管理します。
// 画面の描画は扱わず、状態のスナップショットと副作用（画面遷移・アラート）のポートだけを公開します。
package controller

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
	"jo3qma.com/marketplace/internal/domain/model"
)

// Phase は画面の読み込み状態です
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "idle"
	}
}

var (
	// ErrBusy は同じ種類の操作が実行中であることを表します
	ErrBusy = errors.New("another request is already in progress")
	// ErrDisposed は破棄済みの画面に対する操作、または破棄後に届いた結果を表します
	ErrDisposed = errors.New("screen disposed")
	// ErrStale は後から開始された同じ種類の操作に結果が置き換えられたことを表します
	ErrStale = errors.New("result superseded by a newer request")
)

// Route は画面遷移先です
type Route string

const (
	RouteHome   Route = "home"
	RouteLogin  Route = "login"
	RouteMyPage Route = "mypage"
)

// Navigator は画面遷移を行うポートです
type Navigator interface {
	// Back は1つ前の画面に戻ります
	Back()
	// Replace は現在の画面を route に置き換えます
	Replace(route Route)
	// Reset は画面スタックを route だけにします
	Reset(route Route)
}

// Alerter はユーザーが閉じるまで表示されるアラートのポートです
type Alerter interface {
	Alert(title, message string)
}

// lifecycle は画面の寿命と、操作の種類ごとの世代番号を管理します
// 画面が破棄された後や、より新しい操作が始まった後に届いた結果は適用しません
type lifecycle struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu     sync.Mutex
	epochs map[string]uint64
}

func newLifecycle() *lifecycle {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &lifecycle{ctx: ctx, cancel: cancel, epochs: make(map[string]uint64)}
}

// begin は parent を画面の寿命に結びつけた ctx と、kind の新しい世代番号を返します
// 返された done は操作の終了時に必ず呼んでください
func (l *lifecycle) begin(parent context.Context, kind string) (context.Context, func(), uint64, error) {
	if l.ctx.Err() != nil {
		return nil, nil, 0, ErrDisposed
	}

	ctx, cancel := context.WithCancelCause(parent)
	stop := context.AfterFunc(l.ctx, func() { cancel(ErrDisposed) })

	l.mu.Lock()
	l.epochs[kind]++
	epoch := l.epochs[kind]
	l.mu.Unlock()

	return ctx, func() {
		stop()
		cancel(nil)
	}, epoch, nil
}

// check は kind の世代 epoch の結果をまだ適用してよいかを返します
func (l *lifecycle) check(kind string, epoch uint64) error {
	if l.ctx.Err() != nil {
		return ErrDisposed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epochs[kind] != epoch {
		return ErrStale
	}
	return nil
}

func (l *lifecycle) dispose() {
	l.cancel(ErrDisposed)
}

func (l *lifecycle) disposed() bool {
	return l.ctx.Err() != nil
}

// guard は同じ種類の変更操作が同時に1つしか実行されないようにします
type guard struct {
	sem *semaphore.Weighted
}

func newGuard() *guard {
	return &guard{sem: semaphore.NewWeighted(1)}
}

// run は実行中の操作がなければ fn を実行し、あれば ErrBusy を返します
func (g *guard) run(fn func() error) error {
	if !g.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer g.sem.Release(1)
	return fn()
}

// busy は操作が実行中かどうかを返します
func (g *guard) busy() bool {
	if !g.sem.TryAcquire(1) {
		return true
	}
	g.sem.Release(1)
	return false
}

// ignorable は結果を捨ててよいエラーかどうかを返します
func ignorable(err error) bool {
	return errors.Is(err, ErrDisposed) || errors.Is(err, ErrStale)
}

// failurePhase はエラーの種類に応じた画面状態を返します
func failurePhase(err error) Phase {
	if errors.Is(err, model.ErrUnauthenticated) {
		return PhaseUnauthenticated
	}
	return PhaseError
}
