package handler

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"jo3qma.com/marketplace/internal/controller"
	"jo3qma.com/marketplace/internal/session"
)

// Services はコマンドが利用するユースケースとセッションです
type Services struct {
	Catalog controller.Catalog
	Listing controller.Listing
	Account controller.Account
	Places  controller.Places
	Session *session.Store
}

// CLI はコマンドライン上で各画面のコントローラーを動かすハンドラーです
// プロトコル層（標準入出力）と画面の状態管理（controller）を橋渡しします
type CLI struct {
	svc    Services
	out    io.Writer
	in     *bufio.Reader
	logger *slog.Logger

	mu     sync.Mutex
	routes []controller.Route
}

// NewCLI は新しいCLIハンドラーを作成します
func NewCLI(svc Services, in io.Reader, out io.Writer, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{
		svc:    svc,
		out:    out,
		in:     bufio.NewReader(in),
		logger: logger,
		routes: []controller.Route{controller.RouteHome},
	}
}

// Back は controller.Navigator の実装です
func (h *CLI) Back() {
	h.mu.Lock()
	if len(h.routes) > 1 {
		h.routes = h.routes[:len(h.routes)-1]
	}
	h.mu.Unlock()
	fmt.Fprintln(h.out, "<- back")
}

// Replace は controller.Navigator の実装です
func (h *CLI) Replace(route controller.Route) {
	h.mu.Lock()
	h.routes[len(h.routes)-1] = route
	h.mu.Unlock()
	fmt.Fprintf(h.out, "-> %s\n", route)
}

// Reset は controller.Navigator の実装です
func (h *CLI) Reset(route controller.Route) {
	h.mu.Lock()
	h.routes = []controller.Route{route}
	h.mu.Unlock()
	fmt.Fprintf(h.out, "-> %s\n", route)
}

// Route は現在の画面です
func (h *CLI) Route() controller.Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.routes[len(h.routes)-1]
}

func (h *CLI) push(route controller.Route) {
	h.mu.Lock()
	h.routes = append(h.routes, route)
	h.mu.Unlock()
}

// Alert は controller.Alerter の実装です
func (h *CLI) Alert(title, message string) {
	fmt.Fprintf(h.out, "[%s] %s\n", title, message)
}

// Confirm は質問を表示し、y/yes が入力された場合だけ true を返します
func (h *CLI) Confirm(question string) bool {
	fmt.Fprintf(h.out, "%s [y/N]: ", question)
	line, err := h.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(h.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

var (
	_ controller.Navigator = (*CLI)(nil)
	_ controller.Alerter   = (*CLI)(nil)
)
