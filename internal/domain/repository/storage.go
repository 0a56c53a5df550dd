package repository

import "context"

// KeyValueStorage は端末ローカルのキー・バリュー保存領域です。
// 複数キーの書き込み・削除はまとめて成功するか、まとめて失敗します。
type KeyValueStorage interface {
	// GetMany は存在するキーだけを含むマップを返します
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}
