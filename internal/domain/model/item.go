package model

import (
	"strings"
	"time"
)

// MaxItemImages は1つの商品に添付できる画像の最大枚数です
const MaxItemImages = 5

// Item は出品商品のドメインモデルです
// バックエンドのJSON構造を知らない、純粋なデータ構造を定義します
type Item struct {
	ItemID       int64
	UserID       int64
	CategoryID   int64
	CategoryName string
	Nickname     string // 出品者のニックネーム
	Title        string
	Content      string // サーバーから受け取ったままの本文（HTMLを含むことがある）
	PlainContent string // Content からタグを除いた表示用テキスト
	Price        int64  // 価格（単位：ウォン）
	Status       Status // 販売状態
	Addr         string // 商品の取引場所
	UserAddr     string // 出品者の登録住所
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Images       []Image
	DistanceM    *float64 // 現在地からの距離（メートル）。サーバーが計算した場合のみ
}

// Image はサーバーにホストされている商品画像です
type Image struct {
	ImgID int64
	URL   string
}

// Status は商品の販売状態を表します
type Status int32

const (
	StatusUnspecified Status = 0
	StatusOnSale      Status = 1 // 販売中
	StatusReserved    Status = 2 // 予約済み
	StatusSold        Status = 3 // 売却済み
)

// String は販売状態の表示用文字列を返します
func (s Status) String() string {
	switch s {
	case StatusOnSale:
		return "on sale"
	case StatusReserved:
		return "reserved"
	case StatusSold:
		return "sold"
	default:
		return "unspecified"
	}
}

// ItemQuery は商品一覧の検索条件です
// CategoryID が AllCategoryID の場合、SearchKeyword が空の場合はそれぞれ条件に含めません
type ItemQuery struct {
	CategoryID    int64
	SearchKeyword string
}

// Normalize は検索キーワードの前後の空白を取り除いた条件を返します
func (q ItemQuery) Normalize() ItemQuery {
	q.SearchKeyword = strings.TrimSpace(q.SearchKeyword)
	if q.CategoryID < 0 {
		q.CategoryID = AllCategoryID
	}
	return q
}

// ImageSource はアップロード対象の画像の参照です
// 端末上のファイルパス、またはすでにホストされている画像のURLのどちらかです
type ImageSource struct {
	Ref   string
	ImgID int64 // ホスト済み画像の場合のみ設定されます
}

// IsRemote はすでにサーバー側にホストされている画像かどうかをURLの形から判定します
func (s ImageSource) IsRemote() bool {
	ref := strings.ToLower(strings.TrimSpace(s.Ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ItemDraft は商品の作成・更新フォームの入力内容です
// ItemID が 0 の場合は新規作成、それ以外は更新として扱われます（upsert）
type ItemDraft struct {
	ItemID     int64
	CategoryID int64
	Title      string
	Content    string
	Price      string // フォーム入力のまま保持し、送信直前に検証します
	Images     []ImageSource
}
