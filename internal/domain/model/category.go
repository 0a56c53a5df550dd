package model

// AllCategoryID は「全体」カテゴリを表す番兵IDです
// クライアント側でのみ付与され、サーバーへのフィルタ条件には決して送信しません
const AllCategoryID int64 = 0

// AllCategoryName は「全体」カテゴリの表示名です
const AllCategoryName = "All"

// Category は商品カテゴリのドメインモデルです
// 画面表示時に取得する参照データであり、クライアントから変更することはありません
type Category struct {
	ID      int64
	Name    string
	OrderNo int64
}

// AllCategory は一覧の先頭に差し込む合成カテゴリを返します
func AllCategory() *Category {
	return &Category{ID: AllCategoryID, Name: AllCategoryName, OrderNo: 0}
}

// IsAll は番兵カテゴリかどうかを返します
func (c *Category) IsAll() bool {
	return c == nil || c.ID == AllCategoryID
}
