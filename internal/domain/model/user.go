package model

// UserInfo はログイン中のユーザーの識別情報です
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Addr     string `json:"addr,omitempty"`
}

// Session は認証済みユーザーの識別情報とトークンの組です
// Token が空でなければ UserInfo.ID も設定されており、その逆も成り立ちます
type Session struct {
	UserInfo UserInfo
	Token    string
}

// Valid は識別情報とトークンがそろっているかを返します
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.UserInfo.ID != 0
}

// Profile はマイページに表示する自分の情報と出品一覧です
type Profile struct {
	UserInfo
	Items []*Item
}

// IdentityPatch はサーバーの更新レスポンスに含まれていた識別情報のフィールドです
// nil のフィールドは「レスポンスに含まれていなかった」ことを意味し、既存値を保持します
type IdentityPatch struct {
	Username *string
	Nickname *string
	Addr     *string
}

// Apply は patch に含まれるフィールドだけを info に上書きした結果を返します
func (p IdentityPatch) Apply(info UserInfo) UserInfo {
	if p.Username != nil {
		info.Username = *p.Username
	}
	if p.Nickname != nil {
		info.Nickname = *p.Nickname
	}
	if p.Addr != nil {
		info.Addr = *p.Addr
	}
	return info
}

// Credentials はログインフォームの入力内容です
type Credentials struct {
	Username string
	Password string
}

// Registration は会員登録フォームの入力内容です
type Registration struct {
	Username        string
	Password        string
	PasswordConfirm string
	Nickname        string
	Location        *Coordinates // 端末の現在地。取得できなかった場合は nil
	Addr            string       // Location から逆ジオコーディングした住所
}

// GeoUpdate は住所更新時にサーバーへ送信する内容です
type GeoUpdate struct {
	Addr string
	Coordinates
}
