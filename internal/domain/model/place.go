package model

// Coordinates は経度(X)・緯度(Y)の組です
// 外部の地図サービスに合わせて X が経度、Y が緯度です
type Coordinates struct {
	X float64 // longitude
	Y float64 // latitude
}

// GeoPoint はジオコーディングの結果です
type GeoPoint struct {
	Coordinates
	AddressName     string
	RoadAddressName string
}

// Place は外部の地点検索APIから取得した施設情報です
// 読み取り専用で、このアプリが永続化することはありません
type Place struct {
	ID                           string
	PlaceName                    string
	AddressName                  string
	RoadAddressName              string
	CategoryName                 string
	Phone                        string
	PlaceURL                     string
	Distance                     *float64 // メートル
	X                            float64
	Y                            float64
	Rating                       *float64
	CongestionLevel              *float64
	PredictedRecommendationScore *float64
}

// PlaceSort は施設一覧の並び順です
type PlaceSort int

const (
	SortByDistance PlaceSort = iota // 近い順
	SortByScore                     // おすすめスコアの高い順
)

// ParsePlaceSort はコマンドライン等の文字列から並び順を解釈します
func ParsePlaceSort(s string) (PlaceSort, bool) {
	switch s {
	case "", "distance":
		return SortByDistance, true
	case "score":
		return SortByScore, true
	default:
		return SortByDistance, false
	}
}
