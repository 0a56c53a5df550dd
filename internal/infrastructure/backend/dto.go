package backend

import (
	"encoding/json"
	"strconv"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
)

type categoryDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OrderNo int64  `json:"order_no"`
}

type imageDTO struct {
	ImgID int64  `json:"img_id"`
	URL   string `json:"url"`
}

type itemDTO struct {
	ItemID       int64      `json:"item_id"`
	UserID       int64      `json:"user_id"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Nickname     string     `json:"nickname"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Price        number     `json:"price"`
	Status       statusDTO  `json:"status"`
	Addr         string     `json:"addr"`
	UserAddr     string     `json:"user_addr"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at"`
	Images       []imageDTO `json:"images"`
	DistanceM    number     `json:"distance_m"`
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Addr     string `json:"addr"`
}

// profileDTO は get_user_by_token のレスポンスです（ユーザー情報と出品一覧）
type profileDTO struct {
	userDTO
	Items []itemDTO `json:"items"`
}

// authDTO は login / register のレスポンスです
type authDTO struct {
	UserInfo *userDTO `json:"userInfo"`
	Token    string   `json:"token"`
}

// identityPatchDTO は更新レスポンスの識別情報です
// 含まれていなかったフィールドを区別するためにポインタで受けます
type identityPatchDTO struct {
	Username *string `json:"username"`
	Nickname *string `json:"nickname"`
	Addr     *string `json:"addr"`
}

type updateGeoDTO struct {
	identityPatchDTO
	UserInfo *identityPatchDTO `json:"userInfo"`
}

type placeDTO struct {
	ID                           string `json:"id"`
	PlaceName                    string `json:"place_name"`
	AddressName                  string `json:"address_name"`
	RoadAddressName              string `json:"road_address_name"`
	CategoryName                 string `json:"category_name"`
	Phone                        string `json:"phone"`
	PlaceURL                     string `json:"place_url"`
	Distance                     number `json:"distance"`
	X                            number `json:"x"`
	Y                            number `json:"y"`
	Rating                       number `json:"rating"`
	CongestionLevel              number `json:"congestion_level"`
	PredictedRecommendationScore number `json:"predicted_recommendation_score"`
}

// statusDTO は販売状態を文字列・数値のどちらでも受け付けます
type statusDTO model.Status

func (s *statusDTO) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*s = statusDTO(statusFromCode(int64(v)))
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*s = statusDTO(statusFromCode(n))
			return nil
		}
		*s = statusDTO(statusFromName(v))
	default:
		*s = statusDTO(model.StatusUnspecified)
	}
	return nil
}

func statusFromCode(n int64) model.Status {
	switch n {
	case 1:
		return model.StatusOnSale
	case 2:
		return model.StatusReserved
	case 3:
		return model.StatusSold
	default:
		return model.StatusUnspecified
	}
}

func statusFromName(name string) model.Status {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "selling", "on_sale", "sale", "판매중":
		return model.StatusOnSale
	case "reserved", "예약중":
		return model.StatusReserved
	case "sold", "sold_out", "판매완료":
		return model.StatusSold
	default:
		return model.StatusUnspecified
	}
}

func (d categoryDTO) toModel() *model.Category {
	return &model.Category{ID: d.ID, Name: d.Name, OrderNo: d.OrderNo}
}

func (d itemDTO) toModel() *model.Item {
	item := &model.Item{
		ItemID:       d.ItemID,
		UserID:       d.UserID,
		CategoryID:   d.CategoryID,
		CategoryName: d.CategoryName,
		Nickname:     d.Nickname,
		Title:        d.Title,
		Content:      d.Content,
		PlainContent: PlainText(d.Content),
		Price:        d.Price.int64(),
		Status:       model.Status(d.Status),
		Addr:         d.Addr,
		UserAddr:     d.UserAddr,
		CreatedAt:    parseTime(d.CreatedAt),
		UpdatedAt:    parseTime(d.UpdatedAt),
		Images:       make([]model.Image, 0, len(d.Images)),
		DistanceM:    d.DistanceM.ptr(),
	}

	// 同じURLの画像が重複して返ってくることがあるため、順序を保ったまま除外します
	seen := make(map[string]bool, len(d.Images))
	for _, img := range d.Images {
		if img.URL == "" || seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		item.Images = append(item.Images, model.Image{ImgID: img.ImgID, URL: img.URL})
	}
	return item
}

func itemsToModel(dtos []itemDTO) []*model.Item {
	items := make([]*model.Item, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, d.toModel())
	}
	return items
}

func (d userDTO) toModel() model.UserInfo {
	return model.UserInfo{ID: d.ID, Username: d.Username, Nickname: d.Nickname, Addr: d.Addr}
}

func (d identityPatchDTO) toModel() model.IdentityPatch {
	return model.IdentityPatch{Username: d.Username, Nickname: d.Nickname, Addr: d.Addr}
}

func (d placeDTO) toModel() *model.Place {
	return &model.Place{
		ID:                           d.ID,
		PlaceName:                    d.PlaceName,
		AddressName:                  d.AddressName,
		RoadAddressName:              d.RoadAddressName,
		CategoryName:                 d.CategoryName,
		Phone:                        d.Phone,
		PlaceURL:                     d.PlaceURL,
		Distance:                     d.Distance.ptr(),
		X:                            d.X.val,
		Y:                            d.Y.val,
		Rating:                       d.Rating.ptr(),
		CongestionLevel:              d.CongestionLevel.ptr(),
		PredictedRecommendationScore: d.PredictedRecommendationScore.ptr(),
	}
}
