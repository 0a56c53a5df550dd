package usecase

import (
	"context"
	"sort"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// PlaceUsecase は周辺の病院・薬局の検索を担当します
type PlaceUsecase struct {
	places repository.PlaceRepository
}

// NewPlaceUsecase は新しいPlaceUsecaseインスタンスを作成します
func NewPlaceUsecase(places repository.PlaceRepository) *PlaceUsecase {
	return &PlaceUsecase{places: places}
}

// SearchHospitals はキーワードで施設を検索します
func (u *PlaceUsecase) SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.Invalid("Please enter a search keyword.")
	}
	places, err := u.places.SearchHospitals(ctx, query, at)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []*model.Place{}
	}
	return places, nil
}

// SortPlaces は並び順に従って並べ替えた新しいスライスを返します
// 距離順では距離のない施設を末尾に、スコア順ではスコアのない施設を0点として扱います
func SortPlaces(places []*model.Place, by model.PlaceSort) []*model.Place {
	out := make([]*model.Place, len(places))
	copy(out, places)

	switch by {
	case model.SortByScore:
		sort.SliceStable(out, func(i, j int) bool {
			return valueOr(out[i].PredictedRecommendationScore, 0) > valueOr(out[j].PredictedRecommendationScore, 0)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].Distance, out[j].Distance
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return *di < *dj
			}
		})
	}
	return out
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
