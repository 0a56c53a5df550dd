package repository

import (
	"context"

	"jo3qma.com/marketplace/internal/domain/model"
)

// PlaceRepository は周辺施設の検索を抽象化します。
type PlaceRepository interface {
	// SearchHospitals は query に合う病院・薬局を検索します
	// at が nil の場合は位置を指定せずに検索します
	SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error)
}

// GeocodeRepository は外部の地図サービスによる住所と座標の変換を抽象化します。
type GeocodeRepository interface {
	Geocode(ctx context.Context, address string) (*model.GeoPoint, error)
	ReverseGeocode(ctx context.Context, at model.Coordinates) (*model.GeoPoint, error)
}
