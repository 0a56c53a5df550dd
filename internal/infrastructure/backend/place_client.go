package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

type placeClient struct {
	*Client
}

// NewPlaceClient は新しいPlaceRepositoryの実装を作成します
// バックエンドが外部の地点検索APIの結果に評価やおすすめスコアを付けて返します
func NewPlaceClient(c *Client) repository.PlaceRepository {
	return &placeClient{Client: c}
}

// SearchHospitals は周辺の病院・薬局を検索します
func (c *placeClient) SearchHospitals(ctx context.Context, query string, at *model.Coordinates) ([]*model.Place, error) {
	values := url.Values{}
	values.Set("query", strings.TrimSpace(query))
	if at != nil {
		values.Set("x", formatCoord(at.X))
		values.Set("y", formatCoord(at.Y))
	} else {
		values.Set("x", "")
		values.Set("y", "")
	}

	var dtos []placeDTO
	if err := c.get(ctx, "/api/hospital", values, "", &dtos); err != nil {
		return nil, fmt.Errorf("search hospitals: %w", err)
	}

	places := make([]*model.Place, 0, len(dtos))
	for _, d := range dtos {
		places = append(places, d.toModel())
	}
	return places, nil
}
