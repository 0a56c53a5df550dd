package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
	"jo3qma.com/marketplace/internal/infrastructure/httpx"
)

// DefaultBaseURL は地図サービスのREST APIのベースURLです
const DefaultBaseURL = "https://dapi.kakao.com"

// geocoder は外部の地図サービスで住所と座標を相互に変換する実装です
// レスポンスの形は外部の契約であるため、欠けているフィールドを前提にせず防御的に読み取ります
type geocoder struct {
	fetcher *httpx.Fetcher
	baseURL string
	apiKey  string
}

// NewGeocoder は新しいGeocodeRepositoryの実装を作成します
func NewGeocoder(fetcher *httpx.Fetcher, baseURL, apiKey string) repository.GeocodeRepository {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetcher == nil {
		fetcher = httpx.NewFetcher(nil, 0, nil)
	}
	return &geocoder{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

type addressDTO struct {
	AddressName string `json:"address_name"`
	X           string `json:"x"`
	Y           string `json:"y"`
}

type documentDTO struct {
	AddressName string      `json:"address_name"`
	X           string      `json:"x"`
	Y           string      `json:"y"`
	Address     *addressDTO `json:"address"`
	RoadAddress *addressDTO `json:"road_address"`
}

type searchResponse struct {
	Documents []documentDTO `json:"documents"`
}

// Geocode は自由入力の住所を座標に変換します
func (g *geocoder) Geocode(ctx context.Context, address string) (*model.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, model.Invalid("address is required")
	}

	q := url.Values{}
	q.Set("query", address)
	res, err := g.search(ctx, "/v2/local/search/address.json", q)
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 {
		return nil, model.ErrNoGeocodeResult
	}

	doc := res.Documents[0]
	point := &model.GeoPoint{AddressName: doc.AddressName}
	if doc.RoadAddress != nil {
		point.RoadAddressName = doc.RoadAddress.AddressName
	}

	// 地番住所 → 道路名住所 → ドキュメント自体の座標の順に採用します
	candidates := make([][2]string, 0, 3)
	if doc.Address != nil {
		candidates = append(candidates, [2]string{doc.Address.X, doc.Address.Y})
		if point.AddressName == "" {
			point.AddressName = doc.Address.AddressName
		}
	}
	if doc.RoadAddress != nil {
		candidates = append(candidates, [2]string{doc.RoadAddress.X, doc.RoadAddress.Y})
	}
	candidates = append(candidates, [2]string{doc.X, doc.Y})

	for _, c := range candidates {
		if coords, ok := parseCoords(c[0], c[1]); ok {
			point.Coordinates = coords
			return point, nil
		}
	}
	return nil, model.ErrNoGeocodeResult
}

// ReverseGeocode は座標を住所に変換します
// 道路名住所があればそれを優先します
func (g *geocoder) ReverseGeocode(ctx context.Context, at model.Coordinates) (*model.GeoPoint, error) {
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(at.X, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(at.Y, 'f', -1, 64))
	res, err := g.search(ctx, "/v2/local/geo/coord2address.json", q)
	if err != nil {
		return nil, err
	}

	for _, doc := range res.Documents {
		point := &model.GeoPoint{Coordinates: at}
		if doc.Address != nil {
			point.AddressName = doc.Address.AddressName
		}
		if doc.RoadAddress != nil {
			point.RoadAddressName = doc.RoadAddress.AddressName
		}
		if point.AddressName != "" || point.RoadAddressName != "" {
			return point, nil
		}
	}
	return nil, model.ErrNoGeocodeResult
}

func (g *geocoder) search(ctx context.Context, path string, q url.Values) (*searchResponse, error) {
	if g.apiKey == "" {
		return nil, model.Invalid("geocoding is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+g.apiKey)

	res, err := g.fetcher.Do(ctx, req, 0)
	if err != nil {
		return nil, model.Transport(err)
	}
	if !res.OK() {
		return nil, providerError(res)
	}

	var out searchResponse
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", model.ErrNoGeocodeResult)
	}
	return &out, nil
}

// errorDTO は地図サービスのエラーレスポンスです
type errorDTO struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
	Msg       string `json:"msg"`
}

// providerError は地図サービスが要求を受け付けなかった理由を利用者に伝わる形にします
// 5xx は一時的な障害として通信エラー扱いにします
func providerError(res *httpx.Response) error {
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return model.Rejected("The geocoding service rejected the API key. Check KAKAO_RESTAPI_KEY.")
	case res.StatusCode == http.StatusTooManyRequests:
		return model.Rejected("The geocoding service quota was exceeded. Try again later.")
	case res.StatusCode >= 500:
		return model.Transport(fmt.Errorf("geocoding failed: status %d", res.StatusCode))
	}

	var dto errorDTO
	_ = json.Unmarshal(res.Body, &dto)
	msg := strings.TrimSpace(dto.Message)
	if msg == "" {
		msg = strings.TrimSpace(dto.Msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("The geocoding service rejected the request (status %d).", res.StatusCode)
	}
	return model.Rejected(msg)
}

func parseCoords(xs, ys string) (model.Coordinates, bool) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return model.Coordinates{}, false
	}
	return model.Coordinates{X: x, Y: y}, true
}
