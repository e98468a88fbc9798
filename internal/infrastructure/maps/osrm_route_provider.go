package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"ProvinceMap-App/internal/domain/model"
)

// OSRMRouteProvider はOSRM互換のルーティングサービスを使用した経路検索の実装
type OSRMRouteProvider struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewOSRMRouteProvider は新しいプロバイダを生成する
func NewOSRMRouteProvider(baseURL string, timeout time.Duration) *OSRMRouteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSRMRouteProvider{
		baseURL:    baseURL,
		profile:    "driving",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetDrivingRoute はfromからtoまでの車ルートを取得する。
// リクエストは経度・緯度の順、返り値の経路は緯度・経度の順
func (p *OSRMRouteProvider) GetDrivingRoute(ctx context.Context, from, to model.LatLng) (*model.RouteResult, error) {
	// 1. APIリクエストURLを構築
	reqURL, err := p.buildURL(from, to)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	// 3. JSONレスポンスをパース
	var apiResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Code != "Ok" {
		return nil, fmt.Errorf("ルーティングサービスがエラーを返しました: %s %s", apiResp.Code, apiResp.Message)
	}
	if len(apiResp.Routes) == 0 {
		return nil, errors.New("APIから有効なルートが返されませんでした")
	}

	// 4. ドメインモデルに変換して返す
	first := apiResp.Routes[0]
	if first.Geometry == nil {
		return nil, errors.New("ルートのジオメトリがありません")
	}
	line, ok := first.Geometry.Coordinates.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("想定外のジオメトリ種別です: %s", first.Geometry.Type)
	}

	path := make([]model.LatLng, 0, len(line))
	for _, pt := range line {
		path = append(path, model.LatLngFromPoint(pt))
	}

	return &model.RouteResult{
		Path:            path,
		DistanceMeters:  first.Distance,
		DurationSeconds: first.Duration,
	}, nil
}

func (p *OSRMRouteProvider) buildURL(from, to model.LatLng) (string, error) {
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return "", err
	}
	// OSRMの座標は経度,緯度の順
	coords := formatLngLat(from) + ";" + formatLngLat(to)
	base = base.JoinPath("route", "v1", p.profile, coords)

	params := url.Values{}
	params.Set("overview", "full")
	params.Set("geometries", "geojson")
	base.RawQuery = params.Encode()
	return base.String(), nil
}

func formatLngLat(p model.LatLng) string {
	pt := p.ToPoint()
	return strconv.FormatFloat(pt.Lon(), 'f', -1, 64) + "," + strconv.FormatFloat(pt.Lat(), 'f', -1, 64)
}

// --- OSRMのレスポンスをパースするための構造体 ---

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry *geojson.Geometry `json:"geometry"`
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
}
