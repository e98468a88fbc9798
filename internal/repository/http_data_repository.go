package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ProvinceMap-App/internal/config"
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
)

// maxResponseBytes は1レスポンスあたりの読み込み上限（境界GeoJSONが最大）
const maxResponseBytes = 64 << 20

// HTTPDataRepository はデータAPI（HTTP）からデータセットと検索結果を取得する
type HTTPDataRepository struct {
	baseURL    string
	endpoints  config.Endpoints
	httpClient *http.Client
}

var (
	_ repository.DatasetRepository = (*HTTPDataRepository)(nil)
	_ repository.SearchRepository  = (*HTTPDataRepository)(nil)
)

// NewHTTPDataRepository は新しいリポジトリを生成する
func NewHTTPDataRepository(baseURL string, endpoints config.Endpoints, timeout time.Duration) *HTTPDataRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDataRepository{
		baseURL:    baseURL,
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RegionBoundaries は地域境界のFeatureCollectionをそのまま返す
func (r *HTTPDataRepository) RegionBoundaries(ctx context.Context) ([]byte, error) {
	body, err := r.get(ctx, r.endpoints.Regions, nil)
	if err != nil {
		return nil, fmt.Errorf("地域境界の取得に失敗: %w", err)
	}
	return body, nil
}

// ProvinceOutline は省境界のFeatureCollectionをそのまま返す
func (r *HTTPDataRepository) ProvinceOutline(ctx context.Context) ([]byte, error) {
	body, err := r.get(ctx, r.endpoints.Outline, nil)
	if err != nil {
		return nil, fmt.Errorf("省境界の取得に失敗: %w", err)
	}
	return body, nil
}

func (r *HTTPDataRepository) GetBranches(ctx context.Context) ([]*model.Branch, error) {
	var branches []*model.Branch
	if err := r.getData(ctx, r.endpoints.Branches, nil, &branches); err != nil {
		return nil, fmt.Errorf("支店データの取得に失敗: %w", err)
	}
	return branches, nil
}

func (r *HTTPDataRepository) GetSchools(ctx context.Context) ([]*model.School, error) {
	var schools []*model.School
	if err := r.getData(ctx, r.endpoints.Schools, nil, &schools); err != nil {
		return nil, fmt.Errorf("学校データの取得に失敗: %w", err)
	}
	return schools, nil
}

func (r *HTTPDataRepository) GetCulturalSites(ctx context.Context) ([]*model.CulturalSite, error) {
	var sites []*model.CulturalSite
	if err := r.getData(ctx, r.endpoints.CulturalSites, nil, &sites); err != nil {
		return nil, fmt.Errorf("文化施設データの取得に失敗: %w", err)
	}
	return sites, nil
}

// SearchEthnicity は民族名で地域を検索する
func (r *HTTPDataRepository) SearchEthnicity(ctx context.Context, query string) ([]model.EthnicitySearchHit, error) {
	var envelope struct {
		Results []model.EthnicitySearchHit `json:"results"`
	}
	if err := r.getJSON(ctx, r.endpoints.EthnicitySearch, url.Values{"q": {query}}, &envelope); err != nil {
		return nil, fmt.Errorf("民族検索に失敗: %w", err)
	}
	return envelope.Results, nil
}

// SearchRegions は地域名で検索する
func (r *HTTPDataRepository) SearchRegions(ctx context.Context, query string) ([]model.RegionSearchHit, error) {
	var envelope struct {
		Results []model.RegionSearchHit `json:"results"`
	}
	if err := r.getJSON(ctx, r.endpoints.RegionSearch, url.Values{"q": {query}}, &envelope); err != nil {
		return nil, fmt.Errorf("地域検索に失敗: %w", err)
	}
	return envelope.Results, nil
}

// GetRegionEthnicities は地域の民族別人口を返す
func (r *HTTPDataRepository) GetRegionEthnicities(ctx context.Context, regionCode string) ([]model.EthnicityCount, error) {
	var counts []model.EthnicityCount
	if err := r.getData(ctx, r.endpoints.RegionEthnicities, url.Values{"ma_xa": {regionCode}}, &counts); err != nil {
		return nil, fmt.Errorf("地域 %s の民族データ取得に失敗: %w", regionCode, err)
	}
	return counts, nil
}

// getData は {"data": [...]} 形式のレスポンスをdstにデコードする。
// 配列がそのまま返ってきた場合も受け付ける
func (r *HTTPDataRepository) getData(ctx context.Context, path string, params url.Values, dst any) error {
	body, err := r.get(ctx, path, params)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return fmt.Errorf("JSONのパースに失敗: %w", err)
		}
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return fmt.Errorf("dataフィールドのパースに失敗: %w", err)
	}
	return nil
}

func (r *HTTPDataRepository) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	body, err := r.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	return nil
}

func (r *HTTPDataRepository) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	base, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}
	base = base.JoinPath(path)
	if len(params) > 0 {
		base.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}
	return body, nil
}
