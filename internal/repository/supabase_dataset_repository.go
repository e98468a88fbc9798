package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
	"ProvinceMap-App/internal/infrastructure/database"
)

// Supabase側のテーブル・ビュー名。境界はgeometryをjsonbで持つビューから読む
const (
	supabaseRegionView    = "phuong_xa_geojson"
	supabaseOutlineView   = "tinh_thanh_geojson"
	supabaseBranchTable   = "phong_giao_dich"
	supabaseSchoolTable   = "truong_hoc"
	supabaseSiteTable     = "dia_diem_van_hoa"
	supabaseEthnicityView = "dan_toc_xa_view"
)

// SupabaseDatasetRepository はSupabase（PostgREST）経由で地図データを読むリポジトリ
type SupabaseDatasetRepository struct {
	client *database.SupabaseClient
}

var (
	_ repository.DatasetRepository = (*SupabaseDatasetRepository)(nil)
	_ repository.SearchRepository  = (*SupabaseDatasetRepository)(nil)
)

func NewSupabaseDatasetRepository(client *database.SupabaseClient) *SupabaseDatasetRepository {
	return &SupabaseDatasetRepository{
		client: client,
	}
}

func (r *SupabaseDatasetRepository) RegionBoundaries(ctx context.Context) ([]byte, error) {
	var rows []regionRow
	data, _, err := r.client.GetClient().From(supabaseRegionView).Select("*", "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("地域境界データの取得失敗: %w", err)
	}
	if err := decodeRows(supabaseRegionView, data, &rows); err != nil {
		return nil, err
	}
	return regionRowsToCollection(rows)
}

func (r *SupabaseDatasetRepository) ProvinceOutline(ctx context.Context) ([]byte, error) {
	var rows []outlineRow
	data, _, err := r.client.GetClient().From(supabaseOutlineView).Select("*", "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("省境界データの取得失敗: %w", err)
	}
	if err := decodeRows(supabaseOutlineView, data, &rows); err != nil {
		return nil, err
	}
	return outlineRowsToCollection(rows)
}

func (r *SupabaseDatasetRepository) GetBranches(ctx context.Context) ([]*model.Branch, error) {
	var branches []*model.Branch
	if err := r.selectAll(supabaseBranchTable, &branches); err != nil {
		return nil, fmt.Errorf("支店データの取得失敗: %w", err)
	}
	return branches, nil
}

func (r *SupabaseDatasetRepository) GetSchools(ctx context.Context) ([]*model.School, error) {
	var schools []*model.School
	if err := r.selectAll(supabaseSchoolTable, &schools); err != nil {
		return nil, fmt.Errorf("学校データの取得失敗: %w", err)
	}
	return schools, nil
}

func (r *SupabaseDatasetRepository) GetCulturalSites(ctx context.Context) ([]*model.CulturalSite, error) {
	var sites []*model.CulturalSite
	if err := r.selectAll(supabaseSiteTable, &sites); err != nil {
		return nil, fmt.Errorf("文化施設データの取得失敗: %w", err)
	}
	return sites, nil
}

func (r *SupabaseDatasetRepository) SearchEthnicity(ctx context.Context, query string) ([]model.EthnicitySearchHit, error) {
	hits := []model.EthnicitySearchHit{}
	data, _, err := r.client.GetClient().From(supabaseEthnicityView).
		Select("ma_xa,ten_xa,loai,dan_toc,so_luong,ty_le", "exact", false).
		Ilike("dan_toc", containsPattern(query)).
		Limit(searchResultLimit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("民族検索に失敗: %w", err)
	}
	if err := decodeRows(supabaseEthnicityView, data, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func (r *SupabaseDatasetRepository) SearchRegions(ctx context.Context, query string) ([]model.RegionSearchHit, error) {
	hits := []model.RegionSearchHit{}
	data, _, err := r.client.GetClient().From(supabaseRegionView).
		Select("ma_xa,ten_xa,loai,dan_so", "exact", false).
		Ilike("ten_xa", containsPattern(query)).
		Limit(searchResultLimit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("地域検索に失敗: %w", err)
	}
	if err := decodeRows(supabaseRegionView, data, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func (r *SupabaseDatasetRepository) GetRegionEthnicities(ctx context.Context, regionCode string) ([]model.EthnicityCount, error) {
	counts := []model.EthnicityCount{}
	data, _, err := r.client.GetClient().From(supabaseEthnicityView).
		Select("dan_toc,so_luong", "exact", false).
		Eq("ma_xa", regionCode).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("地域 %s の民族データ取得失敗: %w", regionCode, err)
	}
	if err := decodeRows(supabaseEthnicityView, data, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *SupabaseDatasetRepository) selectAll(table string, dst any) error {
	data, _, err := r.client.GetClient().From(table).Select("*", "exact", false).Execute()
	if err != nil {
		return err
	}
	return decodeRows(table, data, dst)
}

// decodeRows はPostgRESTの応答（JSON配列）をdstへデコードする
func decodeRows(source string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s のJSONアンマーシャル失敗: %w", source, err)
	}
	return nil
}
