package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
	"ProvinceMap-App/internal/infrastructure/database"
)

// searchResultLimit はDB検索で返す最大件数
const searchResultLimit = 20

// rowScanner は*sql.Rowsの1行読み取り
type rowScanner interface {
	Scan(dest ...any) error
}

// likeEscaper はILIKEのワイルドカードを文字として扱うためのエスケープ
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern は部分一致用のILIKEパターンを作る
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// PostgresDatasetRepository はPostGISのテーブルから地図データを読むリポジトリ
type PostgresDatasetRepository struct {
	client *database.PostgreSQLClient
}

var (
	_ repository.DatasetRepository = (*PostgresDatasetRepository)(nil)
	_ repository.SearchRepository  = (*PostgresDatasetRepository)(nil)
)

func NewPostgresDatasetRepository(client *database.PostgreSQLClient) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{
		client: client,
	}
}

// RegionBoundaries は地域テーブルからFeatureCollectionを組み立てる
func (r *PostgresDatasetRepository) RegionBoundaries(ctx context.Context) ([]byte, error) {
	query := `
		SELECT
			x.ma_xa, x.ten_xa, x.loai,
			COALESCE(x.dan_so, 0), COALESCE(x.dtich_km2, 0), COALESCE(x.matdo_km2, 0),
			COALESCE(x.dan_toc_chu_dao, ''), x.sap_nhap,
			COALESCE((
				SELECT json_agg(json_build_object('dan_toc', d.dan_toc, 'so_luong', d.so_luong, 'ty_le', d.ty_le) ORDER BY d.so_luong DESC)
				FROM dan_toc_xa d WHERE d.ma_xa = x.ma_xa
			), '[]'::json) AS dan_toc_phan_bo,
			ST_AsGeoJSON(x.geom) AS geometry
		FROM phuong_xa x
		ORDER BY x.ma_xa
	`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("地域境界データの取得失敗: %w", err)
	}
	defer rows.Close()

	var regions []regionRow
	for rows.Next() {
		row, err := scanRegionRow(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("地域データの読み込みエラー: %w", err)
	}

	return regionRowsToCollection(regions)
}

func (r *PostgresDatasetRepository) ProvinceOutline(ctx context.Context) ([]byte, error) {
	query := `SELECT ten, ST_AsGeoJSON(geom) FROM tinh_thanh`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("省境界データの取得失敗: %w", err)
	}
	defer rows.Close()

	var outlines []outlineRow
	for rows.Next() {
		var (
			row      outlineRow
			geometry string
		)
		if err := rows.Scan(&row.Name, &geometry); err != nil {
			return nil, fmt.Errorf("省境界データスキャンエラー: %w", err)
		}
		row.Geometry = json.RawMessage(geometry)
		outlines = append(outlines, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("省境界データの読み込みエラー: %w", err)
	}

	return outlineRowsToCollection(outlines)
}

func (r *PostgresDatasetRepository) GetBranches(ctx context.Context) ([]*model.Branch, error) {
	query := `SELECT id, ten, vi_do, kinh_do FROM phong_giao_dich ORDER BY id`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("支店データの取得失敗: %w", err)
	}
	defer rows.Close()

	var branches []*model.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (r *PostgresDatasetRepository) GetSchools(ctx context.Context) ([]*model.School, error) {
	query := `
		SELECT id, ten, vi_do, kinh_do,
			COALESCE(cap_hoc, ''), COALESCE(loai_hinh, ''),
			COALESCE(ma_xa, ''), COALESCE(ten_xa, ''), COALESCE(dia_chi, ''),
			address, COALESCE(operator, ''), COALESCE(grades, ''), lien_he
		FROM truong_hoc
		ORDER BY id
	`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("学校データの取得失敗: %w", err)
	}
	defer rows.Close()

	var schools []*model.School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (r *PostgresDatasetRepository) GetCulturalSites(ctx context.Context) ([]*model.CulturalSite, error) {
	query := `
		SELECT id, ten_dia_diem, vi_do, kinh_do,
			COALESCE(loai_dia_diem, ''), COALESCE(ma_xa, ''), COALESCE(ten_xa, ''),
			COALESCE(dia_chi, ''), COALESCE(mo_ta, '')
		FROM dia_diem_van_hoa
		ORDER BY id
	`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("文化施設データの取得失敗: %w", err)
	}
	defer rows.Close()

	var sites []*model.CulturalSite
	for rows.Next() {
		d, err := scanCulturalSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, d)
	}
	return sites, rows.Err()
}

// SearchEthnicity は民族名の部分一致で地域と民族の組を返す（人数の多い順）
func (r *PostgresDatasetRepository) SearchEthnicity(ctx context.Context, query string) ([]model.EthnicitySearchHit, error) {
	sqlQuery := `
		SELECT d.ma_xa, x.ten_xa, x.loai, d.dan_toc, d.so_luong, COALESCE(d.ty_le, 0)
		FROM dan_toc_xa d
		JOIN phuong_xa x ON x.ma_xa = d.ma_xa
		WHERE d.dan_toc ILIKE $1
		ORDER BY d.so_luong DESC
		LIMIT $2
	`

	rows, err := r.client.DB.QueryContext(ctx, sqlQuery, containsPattern(query), searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("民族検索に失敗: %w", err)
	}
	defer rows.Close()

	hits := []model.EthnicitySearchHit{}
	for rows.Next() {
		h, err := scanEthnicityHit(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// SearchRegions は地域名の部分一致で検索する
func (r *PostgresDatasetRepository) SearchRegions(ctx context.Context, query string) ([]model.RegionSearchHit, error) {
	sqlQuery := `
		SELECT ma_xa, ten_xa, loai, COALESCE(dan_so, 0)
		FROM phuong_xa
		WHERE ten_xa ILIKE $1
		ORDER BY ten_xa
		LIMIT $2
	`

	rows, err := r.client.DB.QueryContext(ctx, sqlQuery, containsPattern(query), searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("地域検索に失敗: %w", err)
	}
	defer rows.Close()

	hits := []model.RegionSearchHit{}
	for rows.Next() {
		h, err := scanRegionHit(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (r *PostgresDatasetRepository) GetRegionEthnicities(ctx context.Context, regionCode string) ([]model.EthnicityCount, error) {
	query := `SELECT dan_toc, so_luong FROM dan_toc_xa WHERE ma_xa = $1 ORDER BY so_luong DESC`

	rows, err := r.client.DB.QueryContext(ctx, query, regionCode)
	if err != nil {
		return nil, fmt.Errorf("地域 %s の民族データ取得失敗: %w", regionCode, err)
	}
	defer rows.Close()

	counts := []model.EthnicityCount{}
	for rows.Next() {
		var c model.EthnicityCount
		if err := rows.Scan(&c.Ethnicity, &c.Count); err != nil {
			return nil, fmt.Errorf("民族データスキャンエラー: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanRegionRow(rs rowScanner) (regionRow, error) {
	var (
		row       regionRow
		code      string
		mergeNote sql.NullString
		breakdown []byte
		geometry  string
	)
	err := rs.Scan(&code, &row.Name, &row.Kind, &row.Population, &row.AreaKm2, &row.DensityPerKm2,
		&row.DominantEthnicity, &mergeNote, &breakdown, &geometry)
	if err != nil {
		return row, fmt.Errorf("地域データスキャンエラー: %w", err)
	}
	row.Code = model.EntityID(code)
	if mergeNote.Valid {
		row.MergeNote = &mergeNote.String
	}
	if err := json.Unmarshal(breakdown, &row.Breakdown); err != nil {
		return row, fmt.Errorf("dan_toc_phan_bo JSONパースエラー: %w", err)
	}
	row.Geometry = json.RawMessage(geometry)
	return row, nil
}

func scanBranch(rs rowScanner) (*model.Branch, error) {
	var (
		b  model.Branch
		id string
	)
	if err := rs.Scan(&id, &b.Name, &b.Latitude, &b.Longitude); err != nil {
		return nil, fmt.Errorf("支店データスキャンエラー: %w", err)
	}
	b.ID = model.EntityID(id)
	return &b, nil
}

func scanSchool(rs rowScanner) (*model.School, error) {
	var (
		s                model.School
		id, maXa         string
		address, contact []byte
	)
	err := rs.Scan(&id, &s.Name, &s.Latitude, &s.Longitude,
		&s.EducationLevel, &s.OwnershipType, &maXa, &s.RegionName, &s.Address,
		&address, &s.Operator, &s.Grades, &contact)
	if err != nil {
		return nil, fmt.Errorf("学校データスキャンエラー: %w", err)
	}
	s.ID = model.EntityID(id)
	s.RegionCode = model.EntityID(maXa)
	if err := decodeOptionalJSON(address, &s.AddressDetail); err != nil {
		return nil, fmt.Errorf("学校 %s のaddress JSONパースエラー: %w", id, err)
	}
	if err := decodeOptionalJSON(contact, &s.Contact); err != nil {
		return nil, fmt.Errorf("学校 %s のlien_he JSONパースエラー: %w", id, err)
	}
	return &s, nil
}

func scanCulturalSite(rs rowScanner) (*model.CulturalSite, error) {
	var (
		d        model.CulturalSite
		id, maXa string
	)
	err := rs.Scan(&id, &d.Name, &d.Latitude, &d.Longitude,
		&d.Category, &maXa, &d.RegionName, &d.Address, &d.Description)
	if err != nil {
		return nil, fmt.Errorf("文化施設データスキャンエラー: %w", err)
	}
	d.ID = model.EntityID(id)
	d.RegionCode = model.EntityID(maXa)
	return &d, nil
}

func scanEthnicityHit(rs rowScanner) (model.EthnicitySearchHit, error) {
	var (
		h    model.EthnicitySearchHit
		code string
	)
	if err := rs.Scan(&code, &h.RegionName, &h.Kind, &h.Ethnicity, &h.Count, &h.Percentage); err != nil {
		return h, fmt.Errorf("民族検索結果スキャンエラー: %w", err)
	}
	h.RegionCode = model.EntityID(code)
	return h, nil
}

func scanRegionHit(rs rowScanner) (model.RegionSearchHit, error) {
	var (
		h    model.RegionSearchHit
		code string
	)
	if err := rs.Scan(&code, &h.RegionName, &h.Kind, &h.Population); err != nil {
		return h, fmt.Errorf("地域検索結果スキャンエラー: %w", err)
	}
	h.RegionCode = model.EntityID(code)
	return h, nil
}

// decodeOptionalJSON はNULL列（空・null）を読み飛ばしてJSON列をデコードする
func decodeOptionalJSON(raw []byte, dst any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
