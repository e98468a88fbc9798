package repository

import (
	"context"

	"ProvinceMap-App/internal/domain/model"
)

// DatasetRepository は地図の初期データ（境界・点データ）の取得元
type DatasetRepository interface {
	// RegionBoundaries は地域境界のGeoJSON（FeatureCollection）を返す
	RegionBoundaries(ctx context.Context) ([]byte, error)
	// ProvinceOutline は省境界のGeoJSON（FeatureCollection）を返す
	ProvinceOutline(ctx context.Context) ([]byte, error)
	GetBranches(ctx context.Context) ([]*model.Branch, error)
	GetSchools(ctx context.Context) ([]*model.School, error)
	GetCulturalSites(ctx context.Context) ([]*model.CulturalSite, error)
}
