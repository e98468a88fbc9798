package repository

import (
	"context"

	"ProvinceMap-App/internal/domain/model"
)

// SearchRepository はサーバー側のテキスト検索と地域詳細
type SearchRepository interface {
	SearchEthnicity(ctx context.Context, query string) ([]model.EthnicitySearchHit, error)
	SearchRegions(ctx context.Context, query string) ([]model.RegionSearchHit, error)
	GetRegionEthnicities(ctx context.Context, regionCode string) ([]model.EthnicityCount, error)
}
