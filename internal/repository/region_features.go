package repository

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"ProvinceMap-App/internal/domain/model"
)

// regionRow はDBに保存された地域1行分。geometryはGeoJSONのジオメトリ
type regionRow struct {
	Code              model.EntityID      `json:"ma_xa"`
	Name              string              `json:"ten_xa"`
	Kind              string              `json:"loai"`
	Population        float64             `json:"dan_so"`
	AreaKm2           float64             `json:"dtich_km2"`
	DensityPerKm2     float64             `json:"matdo_km2"`
	DominantEthnicity string              `json:"dan_toc_chu_dao"`
	MergeNote         *string             `json:"sap_nhap"`
	Breakdown         []model.EthnicShare `json:"dan_toc_phan_bo"`
	Geometry          json.RawMessage     `json:"geometry"`
}

// outlineRow は省境界1行分
type outlineRow struct {
	Name     string          `json:"ten"`
	Geometry json.RawMessage `json:"geometry"`
}

// regionRowsToCollection はDBの行をデータAPIと同じ形のFeatureCollectionに組み立てる
func regionRowsToCollection(rows []regionRow) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, row := range rows {
		g, err := geojson.UnmarshalGeometry(row.Geometry)
		if err != nil {
			return nil, fmt.Errorf("地域 %s のジオメトリが不正です: %w", row.Code, err)
		}
		f := geojson.NewFeature(g.Geometry())
		f.Properties["ma_xa"] = string(row.Code)
		f.Properties["ten_xa"] = row.Name
		f.Properties["loai"] = row.Kind
		f.Properties["dan_so"] = row.Population
		f.Properties["dtich_km2"] = row.AreaKm2
		f.Properties["matdo_km2"] = row.DensityPerKm2
		f.Properties["dan_toc_chu_dao"] = row.DominantEthnicity
		if row.MergeNote != nil {
			f.Properties["sap_nhap"] = *row.MergeNote
		}
		if len(row.Breakdown) > 0 {
			f.Properties["dan_toc_phan_bo"] = row.Breakdown
		}
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

func outlineRowsToCollection(rows []outlineRow) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, row := range rows {
		g, err := geojson.UnmarshalGeometry(row.Geometry)
		if err != nil {
			return nil, fmt.Errorf("省境界 %s のジオメトリが不正です: %w", row.Name, err)
		}
		f := geojson.NewFeature(g.Geometry())
		f.Properties["ten"] = row.Name
		fc.Append(f)
	}
	return fc.MarshalJSON()
}
