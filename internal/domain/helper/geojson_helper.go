package helper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"ProvinceMap-App/internal/domain/model"
)

// regionProperties phuong-xa GeoJSONのproperties。数値はfloatで来ることがある
type regionProperties struct {
	Code              model.EntityID `json:"ma_xa"`
	Name              string         `json:"ten_xa"`
	Kind              string         `json:"loai"`
	AreaKm2           float64        `json:"dtich_km2"`
	Population        float64        `json:"dan_so"`
	DensityPerKm2     float64        `json:"matdo_km2"`
	DominantEthnicity string         `json:"dan_toc_chu_dao"`
	EthnicBreakdown   []struct {
		Ethnicity  string  `json:"dan_toc"`
		Count      float64 `json:"so_luong"`
		Percentage float64 `json:"ty_le"`
	} `json:"dan_toc_phan_bo"`
	MergeNote string `json:"sap_nhap"`
}

// DecodeRegionCollection は地域境界のFeatureCollectionを地域一覧に変換する。
// ポリゴン以外のジオメトリは読み飛ばす
func DecodeRegionCollection(data []byte) ([]*model.Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("GeoJSONのパースに失敗: %w", err)
	}
	regions := make([]*model.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		if !isPolygonal(f.Geometry) {
			continue
		}
		region, err := featureToRegion(f)
		if err != nil {
			return nil, fmt.Errorf("地域データの変換に失敗 (feature %d): %w", i, err)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// DecodeOutline は省境界のFeatureCollectionからジオメトリだけを取り出す
func DecodeOutline(data []byte) ([]orb.Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("GeoJSONのパースに失敗: %w", err)
	}
	geoms := make([]orb.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry != nil {
			geoms = append(geoms, f.Geometry)
		}
	}
	return geoms, nil
}

func featureToRegion(f *geojson.Feature) (*model.Region, error) {
	raw, err := json.Marshal(f.Properties)
	if err != nil {
		return nil, err
	}
	var props regionProperties
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(string(props.Code))
	if code == "" {
		// 行政コードが無い地域は名前で識別する
		code = props.Name
	}

	region := &model.Region{
		Code:              code,
		Name:              props.Name,
		Kind:              props.Kind,
		Geometry:          f.Geometry,
		Population:        int64(props.Population),
		AreaKm2:           props.AreaKm2,
		DensityPerKm2:     props.DensityPerKm2,
		DominantEthnicity: props.DominantEthnicity,
		MergeNote:         props.MergeNote,
	}
	for _, s := range props.EthnicBreakdown {
		region.EthnicBreakdown = append(region.EthnicBreakdown, model.EthnicShare{
			Ethnicity:  s.Ethnicity,
			Count:      int64(s.Count),
			Percentage: s.Percentage,
		})
	}
	return region, nil
}

func isPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	default:
		return false
	}
}
