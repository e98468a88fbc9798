package model

import (
	"strings"

	"github.com/paulmach/orb"
)

// EthnicShare 地域内の民族別人口
type EthnicShare struct {
	Ethnicity  string  `json:"dan_toc"`
	Count      int64   `json:"so_luong"`
	Percentage float64 `json:"ty_le"`
}

// Region 行政区画（xã/phường）と人口統計
type Region struct {
	Code              string        `json:"ma_xa"`
	Name              string        `json:"ten_xa"`
	Kind              string        `json:"loai"`
	Geometry          orb.Geometry  `json:"-"`
	Population        int64         `json:"dan_so"`
	AreaKm2           float64       `json:"dtich_km2"`
	DensityPerKm2     float64       `json:"matdo_km2"`
	DominantEthnicity string        `json:"dan_toc_chu_dao"`
	EthnicBreakdown   []EthnicShare `json:"dan_toc_phan_bo"`
	MergeNote         string        `json:"sap_nhap,omitempty"`
}

// DominantOrDefault 主要民族が未設定の地域はKinhとして扱う
func (r *Region) DominantOrDefault() string {
	if strings.TrimSpace(r.DominantEthnicity) == "" {
		return DefaultEthnicity
	}
	return r.DominantEthnicity
}

// HasEthnicity 民族別人口に指定の民族が含まれるか
func (r *Region) HasEthnicity(name string) bool {
	for _, share := range r.EthnicBreakdown {
		if share.Ethnicity == name {
			return true
		}
	}
	return false
}

// RegionSearchHit 地域検索APIの結果
type RegionSearchHit struct {
	RegionCode EntityID `json:"ma_xa"`
	RegionName string   `json:"ten_xa"`
	Kind       string   `json:"loai"`
	Population float64  `json:"dan_so"`
}

// EthnicitySearchHit 民族検索APIの結果（地域・民族の組）
type EthnicitySearchHit struct {
	RegionCode EntityID `json:"ma_xa"`
	RegionName string   `json:"ten_xa"`
	Kind       string   `json:"loai,omitempty"`
	Ethnicity  string   `json:"dan_toc"`
	Count      float64  `json:"so_luong"`
	Percentage float64  `json:"ty_le"`
}

// EthnicityCount 選択地域の民族別人口（詳細パネル用）
type EthnicityCount struct {
	Ethnicity string  `json:"dan_toc"`
	Count     float64 `json:"so_luong"`
}
