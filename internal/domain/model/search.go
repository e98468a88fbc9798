package model

import "github.com/paulmach/orb"

// EntityType は検索結果の種類
type EntityType string

// EntityTypeConstants は検索結果の種類の定数（並び順もこの順）
const (
	EntityRegion       EntityType = "region"
	EntityBranch       EntityType = "branch"
	EntitySchool       EntityType = "school"
	EntityCulturalSite EntityType = "cultural_site"
)

// EntityTypeLabelMap は種類から表示名へのマッピング
var EntityTypeLabelMap = map[EntityType]string{
	EntityRegion:       "Khu vực",
	EntityBranch:       "PGD",
	EntitySchool:       "Trường học",
	EntityCulturalSite: "Địa điểm",
}

// Label は種類の表示名を返す
func (t EntityType) Label() string {
	if label, ok := EntityTypeLabelMap[t]; ok {
		return label
	}
	return string(t)
}

// SearchResult は統合検索の1件。クエリが変わるたびに作り直す
type SearchResult struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	EntityType  EntityType `json:"entity_type"`
	TypeLabel   string     `json:"type"`
	Coordinates *LatLng    `json:"coords,omitempty"`
	Bounds      *orb.Bound `json:"bounds,omitempty"`
	Zoom        int        `json:"zoom,omitempty"`

	// 元データへの参照（所有しない）
	Region       *Region       `json:"-"`
	Branch       *Branch       `json:"-"`
	School       *School       `json:"-"`
	CulturalSite *CulturalSite `json:"-"`
}

// HasBounds は範囲指定の結果か
func (r *SearchResult) HasBounds() bool {
	return r.Bounds != nil
}
