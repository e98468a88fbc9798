package service

import (
	"strings"

	"github.com/paulmach/orb"

	"ProvinceMap-App/internal/domain/model"
)

// 検索結果IDの接頭辞
const (
	RegionIDPrefix       = "xa-"
	BranchIDPrefix       = "pgd-"
	SchoolIDPrefix       = "school-"
	CulturalSiteIDPrefix = "ddvh-"
)

// 点データのズーム目安
const (
	BranchZoom       = 15
	SchoolZoom       = 16
	CulturalSiteZoom = 16
)

// Catalog は読み込み済みのデータ一式。ロード後は変更しない
type Catalog struct {
	Index         *FeatureIndex
	Outline       []orb.Geometry
	Branches      []*model.Branch
	Schools       []*model.School
	CulturalSites []*model.CulturalSite
}

// NewCatalog は空のデータセットを補ってカタログを作成する
func NewCatalog(index *FeatureIndex, outline []orb.Geometry, branches []*model.Branch, schools []*model.School, sites []*model.CulturalSite) *Catalog {
	if index == nil {
		index = NewFeatureIndex(nil)
	}
	return &Catalog{
		Index:         index,
		Outline:       outline,
		Branches:      branches,
		Schools:       schools,
		CulturalSites: sites,
	}
}

// RegionResult は地域の検索結果を作成する
func (c *Catalog) RegionResult(r *model.Region) model.SearchResult {
	res := model.SearchResult{
		ID:         RegionIDPrefix + r.Code,
		Label:      r.Name,
		EntityType: model.EntityRegion,
		TypeLabel:  model.EntityRegion.Label(),
		Region:     r,
	}
	if b, ok := c.Index.Bounds(r.Code); ok && r.Geometry != nil {
		bound := b
		center := model.LatLngFromPoint(b.Center())
		res.Bounds = &bound
		res.Coordinates = &center
	}
	return res
}

// BranchResult は支店の検索結果を作成する
func BranchResult(b *model.Branch) model.SearchResult {
	coords := b.ToLatLng()
	return model.SearchResult{
		ID:          BranchIDPrefix + string(b.ID),
		Label:       b.Name,
		EntityType:  model.EntityBranch,
		TypeLabel:   model.EntityBranch.Label(),
		Coordinates: &coords,
		Zoom:        BranchZoom,
		Branch:      b,
	}
}

// SchoolResult は学校の検索結果を作成する
func SchoolResult(s *model.School) model.SearchResult {
	coords := s.ToLatLng()
	return model.SearchResult{
		ID:          SchoolIDPrefix + string(s.ID),
		Label:       s.Name,
		EntityType:  model.EntitySchool,
		TypeLabel:   model.EntitySchool.Label(),
		Coordinates: &coords,
		Zoom:        SchoolZoom,
		School:      s,
	}
}

// CulturalSiteResult は文化施設の検索結果を作成する
func CulturalSiteResult(d *model.CulturalSite) model.SearchResult {
	coords := d.ToLatLng()
	return model.SearchResult{
		ID:           CulturalSiteIDPrefix + string(d.ID),
		Label:        d.Name,
		EntityType:   model.EntityCulturalSite,
		TypeLabel:    model.EntityCulturalSite.Label(),
		Coordinates:  &coords,
		Zoom:         CulturalSiteZoom,
		CulturalSite: d,
	}
}

// Resolve は検索結果IDから結果を復元する
func (c *Catalog) Resolve(id string) (model.SearchResult, bool) {
	switch {
	case strings.HasPrefix(id, RegionIDPrefix):
		if r, ok := c.Index.Get(strings.TrimPrefix(id, RegionIDPrefix)); ok {
			return c.RegionResult(r), true
		}
	case strings.HasPrefix(id, BranchIDPrefix):
		if b := c.FindBranch(strings.TrimPrefix(id, BranchIDPrefix)); b != nil {
			return BranchResult(b), true
		}
	case strings.HasPrefix(id, SchoolIDPrefix):
		key := strings.TrimPrefix(id, SchoolIDPrefix)
		for _, s := range c.Schools {
			if string(s.ID) == key {
				return SchoolResult(s), true
			}
		}
	case strings.HasPrefix(id, CulturalSiteIDPrefix):
		key := strings.TrimPrefix(id, CulturalSiteIDPrefix)
		for _, d := range c.CulturalSites {
			if string(d.ID) == key {
				return CulturalSiteResult(d), true
			}
		}
	}
	return model.SearchResult{}, false
}

// FindBranch はIDから支店を取得する
func (c *Catalog) FindBranch(id string) *model.Branch {
	for _, b := range c.Branches {
		if string(b.ID) == id {
			return b
		}
	}
	return nil
}
