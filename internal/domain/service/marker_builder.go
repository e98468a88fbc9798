package service

import (
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/palette"
)

// BuildMarkers は表示対象の点データをマーカーにする（支店・学校・文化施設の順）。
// 座標が無いものは描画しない
func BuildMarkers(c *Catalog, f *model.FilterState, query string, popups *PopupComposer) []model.Marker {
	markers := []model.Marker{}

	for _, b := range c.Branches {
		if !IsBranchVisible(b, f) || !BranchMatchesQuery(b, query) || !hasPosition(b.ToLatLng()) {
			continue
		}
		markers = append(markers, newMarker(BranchResult(b), palette.BranchColor, popups))
	}

	for _, s := range c.Schools {
		if !IsSchoolVisible(s, f) || !SchoolMatchesQuery(s, query) || !hasPosition(s.ToLatLng()) {
			continue
		}
		markers = append(markers, newMarker(SchoolResult(s), palette.SchoolColor(s.EducationLevel), popups))
	}

	for _, d := range c.CulturalSites {
		if !IsCulturalSiteVisible(d, f) || !CulturalSiteMatchesQuery(d, query) || !hasPosition(d.ToLatLng()) {
			continue
		}
		markers = append(markers, newMarker(CulturalSiteResult(d), palette.SiteColor(d.CategoryOrDefault()), popups))
	}

	return markers
}

func newMarker(res model.SearchResult, color string, popups *PopupComposer) model.Marker {
	pos := *res.Coordinates
	return model.Marker{
		ID:         res.ID,
		EntityType: res.EntityType,
		Label:      res.Label,
		Position:   pos,
		Color:      color,
		Popup:      popups.ForMarker(res, pos),
	}
}

func hasPosition(p model.LatLng) bool {
	return p.Lat != 0 && p.Lng != 0
}
