package palette

import "ProvinceMap-App/internal/domain/model"

const (
	defaultSiteColor   = "#228be6"
	defaultSchoolColor = "#0d6efd"
	// BranchColor 支店マーカーの色
	BranchColor = "#0d6efd"
)

var siteCategoryColors = map[string]string{
	model.SiteCategoryCommunalHouse: "#f08c00",
	model.SiteCategoryPagoda:        "#845ef7",
	model.SiteCategoryCulturalHall:  "#20c997",
	model.SiteCategoryTemple:        "#d9480f",
	model.SiteCategoryShrine:        "#2f9e44",
	model.SiteCategoryOther:         "#228be6",
}

var schoolLevelColors = map[string]string{
	model.EducationPreschool: "#ff922b",
	model.EducationPrimary:   "#1c7ed6",
	model.EducationLowerSec:  "#845ef7",
	model.EducationUpperSec:  "#2f9e44",
}

// SiteColor 文化施設カテゴリのマーカー色
func SiteColor(category string) string {
	if c, ok := siteCategoryColors[category]; ok {
		return c
	}
	return defaultSiteColor
}

// SchoolColor 教育段階のマーカー色
func SchoolColor(level string) string {
	if c, ok := schoolLevelColors[level]; ok {
		return c
	}
	return defaultSchoolColor
}
