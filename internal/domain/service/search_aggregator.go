package service

import (
	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
)

// DefaultSearchLimit 統合検索の最大件数
const DefaultSearchLimit = 12

// SearchAggregator は地域・支店・学校・文化施設を横断して名前検索する
type SearchAggregator struct {
	limit int
}

// NewSearchAggregator は新しいSearchAggregatorを作成する
func NewSearchAggregator(limit int) *SearchAggregator {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &SearchAggregator{limit: limit}
}

// Search はクエリに部分一致する結果を 地域→支店→学校→文化施設 の順で返す。
// 種類内はデータの順序のまま。前後の空白を除いて2文字未満のクエリは空を返す
func (a *SearchAggregator) Search(query string, catalog *Catalog) []model.SearchResult {
	q := helper.NormalizeQuery(query)
	if !helper.IsSearchable(q) || catalog == nil {
		return []model.SearchResult{}
	}

	results := make([]model.SearchResult, 0, a.limit)
	for _, r := range catalog.Index.Regions() {
		if helper.ContainsFold(r.Name, q) {
			results = append(results, catalog.RegionResult(r))
		}
	}
	for _, b := range catalog.Branches {
		if helper.ContainsFold(b.Name, q) {
			results = append(results, BranchResult(b))
		}
	}
	for _, s := range catalog.Schools {
		if helper.ContainsFold(s.Name, q) {
			results = append(results, SchoolResult(s))
		}
	}
	for _, d := range catalog.CulturalSites {
		if helper.ContainsFold(d.Name, q) {
			results = append(results, CulturalSiteResult(d))
		}
	}

	if len(results) > a.limit {
		results = results[:a.limit]
	}
	return results
}
