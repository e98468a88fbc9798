package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
)

// FeatureIndex は地域ポリゴンの読み取り専用インデックス。
// 構築後は変更しないので複数goroutineから参照してよい
type FeatureIndex struct {
	regions   []*model.Region
	byCode    map[string]int
	bounds    []orb.Bound
	centroids []model.LatLng
	extent    orb.Bound
	tree      rtree.RTree
}

// NewFeatureIndex は地域一覧からインデックスを構築する（入力順を保持）
func NewFeatureIndex(regions []*model.Region) *FeatureIndex {
	idx := &FeatureIndex{
		regions:   regions,
		byCode:    make(map[string]int, len(regions)),
		bounds:    make([]orb.Bound, len(regions)),
		centroids: make([]model.LatLng, len(regions)),
	}
	hasExtent := false
	for i, r := range regions {
		if _, dup := idx.byCode[r.Code]; !dup {
			idx.byCode[r.Code] = i
		}
		if r.Geometry == nil {
			continue
		}
		b := r.Geometry.Bound()
		idx.bounds[i] = b
		if hasExtent {
			idx.extent = idx.extent.Union(b)
		} else {
			idx.extent, hasExtent = b, true
		}

		centroid, _ := planar.CentroidArea(r.Geometry)
		if !containsPoint(r.Geometry, centroid) {
			centroid = b.Center()
		}
		idx.centroids[i] = model.LatLngFromPoint(centroid)

		idx.tree.Insert([2]float64{b.Min.Lon(), b.Min.Lat()}, [2]float64{b.Max.Lon(), b.Max.Lat()}, i)
	}
	return idx
}

// Len は地域数を返す
func (idx *FeatureIndex) Len() int {
	return len(idx.regions)
}

// Regions は全地域を元の順序で返す（呼び出し側で変更しないこと）
func (idx *FeatureIndex) Regions() []*model.Region {
	return idx.regions
}

// Get はコードから地域を取得する
func (idx *FeatureIndex) Get(code string) (*model.Region, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return nil, false
	}
	return idx.regions[i], true
}

// Bounds は地域の外接矩形を返す
func (idx *FeatureIndex) Bounds(code string) (orb.Bound, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return orb.Bound{}, false
	}
	return idx.bounds[i], true
}

// Center は地域の外接矩形の中心を返す（検索結果・ポップアップの位置に使う）
func (idx *FeatureIndex) Center(code string) (model.LatLng, bool) {
	b, ok := idx.Bounds(code)
	if !ok {
		return model.LatLng{}, false
	}
	return model.LatLngFromPoint(b.Center()), true
}

// Centroid はポリゴンの重心を返す。重心が地域の外に出る形状では外接矩形の中心。
// 一覧から選んだ地域のポップアップ位置に使う
func (idx *FeatureIndex) Centroid(code string) (model.LatLng, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return model.LatLng{}, false
	}
	return idx.centroids[i], true
}

// Extent は全地域を含む矩形を返す
func (idx *FeatureIndex) Extent() orb.Bound {
	return idx.extent
}

// RegionAt は地点を含む地域を返す。重なりがある場合は元の順序で先のもの
func (idx *FeatureIndex) RegionAt(p model.LatLng) (*model.Region, bool) {
	pt := p.ToPoint()
	best := -1
	idx.tree.Search([2]float64{pt.Lon(), pt.Lat()}, [2]float64{pt.Lon(), pt.Lat()},
		func(_, _ [2]float64, data interface{}) bool {
			i, ok := data.(int)
			if !ok {
				return true
			}
			if (best == -1 || i < best) && containsPoint(idx.regions[i].Geometry, pt) {
				best = i
			}
			return true
		},
	)
	if best == -1 {
		return nil, false
	}
	return idx.regions[best], true
}

// FilterByName は地域名にクエリを含む地域を返す（空クエリは全件）
func (idx *FeatureIndex) FilterByName(query string) []*model.Region {
	q := helper.NormalizeQuery(query)
	if q == "" {
		return idx.regions
	}
	var out []*model.Region
	for _, r := range idx.regions {
		if helper.ContainsFold(r.Name, q) {
			out = append(out, r)
		}
	}
	return out
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	default:
		return false
	}
}
