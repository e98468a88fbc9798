package service

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/model"
)

func TestFeatureIndex_Lookup(t *testing.T) {
	idx := testCatalog().Index

	assert.Equal(t, 2, idx.Len())
	r, ok := idx.Get("002")
	require.True(t, ok)
	assert.Equal(t, "Xã Bình An", r.Name)

	_, ok = idx.Get("999")
	assert.False(t, ok)

	center, ok := idx.Center("001")
	require.True(t, ok)
	assert.InDelta(t, 10.225, center.Lat, 1e-9)
	assert.InDelta(t, 105.925, center.Lng, 1e-9)

	centroid, ok := idx.Centroid("001")
	require.True(t, ok)
	assert.InDelta(t, 10.225, centroid.Lat, 1e-6)
	assert.InDelta(t, 105.925, centroid.Lng, 1e-6)

	extent := idx.Extent()
	assert.InDelta(t, 105.90, extent.Min.Lon(), 1e-9)
	assert.InDelta(t, 106.00, extent.Max.Lon(), 1e-9)
}

func TestFeatureIndex_CentroidOutsideFallsBack(t *testing.T) {
	// コの字形は重心が凹部に落ちる
	u := &model.Region{Code: "U", Name: "U", Geometry: orb.Polygon{{
		{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}, {0, 0},
	}}}
	idx := NewFeatureIndex([]*model.Region{u})

	centroid, ok := idx.Centroid("U")
	require.True(t, ok)
	assert.InDelta(t, 1.5, centroid.Lat, 1e-9)
	assert.InDelta(t, 1.5, centroid.Lng, 1e-9)
}

func TestFeatureIndex_RegionAt(t *testing.T) {
	idx := testCatalog().Index

	r, ok := idx.RegionAt(model.LatLng{Lat: 10.21, Lng: 105.91})
	require.True(t, ok)
	assert.Equal(t, "001", r.Code)

	r, ok = idx.RegionAt(model.LatLng{Lat: 10.21, Lng: 105.99})
	require.True(t, ok)
	assert.Equal(t, "002", r.Code)

	_, ok = idx.RegionAt(model.LatLng{Lat: 11, Lng: 105.91})
	assert.False(t, ok)
}

func TestFeatureIndex_RegionAt_MultiPolygon(t *testing.T) {
	a := square("A", "A", 0, 0, 1)
	b := square("B", "B", 5, 5, 1)
	multi := &model.Region{Code: "M", Name: "M"}
	multi.Geometry = append(multiOf(a), multiOf(b)...)

	idx := NewFeatureIndex([]*model.Region{multi})
	r, ok := idx.RegionAt(model.LatLng{Lat: 5.5, Lng: 5.5})
	require.True(t, ok)
	assert.Equal(t, "M", r.Code)

	// 外接矩形には入るがポリゴン外
	_, ok = idx.RegionAt(model.LatLng{Lat: 3, Lng: 3})
	assert.False(t, ok)
}

func TestFeatureIndex_FilterByName(t *testing.T) {
	idx := testCatalog().Index
	assert.Len(t, idx.FilterByName(""), 2)
	got := idx.FilterByName("BÌNH")
	require.Len(t, got, 1)
	assert.Equal(t, "002", got[0].Code)
}
