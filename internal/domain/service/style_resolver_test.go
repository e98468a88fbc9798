package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/palette"
)

func kinhRegion() *model.Region {
	r := square("K1", "Phường Kinh", 105.9, 10.2, 0.05)
	r.DominantEthnicity = "Kinh"
	r.EthnicBreakdown = []model.EthnicShare{{Ethnicity: "Kinh", Count: 1000, Percentage: 100}}
	return r
}

func TestResolveStyle_IsPure(t *testing.T) {
	r := kinhRegion()
	f := model.NewDefaultFilterState()
	f.SelectedRegionIDs = []string{"other"}
	before := f.Clone()

	a := ResolveStyle(r, f, nil)
	b := ResolveStyle(r, f, nil)
	assert.Equal(t, a, b)
	assert.Equal(t, before, f)
}

func TestResolveStyle_ExclusionWins(t *testing.T) {
	r := kinhRegion()
	for _, layerOn := range []bool{true, false} {
		f := model.NewDefaultFilterState()
		f.Layers[model.LayerEthnicity] = layerOn
		f.ExclusiveEthnicity = "Khmer"
		f.SelectedRegionIDs = []string{r.Code}

		s := ResolveStyle(r, f, r)
		assert.Equal(t, 0.0, s.FillOpacity)
		assert.Equal(t, palette.ExcludedStroke, s.StrokeColor)
		assert.Equal(t, palette.ExcludedWeight, s.StrokeWeight)
	}
}

func TestResolveStyle_KhmerScenario(t *testing.T) {
	f := model.NewDefaultFilterState()
	next, err := ApplyToggle(f, model.GroupEthnicity, "Khmer")
	require.NoError(t, err)

	s := ResolveStyle(kinhRegion(), next, nil)
	assert.Equal(t, 0.0, s.FillOpacity)
}

func TestResolveStyle_MultiSelectBeforeFocus(t *testing.T) {
	r := kinhRegion()
	f := model.NewDefaultFilterState()
	f.SelectedRegionIDs = []string{r.Code}

	s := ResolveStyle(r, f, r)
	assert.Equal(t, palette.HighlightStroke, s.StrokeColor)
	assert.Equal(t, palette.HighlightWeight, s.StrokeWeight)
	assert.Greater(t, s.FillOpacity, palette.VisibleFillOpacity)
}

func TestResolveStyle_Focus(t *testing.T) {
	r := kinhRegion()
	f := model.NewDefaultFilterState()
	f.Layers[model.LayerEthnicity] = false

	s := ResolveStyle(r, f, kinhRegion())
	assert.Equal(t, palette.SelectedFill, s.FillColor)
	assert.Equal(t, palette.SelectedStroke, s.StrokeColor)
	assert.Equal(t, palette.SelectedWeight, s.StrokeWeight)
	assert.Equal(t, 0.5, s.FillOpacity)
}

func TestResolveStyle_PaletteColoring(t *testing.T) {
	r := kinhRegion()
	f := model.NewDefaultFilterState()

	s := ResolveStyle(r, f, nil)
	assert.Equal(t, "#339af0", s.FillColor)
	assert.Equal(t, "#339af0", s.StrokeColor)
	assert.Equal(t, 0.5, s.FillOpacity)
	assert.Equal(t, 2.0, s.StrokeWeight)
	assert.Equal(t, 0.9, s.StrokeOpacity)

	f.Layers[model.LayerEthnicity] = false
	s = ResolveStyle(r, f, nil)
	assert.Equal(t, 0.0, s.FillOpacity)
	assert.Equal(t, palette.HiddenStroke, s.StrokeColor)
	assert.Equal(t, 1.0, s.StrokeWeight)

	// 単一選択が有効なら民族レイヤーOFFでも表示扱い
	f.ExclusiveEthnicity = "Kinh"
	s = ResolveStyle(r, f, nil)
	assert.Equal(t, 0.5, s.FillOpacity)
	assert.Equal(t, "#339af0", s.StrokeColor)
}

func TestResolveStyle_FallbackColors(t *testing.T) {
	f := model.NewDefaultFilterState()

	unknown := square("U", "U", 0, 0, 1)
	unknown.DominantEthnicity = "Không rõ"
	assert.Equal(t, palette.FallbackColor, ResolveStyle(unknown, f, nil).FillColor)

	missing := square("M", "M", 0, 0, 1)
	assert.Equal(t, palette.EthnicityColor("Kinh"), ResolveStyle(missing, f, nil).FillColor)
}

func TestRenderRegions(t *testing.T) {
	catalog := testCatalog()
	f := model.NewDefaultFilterState()
	f.Layers[model.LayerEthnicity] = false
	f.SelectedRegionIDs = []string{"002"}

	out := RenderRegions(catalog.Index, f, nil, "")
	require.Len(t, out, 2)
	assert.False(t, out[0].Visible)
	assert.True(t, out[1].Visible)

	out = RenderRegions(catalog.Index, f, nil, "phường")
	require.Len(t, out, 1)
	assert.Equal(t, "001", out[0].Code)
}
