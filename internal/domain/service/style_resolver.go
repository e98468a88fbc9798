package service

import (
	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/palette"
)

// ResolveStyle は地域の描画スタイルを決める純粋関数。
// 優先順: 民族フィルタ除外 → 複数選択ハイライト → フォーカス中の地域 → 主要民族の配色
func ResolveStyle(r *model.Region, f *model.FilterState, selected *model.Region) model.Style {
	if f.HasExclusiveEthnicity() && !r.HasEthnicity(f.ExclusiveEthnicity) {
		return model.Style{
			FillColor:     palette.RegionColor(r),
			FillOpacity:   0,
			StrokeColor:   palette.ExcludedStroke,
			StrokeWeight:  palette.ExcludedWeight,
			StrokeOpacity: palette.StrokeOpacity,
		}
	}

	if f.IsRegionSelected(r.Code) {
		return model.Style{
			FillColor:     palette.HighlightStroke,
			FillOpacity:   palette.HighlightOpacity,
			StrokeColor:   palette.HighlightStroke,
			StrokeWeight:  palette.HighlightWeight,
			StrokeOpacity: 1,
		}
	}

	if selected != nil && selected.Code == r.Code {
		return model.Style{
			FillColor:     palette.SelectedFill,
			FillOpacity:   palette.VisibleFillOpacity,
			StrokeColor:   palette.SelectedStroke,
			StrokeWeight:  palette.SelectedWeight,
			StrokeOpacity: palette.StrokeOpacity,
		}
	}

	base := palette.RegionColor(r)
	if f.LayerOn(model.LayerEthnicity) || f.HasExclusiveEthnicity() {
		return model.Style{
			FillColor:     base,
			FillOpacity:   palette.VisibleFillOpacity,
			StrokeColor:   base,
			StrokeWeight:  palette.VisibleWeight,
			StrokeOpacity: palette.StrokeOpacity,
		}
	}
	return model.Style{
		FillColor:     base,
		FillOpacity:   0,
		StrokeColor:   palette.HiddenStroke,
		StrokeWeight:  palette.HiddenWeight,
		StrokeOpacity: palette.StrokeOpacity,
	}
}

// RenderRegions は表示対象の判定とスタイルをまとめて計算する。
// queryが空でなければ地域名で絞り込む
func RenderRegions(index *FeatureIndex, f *model.FilterState, selected *model.Region, query string) []model.RegionRender {
	regions := index.FilterByName(query)
	out := make([]model.RegionRender, 0, len(regions))
	for _, r := range regions {
		out = append(out, model.RegionRender{
			Code:    r.Code,
			Name:    r.Name,
			Visible: IsRegionVisible(r, f),
			Style:   ResolveStyle(r, f, selected),
		})
	}
	return out
}
