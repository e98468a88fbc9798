package palette

import "ProvinceMap-App/internal/domain/model"

// FallbackColor は配色表にない民族名に使う色
const FallbackColor = "#868e96"

// ethnicityColors 民族名→塗り色。起動後は読み取り専用
var ethnicityColors = map[string]string{
	"Kinh":         "#339af0",
	"Khmer":        "#51cf66",
	"Hoa":          "#ffd43b",
	"Tày":          "#ff922b",
	"Thái":         "#f06595",
	"Mường":        "#845ef7",
	"Nùng":         "#20c997",
	"Chăm":         "#fa5252",
	"H'Mông":       "#fd7e14",
	"Dao":          "#e83e8c",
	"Gia-rai":      "#0dcaf0",
	"Ê-đê":         "#198754",
	"Ba-na":        "#6f42c1",
	"Xơ-đăng":      "#d63384",
	"Cơ-ho":        "#20c997",
	"Sán Dìu":      "#ffc107",
	"Hrê":          "#0d6efd",
	"Mnông":        "#6610f2",
	"Ra-glai":      "#fd7e14",
	"Xtiêng":       "#dc3545",
	"Bru-Vân Kiều": "#198754",
	"Thổ":          "#6c757d",
	"Giấy":         "#ffc107",
	"Cơ-tu":        "#20c997",
	"Giáy":         "#fd7e14",
	"La Chí":       "#6f42c1",
	"La Ha":        "#d63384",
	"Lự":           "#0dcaf0",
	"Lào":          "#198754",
	"Lô Lô":        "#6610f2",
	"Chứt":         "#dc3545",
	"Mảng":         "#6c757d",
	"Pà Thẻn":      "#ffc107",
	"Co":           "#20c997",
	"Ngái":         "#fd7e14",
	"Xinh Mun":     "#6f42c1",
	"Hà Nhì":       "#d63384",
	"Chu-ru":       "#0dcaf0",
	"Kháng":        "#198754",
	"Phù Lá":       "#6610f2",
	"La Hủ":        "#dc3545",
	"Ơ Đu":         "#6c757d",
	"Rơ Măm":       "#ffc107",
	"Brâu":         "#20c997",
}

// legendOrder 凡例に表示する民族（表示順）
var legendOrder = []string{"Kinh", "Khmer", "Hoa", "Thái", "Mường", "Nùng", "Chăm", "Tày"}

// EthnicityColor は民族名の塗り色を返す。未登録の名前はFallbackColor
func EthnicityColor(name string) string {
	if c, ok := ethnicityColors[name]; ok {
		return c
	}
	return FallbackColor
}

// RegionColor は地域の主要民族の色を返す。主要民族が空ならKinh扱い
func RegionColor(r *model.Region) string {
	return EthnicityColor(r.DominantOrDefault())
}

// LegendEntry 凡例の1行
type LegendEntry struct {
	Ethnicity string `json:"dan_toc"`
	Color     string `json:"color"`
}

// Legend は凡例を返す（毎回新しいスライス）
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(legendOrder)+1)
	for _, name := range legendOrder {
		entries = append(entries, LegendEntry{Ethnicity: name, Color: EthnicityColor(name)})
	}
	entries = append(entries, LegendEntry{Ethnicity: "Khác", Color: FallbackColor})
	return entries
}

// 地域ポリゴンのスタイル定数
const (
	SelectedFill       = "#ff6b6b"
	SelectedStroke     = "#c92a2a"
	SelectedWeight     = 3.0
	HighlightStroke    = "#fab005"
	HighlightWeight    = 3.0
	HighlightOpacity   = 0.75
	ExcludedStroke     = "#adb5bd"
	ExcludedWeight     = 0.5
	HiddenStroke       = "#2d3436"
	HiddenWeight       = 1.0
	VisibleWeight      = 2.0
	VisibleFillOpacity = 0.5
	StrokeOpacity      = 0.9
)

// OutlineStyle は省境界（操作不可）のスタイル
func OutlineStyle() model.Style {
	return model.Style{
		FillColor:     "#1c7ed6",
		FillOpacity:   0,
		StrokeColor:   "#1c7ed6",
		StrokeWeight:  2.5,
		StrokeOpacity: 1,
	}
}
