package model

// Style は地域ポリゴンの描画スタイル
type Style struct {
	FillColor     string  `json:"fillColor"`
	FillOpacity   float64 `json:"fillOpacity"`
	StrokeColor   string  `json:"color"`
	StrokeWeight  float64 `json:"weight"`
	StrokeOpacity float64 `json:"opacity"`
}

// RegionRender は地域1件分の描画情報
type RegionRender struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Style   Style  `json:"style"`
}

// Marker は地図上に表示する点データ
type Marker struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	Label      string     `json:"label"`
	Position   LatLng     `json:"position"`
	Color      string     `json:"color"`
	Popup      *Popup     `json:"popup,omitempty"`
}
