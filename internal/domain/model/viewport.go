package model

import "github.com/paulmach/orb"

// PopupField はポップアップの1行
type PopupField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Popup は地図上のポップアップ
type Popup struct {
	Title    string       `json:"title"`
	Fields   []PopupField `json:"fields"`
	Position LatLng       `json:"position"`
}

// CameraCommandKind はカメラ操作の種類
type CameraCommandKind string

const (
	CameraFitBounds CameraCommandKind = "fit_bounds"
	CameraFlyTo     CameraCommandKind = "fly_to"
)

// CameraCommand はクライアントに実行させるカメラ操作
type CameraCommand struct {
	Seq     uint64            `json:"seq"`
	Kind    CameraCommandKind `json:"kind"`
	Bounds  *orb.Bound        `json:"bounds,omitempty"`
	Padding int               `json:"padding,omitempty"`
	MaxZoom int               `json:"max_zoom,omitempty"`
	Center  *LatLng           `json:"center,omitempty"`
	Zoom    int               `json:"zoom,omitempty"`
}

// FocusTarget はビューポート移動の対象（点+ズーム、または範囲）
type FocusTarget struct {
	Point  *LatLng
	Zoom   int
	Bounds *orb.Bound
}

// Center は対象の中心座標を返す
func (t FocusTarget) Center() (LatLng, bool) {
	if t.Bounds != nil {
		return LatLngFromPoint(t.Bounds.Center()), true
	}
	if t.Point != nil {
		return *t.Point, true
	}
	return LatLng{}, false
}
