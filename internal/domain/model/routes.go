package model

import "time"

// RouteResult は経路検索の結果。新しいリクエストが成功するたびに丸ごと差し替える
type RouteResult struct {
	Path            []LatLng `json:"path"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
}

// Duration は所要時間をtime.Durationで返す
func (r *RouteResult) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}

// RouteTarget は経路の目的地（最後に選択した検索結果）
type RouteTarget struct {
	Label  string `json:"label"`
	Coords LatLng `json:"coords"`
}
