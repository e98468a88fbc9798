package usecase

import (
	"context"

	"ProvinceMap-App/internal/domain/model"
)

// SearchSnapshot はサーバー側テキスト検索の入力と最新結果
type SearchSnapshot[T any] struct {
	Query   string `json:"query"`
	Results []T    `json:"results"`
}

// Snapshot はクライアントが画面を描き直すためのセッション状態一式
type Snapshot struct {
	ID              string                                   `json:"id"`
	Status          LoadStatus                               `json:"status"`
	Message         string                                   `json:"message,omitempty"`
	Degraded        []string                                 `json:"degraded"`
	Filters         *model.FilterState                       `json:"filters"`
	MapQuery        string                                   `json:"map_query"`
	SelectedRegion  *model.Region                            `json:"selected_region"`
	RegionDetail    []model.EthnicityCount                   `json:"region_detail"`
	RouteTarget     *model.RouteTarget                       `json:"route_target"`
	UserLocation    *model.LatLng                            `json:"user_location"`
	RouteStartInput string                                   `json:"route_start_input"`
	Route           *model.RouteResult                       `json:"route"`
	Popup           *model.Popup                             `json:"popup"`
	Camera          *model.CameraCommand                     `json:"camera"`
	CameraWaiting   bool                                     `json:"camera_waiting"`
	Alert           *Alert                                   `json:"alert"`
	EthnicitySearch SearchSnapshot[model.EthnicitySearchHit] `json:"ethnicity_search"`
	RegionSearch    SearchSnapshot[model.RegionSearchHit]    `json:"region_search"`
	BaseLayer       model.BaseLayer                          `json:"base_layer"`
	Geolocation     GeolocationOptions                       `json:"geolocation"`
}

// Snapshot はループ上で状態を一括で読み出す
func (s *MapSession) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.call(ctx, func() {
		degraded := append([]string{}, s.degraded...)
		detail := append([]model.EthnicityCount{}, s.regionDetail...)
		snap = &Snapshot{
			ID:              s.id,
			Status:          s.status,
			Message:         s.message,
			Degraded:        degraded,
			Filters:         s.filters.State(),
			MapQuery:        s.mapQuery,
			SelectedRegion:  s.selected.Load(),
			RegionDetail:    detail,
			RouteTarget:     s.routeTarget,
			UserLocation:    s.userLocation,
			RouteStartInput: s.startInput,
			Route:           s.route.Current(),
			Popup:           s.popup,
			Camera:          s.camera.lastCommand(),
			CameraWaiting:   s.viewport.Waiting(),
			Alert:           s.alert,
			EthnicitySearch: SearchSnapshot[model.EthnicitySearchHit]{
				Query:   s.ethnicitySearch.Query(),
				Results: s.ethnicitySearch.Results(),
			},
			RegionSearch: SearchSnapshot[model.RegionSearchHit]{
				Query:   s.regionSearch.Query(),
				Results: s.regionSearch.Results(),
			},
			BaseLayer:   s.baseLayer,
			Geolocation: DefaultGeolocation,
		}
	})
	return snap, err
}
