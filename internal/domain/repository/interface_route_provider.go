package repository

import (
	"context"

	"ProvinceMap-App/internal/domain/model"
)

// RouteProvider は2地点間の車ルートを返す外部ルーティングサービス
type RouteProvider interface {
	GetDrivingRoute(ctx context.Context, from, to model.LatLng) (*model.RouteResult, error)
}
