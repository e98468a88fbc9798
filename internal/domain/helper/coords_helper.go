package helper

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"ProvinceMap-App/internal/domain/model"
)

// ErrInvalidLatLng は"lat,lng"形式として解釈できない入力
var ErrInvalidLatLng = errors.New(`座標は"lat,lng"形式で指定してください`)

// ParseLatLng は"lat,lng"形式の文字列を座標に変換する
func ParseLatLng(input string) (model.LatLng, error) {
	parts := strings.Split(strings.TrimSpace(input), ",")
	if len(parts) != 2 {
		return model.LatLng{}, ErrInvalidLatLng
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.LatLng{}, ErrInvalidLatLng
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.LatLng{}, ErrInvalidLatLng
	}
	p := model.LatLng{Lat: lat, Lng: lng}
	if !IsValidLatLng(p) {
		return model.LatLng{}, ErrInvalidLatLng
	}
	return p, nil
}

// IsValidLatLng は緯度経度が有効範囲内か
func IsValidLatLng(p model.LatLng) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// CloseEnough は緯度・経度の差がどちらもeps未満か
func CloseEnough(a, b model.LatLng, eps float64) bool {
	return math.Abs(a.Lat-b.Lat) < eps && math.Abs(a.Lng-b.Lng) < eps
}
