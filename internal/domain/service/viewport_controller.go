package service

import (
	"sync"
	"time"

	"github.com/paulmach/orb"

	"ProvinceMap-App/internal/domain/helper"
	"ProvinceMap-App/internal/domain/model"
)

// カメラ移動の定数
const (
	SettleEpsilon     = 0.0005
	SettleTimeout     = 1200 * time.Millisecond
	FitPadding        = 80
	RegionFitPadding  = 100
	InitialFitPadding = 50
	FitMaxZoom        = 14
	DefaultFlyZoom    = 14
)

// Camera はクライアント側の地図カメラ
type Camera interface {
	Center() model.LatLng
	FitBounds(bounds orb.Bound, padding, maxZoom int)
	FlyTo(center model.LatLng, zoom int)
	// Settled は移動完了の報告が無いままタイムアウトしたとき、指示した中心に着いたものとして扱う
	Settled(center model.LatLng)
}

// ViewportController は選択に応じてカメラを動かし、移動完了後に後続処理を1回だけ実行する。
// 全メソッドはセッションのイベントループ上から呼ぶ
type ViewportController struct {
	camera  Camera
	sched   Scheduler
	timeout time.Duration
	pending *pendingFocus
}

type pendingFocus struct {
	once  sync.Once
	timer Timer
	after func()
}

func (p *pendingFocus) fire() {
	p.once.Do(func() {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.after()
	})
}

// NewViewportController は新しいViewportControllerを作成する
func NewViewportController(camera Camera, sched Scheduler) *ViewportController {
	return &ViewportController{camera: camera, sched: sched, timeout: SettleTimeout}
}

// Focus は検索結果などの対象へカメラを移動する。
// 範囲指定はpadding 80・最大ズーム14でfit、点指定はズーム目安（既定14）でflyTo
func (v *ViewportController) Focus(target model.FocusTarget, after func()) {
	v.focus(target, FitPadding, after)
}

// FocusRegion は地図クリックや民族検索で選んだ地域の範囲へ移動する（padding 100）
func (v *ViewportController) FocusRegion(bounds orb.Bound, after func()) {
	v.focus(model.FocusTarget{Bounds: &bounds}, RegionFitPadding, after)
}

// FitInitial は初期表示で全地域が収まるようにする
func (v *ViewportController) FitInitial(extent orb.Bound) {
	v.cancelPending()
	v.camera.FitBounds(extent, InitialFitPadding, 0)
}

func (v *ViewportController) focus(target model.FocusTarget, padding int, after func()) {
	if after == nil {
		after = func() {}
	}
	// 新しい移動は待機中の後続処理を置き換える
	v.cancelPending()

	center, ok := target.Center()
	if !ok || helper.CloseEnough(center, v.camera.Center(), SettleEpsilon) {
		after()
		return
	}

	p := &pendingFocus{after: after}
	v.pending = p
	p.timer = v.sched.AfterFunc(v.timeout, func() {
		if v.pending != p {
			return
		}
		v.pending = nil
		v.camera.Settled(center)
		p.fire()
	})

	if target.Bounds != nil {
		v.camera.FitBounds(*target.Bounds, padding, FitMaxZoom)
		return
	}
	zoom := target.Zoom
	if zoom <= 0 {
		zoom = DefaultFlyZoom
	}
	v.camera.FlyTo(center, zoom)
}

// MoveEnded はクライアントからのカメラ移動完了通知。待機中の後続処理を実行する
func (v *ViewportController) MoveEnded() {
	p := v.pending
	if p == nil {
		return
	}
	v.pending = nil
	p.fire()
}

// Waiting はカメラ移動の完了待ちか
func (v *ViewportController) Waiting() bool {
	return v.pending != nil
}

func (v *ViewportController) cancelPending() {
	if v.pending == nil {
		return
	}
	if v.pending.timer != nil {
		v.pending.timer.Stop()
	}
	// 置き換えられた後続処理は実行しない
	v.pending.once.Do(func() {})
	v.pending = nil
}
