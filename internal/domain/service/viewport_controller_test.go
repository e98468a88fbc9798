package service

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/model"
)

type cameraCall struct {
	kind    string
	bounds  orb.Bound
	padding int
	maxZoom int
	center  model.LatLng
	zoom    int
}

type fakeCamera struct {
	center  model.LatLng
	calls   []cameraCall
	settled int
}

func (c *fakeCamera) Center() model.LatLng { return c.center }

func (c *fakeCamera) Settled(center model.LatLng) {
	c.center = center
	c.settled++
}

func (c *fakeCamera) FitBounds(b orb.Bound, padding, maxZoom int) {
	c.calls = append(c.calls, cameraCall{kind: "fit", bounds: b, padding: padding, maxZoom: maxZoom})
}

func (c *fakeCamera) FlyTo(center model.LatLng, zoom int) {
	c.calls = append(c.calls, cameraCall{kind: "fly", center: center, zoom: zoom})
}

func newTestViewport() (*ViewportController, *fakeCamera, *fakeScheduler) {
	cam := &fakeCamera{center: model.LatLng{Lat: 10.25, Lng: 105.97}}
	sched := newFakeScheduler()
	return NewViewportController(cam, sched), cam, sched
}

func TestFocus_WithinEpsilonRunsSynchronously(t *testing.T) {
	v, cam, sched := newTestViewport()
	target := model.LatLng{Lat: 10.2504, Lng: 105.9696}

	ran := 0
	v.Focus(model.FocusTarget{Point: &target, Zoom: 16}, func() { ran++ })

	assert.Equal(t, 1, ran)
	assert.Empty(t, cam.calls)
	assert.Empty(t, sched.activeTimers())
	assert.False(t, v.Waiting())
}

func TestFocus_PointFlyToAndMoveEnd(t *testing.T) {
	v, cam, sched := newTestViewport()
	target := model.LatLng{Lat: 10.3, Lng: 106.0}

	ran := 0
	v.Focus(model.FocusTarget{Point: &target, Zoom: 16}, func() { ran++ })

	require.Len(t, cam.calls, 1)
	assert.Equal(t, "fly", cam.calls[0].kind)
	assert.Equal(t, 16, cam.calls[0].zoom)
	assert.Equal(t, 0, ran)
	require.Len(t, sched.activeTimers(), 1)
	assert.Equal(t, SettleTimeout, sched.activeTimers()[0].d)

	v.MoveEnded()
	assert.Equal(t, 1, ran)
	assert.Empty(t, sched.activeTimers(), "移動完了でタイマーは停止")

	// 2回目の完了通知とタイマーは無視される
	v.MoveEnded()
	sched.fireTimers()
	assert.Equal(t, 1, ran)
}

func TestFocus_DefaultZoom(t *testing.T) {
	v, cam, _ := newTestViewport()
	target := model.LatLng{Lat: 10.3, Lng: 106.0}
	v.Focus(model.FocusTarget{Point: &target}, nil)

	require.Len(t, cam.calls, 1)
	assert.Equal(t, DefaultFlyZoom, cam.calls[0].zoom)
}

func TestFocus_BoundsFitAndFallbackTimer(t *testing.T) {
	v, cam, sched := newTestViewport()
	bounds := orb.Bound{Min: orb.Point{106.0, 10.3}, Max: orb.Point{106.1, 10.4}}

	ran := 0
	v.Focus(model.FocusTarget{Bounds: &bounds}, func() { ran++ })

	require.Len(t, cam.calls, 1)
	assert.Equal(t, "fit", cam.calls[0].kind)
	assert.Equal(t, FitPadding, cam.calls[0].padding)
	assert.Equal(t, FitMaxZoom, cam.calls[0].maxZoom)

	assert.Equal(t, 1, sched.fireTimers())
	assert.Equal(t, 1, ran)
	assert.False(t, v.Waiting())

	v.MoveEnded()
	assert.Equal(t, 1, ran)
}

func TestFocus_FallbackTimerUpdatesCameraCenter(t *testing.T) {
	v, cam, sched := newTestViewport()
	home := cam.center
	target := model.LatLng{Lat: 10.3, Lng: 106.0}

	v.Focus(model.FocusTarget{Point: &target}, nil)
	require.Equal(t, 1, sched.fireTimers())
	assert.Equal(t, 1, cam.settled)
	assert.Equal(t, target, cam.center)

	// 元の位置へ戻す選択はカメラ移動になる
	ran := 0
	v.Focus(model.FocusTarget{Point: &home}, func() { ran++ })
	require.Len(t, cam.calls, 2)
	assert.Equal(t, "fly", cam.calls[1].kind)
	assert.Equal(t, home, cam.calls[1].center)
	assert.Equal(t, 0, ran)
	assert.True(t, v.Waiting())
}

func TestFocus_MoveEndDoesNotSettle(t *testing.T) {
	v, cam, sched := newTestViewport()
	target := model.LatLng{Lat: 10.3, Lng: 106.0}

	v.Focus(model.FocusTarget{Point: &target}, nil)
	v.MoveEnded()
	sched.fireTimers()
	assert.Equal(t, 0, cam.settled)
}

func TestFocus_TimerFiredAfterStopIsIgnored(t *testing.T) {
	v, _, sched := newTestViewport()
	target := model.LatLng{Lat: 10.3, Lng: 106.0}

	ran := 0
	v.Focus(model.FocusTarget{Point: &target}, func() { ran++ })
	timer := sched.activeTimers()[0]

	v.MoveEnded()
	// 停止直前に発火してループに積まれていたケース
	timer.f()
	assert.Equal(t, 1, ran)
}

func TestFocus_NewFocusReplacesPending(t *testing.T) {
	v, _, sched := newTestViewport()
	first := model.LatLng{Lat: 10.3, Lng: 106.0}
	second := model.LatLng{Lat: 10.4, Lng: 106.1}

	var got []string
	v.Focus(model.FocusTarget{Point: &first}, func() { got = append(got, "first") })
	v.Focus(model.FocusTarget{Point: &second}, func() { got = append(got, "second") })

	v.MoveEnded()
	sched.fireTimers()
	assert.Equal(t, []string{"second"}, got)
}

func TestFocus_NoCenterRunsImmediately(t *testing.T) {
	v, cam, _ := newTestViewport()
	ran := false
	v.Focus(model.FocusTarget{}, func() { ran = true })
	assert.True(t, ran)
	assert.Empty(t, cam.calls)
}

func TestFocusRegion_UsesRegionPadding(t *testing.T) {
	v, cam, _ := newTestViewport()
	v.FocusRegion(orb.Bound{Min: orb.Point{106.0, 10.3}, Max: orb.Point{106.1, 10.4}}, nil)
	require.Len(t, cam.calls, 1)
	assert.Equal(t, RegionFitPadding, cam.calls[0].padding)
	assert.Equal(t, FitMaxZoom, cam.calls[0].maxZoom)
}
