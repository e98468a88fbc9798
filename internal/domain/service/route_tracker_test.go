package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProvinceMap-App/internal/domain/model"
)

type stubRouteProvider struct {
	results map[model.LatLng]*model.RouteResult
	gates   map[model.LatLng]chan struct{}
}

func (p *stubRouteProvider) GetDrivingRoute(_ context.Context, _, to model.LatLng) (*model.RouteResult, error) {
	if gate, ok := p.gates[to]; ok {
		<-gate
	}
	if r, ok := p.results[to]; ok {
		return r, nil
	}
	return nil, errors.New("ルートが見つかりません")
}

var (
	home   = model.LatLng{Lat: 10.25, Lng: 105.97}
	target = model.LatLng{Lat: 10.3, Lng: 106.0}
	other  = model.LatLng{Lat: 10.4, Lng: 106.1}
	broken = model.LatLng{Lat: 10.5, Lng: 106.2}
)

func newTestTracker(p *stubRouteProvider) (*RouteTracker, *fakeScheduler) {
	sched := newFakeScheduler()
	return NewRouteTracker(context.Background(), p, sched, nil, zerolog.Nop()), sched
}

func TestRouteTracker_SuccessReplacesWholesale(t *testing.T) {
	first := &model.RouteResult{Path: []model.LatLng{home, target}, DistanceMeters: 100}
	second := &model.RouteResult{Path: []model.LatLng{home, other}, DistanceMeters: 200}
	tr, sched := newTestTracker(&stubRouteProvider{results: map[model.LatLng]*model.RouteResult{target: first, other: second}})

	assert.Nil(t, tr.Current())
	tr.Request(home, target)
	sched.runPosted(t, 1)
	assert.Same(t, first, tr.Current())

	tr.Request(home, other)
	sched.runPosted(t, 1)
	assert.Same(t, second, tr.Current())
}

func TestRouteTracker_FailureKeepsPrevious(t *testing.T) {
	first := &model.RouteResult{Path: []model.LatLng{home, target}}
	tr, sched := newTestTracker(&stubRouteProvider{results: map[model.LatLng]*model.RouteResult{target: first}})

	var gotErr error
	tr.OnDone(func(_ *model.RouteResult, err error) { gotErr = err })

	tr.Request(home, target)
	sched.runPosted(t, 1)
	require.NoError(t, gotErr)

	tr.Request(home, broken)
	sched.runPosted(t, 1)
	assert.Error(t, gotErr)
	assert.Same(t, first, tr.Current())
}

func TestRouteTracker_OnlyLatestPublishes(t *testing.T) {
	slow := &model.RouteResult{DistanceMeters: 1}
	fast := &model.RouteResult{DistanceMeters: 2}
	gate := make(chan struct{})
	tr, sched := newTestTracker(&stubRouteProvider{
		results: map[model.LatLng]*model.RouteResult{target: slow, other: fast},
		gates:   map[model.LatLng]chan struct{}{target: gate},
	})

	tr.Request(home, target)
	tr.Request(home, other)
	sched.runPosted(t, 1)
	assert.Same(t, fast, tr.Current())

	close(gate)
	sched.runPosted(t, 1)
	assert.Same(t, fast, tr.Current())
}

func TestRouteTracker_Clear(t *testing.T) {
	r := &model.RouteResult{}
	gate := make(chan struct{})
	tr, sched := newTestTracker(&stubRouteProvider{
		results: map[model.LatLng]*model.RouteResult{target: r, other: r},
		gates:   map[model.LatLng]chan struct{}{other: gate},
	})

	tr.Request(home, target)
	sched.runPosted(t, 1)
	require.NotNil(t, tr.Current())

	tr.Request(home, other)
	tr.Clear()
	assert.Nil(t, tr.Current())

	close(gate)
	sched.runPosted(t, 1)
	assert.Nil(t, tr.Current(), "Clear前のリクエストは反映しない")
}
