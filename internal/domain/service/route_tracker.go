package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
)

const routeRequestTimeout = 15 * time.Second

// RouteTracker は現在の経路を1本だけ保持する。
// 成功したら丸ごと差し替え、失敗時は前の経路をそのまま残す。
// 最後に開始したリクエストの結果だけを反映する
type RouteTracker struct {
	provider repository.RouteProvider
	sched    Scheduler
	baseCtx  context.Context
	observer Observer
	log      zerolog.Logger

	// ループ上でのみ触る
	seq    uint64
	cancel context.CancelFunc
	onDone func(*model.RouteResult, error)

	current atomic.Pointer[model.RouteResult]
}

// NewRouteTracker は新しいRouteTrackerを作成する
func NewRouteTracker(baseCtx context.Context, provider repository.RouteProvider, sched Scheduler, observer Observer, log zerolog.Logger) *RouteTracker {
	return &RouteTracker{
		provider: provider,
		sched:    sched,
		baseCtx:  baseCtx,
		observer: observerOrNop(observer),
		log:      log,
	}
}

// OnDone は経路リクエスト完了時（最新のものだけ）に呼ばれる関数を設定する
func (t *RouteTracker) OnDone(fn func(*model.RouteResult, error)) {
	t.onDone = fn
}

// Current は現在の経路を返す（無ければnil）。どのgoroutineから呼んでもよい
func (t *RouteTracker) Current() *model.RouteResult {
	return t.current.Load()
}

// Request は経路を非同期に取得する。ループ上から呼ぶ
func (t *RouteTracker) Request(from, to model.LatLng) {
	t.seq++
	seq := t.seq
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithTimeout(t.baseCtx, routeRequestTimeout)
	t.cancel = cancel

	go func() {
		defer cancel()
		started := time.Now()
		route, err := t.provider.GetDrivingRoute(ctx, from, to)
		elapsed := time.Since(started)
		t.sched.Post(func() {
			if seq != t.seq {
				t.observer.ObserveRoute("stale", elapsed)
				return
			}
			t.cancel = nil
			if err != nil {
				t.log.Warn().Err(err).Str("from", from.String()).Str("to", to.String()).Msg("経路取得に失敗、前の経路を維持します")
				t.observer.ObserveRoute("error", elapsed)
			} else {
				t.current.Store(route)
				t.observer.ObserveRoute("ok", elapsed)
			}
			if t.onDone != nil {
				t.onDone(route, err)
			}
		})
	}()
}

// Clear は表示中の経路を消し、送信中のリクエストも無効にする
func (t *RouteTracker) Clear() {
	t.seq++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.current.Store(nil)
}
