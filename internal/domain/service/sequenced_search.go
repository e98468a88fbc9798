package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce 入力が止まってから検索を送るまでの待ち時間
const DefaultDebounce = 300 * time.Millisecond

const searchRequestTimeout = 10 * time.Second

// SearchFunc は外部検索APIを呼び出す関数
type SearchFunc[T any] func(ctx context.Context, query string) ([]T, error)

// SequencedSearch はデバウンスとシーケンス番号で最新の入力に対する結果だけを反映する検索。
// SetQuery・Clearはセッションのイベントループ上から呼ぶこと
type SequencedSearch[T any] struct {
	kind     string
	fetch    SearchFunc[T]
	sched    Scheduler
	debounce time.Duration
	baseCtx  context.Context
	observer Observer
	log      zerolog.Logger

	// 以下はループ上でのみ触る
	seq      uint64
	inputGen uint64
	timer    Timer
	cancel   context.CancelFunc
	query    string

	results atomic.Pointer[[]T]
}

// NewSequencedSearch は新しいSequencedSearchを作成する。
// baseCtxはセッションの寿命で、キャンセルされると送信中の検索も中断される
func NewSequencedSearch[T any](baseCtx context.Context, kind string, fetch SearchFunc[T], sched Scheduler, debounce time.Duration, observer Observer, log zerolog.Logger) *SequencedSearch[T] {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	s := &SequencedSearch[T]{
		kind:     kind,
		fetch:    fetch,
		sched:    sched,
		debounce: debounce,
		baseCtx:  baseCtx,
		observer: observerOrNop(observer),
		log:      log.With().Str("search", kind).Logger(),
	}
	empty := []T{}
	s.results.Store(&empty)
	return s
}

// SetQuery は入力を受け付ける。空白だけの入力は即座に結果を消し、送信中の検索も無効にする
func (s *SequencedSearch[T]) SetQuery(query string) {
	s.stopTimer()
	s.inputGen++
	gen := s.inputGen
	s.query = query
	if strings.TrimSpace(query) == "" {
		s.invalidate()
		empty := []T{}
		s.results.Store(&empty)
		return
	}
	s.timer = s.sched.AfterFunc(s.debounce, func() {
		// 停止前に発火済みだったタイマーは無視する
		if gen != s.inputGen {
			return
		}
		s.timer = nil
		s.dispatch(query)
	})
}

// Clear は入力を空にする
func (s *SequencedSearch[T]) Clear() {
	s.SetQuery("")
}

// Query は最後に受け付けた入力を返す
func (s *SequencedSearch[T]) Query() string {
	return s.query
}

// Results は最新の結果を返す。どのgoroutineから呼んでもよい
func (s *SequencedSearch[T]) Results() []T {
	return *s.results.Load()
}

// Seq は最後に送信した検索のシーケンス番号
func (s *SequencedSearch[T]) Seq() uint64 {
	return s.seq
}

func (s *SequencedSearch[T]) dispatch(query string) {
	s.invalidate()
	s.seq++
	seq := s.seq

	ctx, cancel := context.WithTimeout(s.baseCtx, searchRequestTimeout)
	s.cancel = cancel
	s.observer.ObserveSearch(s.kind, "dispatched")

	go func() {
		defer cancel()
		results, err := s.fetch(ctx, strings.TrimSpace(query))
		s.sched.Post(func() {
			if seq != s.seq {
				s.observer.ObserveSearch(s.kind, "stale")
				return
			}
			s.cancel = nil
			if err != nil {
				s.log.Warn().Err(err).Str("query", query).Msg("検索に失敗、結果を空にします")
				s.observer.ObserveSearch(s.kind, "error")
				results = []T{}
			} else {
				s.observer.ObserveSearch(s.kind, "ok")
			}
			if results == nil {
				results = []T{}
			}
			s.results.Store(&results)
		})
	}()
}

// invalidate は送信中の検索を無効にする
func (s *SequencedSearch[T]) invalidate() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SequencedSearch[T]) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

