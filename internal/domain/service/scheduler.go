package service

import "time"

// Timer は停止可能なタイマー
type Timer interface {
	Stop() bool
}

// Scheduler はセッションのイベントループへの投入口。
// AfterFuncとPostで渡した関数はすべてループ上で実行される
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Post(f func()) bool
}

// Observer は検索・経路の結果をメトリクスへ通知する。nilでもよい
type Observer interface {
	ObserveSearch(kind, outcome string)
	ObserveRoute(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveSearch(string, string)       {}
func (nopObserver) ObserveRoute(string, time.Duration) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
