// Package eventloop はセッション毎の単一スレッド実行キューを提供する。
// 状態の変更はすべてループ上で直列に実行され、タイマーや非同期処理の完了も
// Postでループに戻してから反映する。
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed はループ停止後に投入されたタスクに返す
var ErrClosed = errors.New("イベントループは停止済みです")

// Loop は投入順にタスクを1つのgoroutineで実行する
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

// New は新しいループを作成する。Runを呼ぶまでタスクは実行されない
func New(log zerolog.Logger) *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  log,
	}
}

// Run はctxがキャンセルされるかCloseされるまでタスクを実行する
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			for _, task := range l.drain() {
				l.runTask(task)
			}
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.queue
	l.queue = nil
	return tasks
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("イベントループのタスクでpanic")
		}
	}()
	task()
}

// Post はタスクを末尾に追加する。ループ上から呼んでもブロックしない
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call はタスクをループ上で実行し、完了まで待つ。ループ上から呼んではならない
func (l *Loop) Call(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc はd経過後にtaskをループへ投入するタイマーを返す
func (l *Loop) AfterFunc(d time.Duration, task func()) *time.Timer {
	return time.AfterFunc(d, func() { l.Post(task) })
}

// Close はループを停止する。未実行のタスクは破棄される
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Done はループ停止時にcloseされるチャネルを返す
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
