package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound は存在しない（または期限切れの）セッション
var ErrSessionNotFound = errors.New("セッションが見つかりません")

// SessionGauge はアクティブなセッション数の記録先。nilでもよい
type SessionGauge interface {
	SetActiveSessions(n int)
}

// SessionStore はメモリ上のセッション一覧
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*MapSession

	deps        SessionDeps
	idleTimeout time.Duration
	gauge       SessionGauge
	log         zerolog.Logger
}

// NewSessionStore は新しいストアを作成する。idleTimeoutが0以下なら期限切れにしない
func NewSessionStore(deps SessionDeps, idleTimeout time.Duration, gauge SessionGauge) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*MapSession),
		deps:        deps,
		idleTimeout: idleTimeout,
		gauge:       gauge,
		log:         deps.Log,
	}
}

// Create はセッションを作成し、地図データの読み込みまで行う
func (st *SessionStore) Create(ctx context.Context) (*MapSession, error) {
	id := uuid.New().String()
	session := NewMapSession(id, st.deps)

	st.mu.Lock()
	st.sessions[id] = session
	n := len(st.sessions)
	st.mu.Unlock()
	st.setGauge(n)

	st.log.Info().Str("session_id", id).Msg("セッションを作成しました")

	if err := session.Load(ctx); err != nil {
		st.Delete(id)
		return nil, err
	}
	return session, nil
}

// Get はIDからセッションを取得する
func (st *SessionStore) Get(id string) (*MapSession, error) {
	st.mu.RLock()
	session, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete はセッションを閉じて削除する
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	session, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	n := len(st.sessions)
	st.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	session.Close()
	st.setGauge(n)
	return nil
}

// Len はセッション数
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep はnowの時点で放置期限を過ぎたセッションを閉じ、閉じた数を返す
func (st *SessionStore) Sweep(now time.Time) int {
	if st.idleTimeout <= 0 {
		return 0
	}
	var expired []*MapSession
	st.mu.Lock()
	for id, session := range st.sessions {
		if now.Sub(session.LastSeen()) > st.idleTimeout {
			expired = append(expired, session)
			delete(st.sessions, id)
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	for _, session := range expired {
		session.Close()
		st.log.Info().Str("session_id", session.ID()).Msg("放置されたセッションを閉じました")
	}
	if len(expired) > 0 {
		st.setGauge(n)
	}
	return len(expired)
}

// RunJanitor はctxが終わるまで定期的にSweepする
func (st *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.Sweep(now)
		}
	}
}

// CloseAll は全セッションを閉じる（シャットダウン用）
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*MapSession)
	st.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
	st.setGauge(0)
}

func (st *SessionStore) setGauge(n int) {
	if st.gauge != nil {
		st.gauge.SetActiveSessions(n)
	}
}
