package session

import (
	"chat-analyzer/internal/ports"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	session   *Session
	expiresAt time.Time
}

// Store управляет сессиями фронтенда с ограниченным временем жизни.
type Store struct {
	service  ports.AnalysisService
	ttl      time.Duration
	sessions map[string]*entry
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewStore создает хранилище; каждая новая сессия получает service для запросов.
func NewStore(service ports.AnalysisService, ttl time.Duration) *Store {
	return &Store{
		service:  service,
		ttl:      ttl,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Get возвращает живую сессию по идентификатору и продлевает ее срок.
func (st *Store) Get(id string) (*Session, bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	e, ok := st.sessions[id]
	if !ok || st.now().After(e.expiresAt) {
		return nil, false
	}
	e.expiresAt = st.now().Add(st.ttl)
	return e.session, true
}

// GetOrCreate возвращает сессию id или создает новую со сгенерированным идентификатором.
// created сообщает, что идентификатор нужно заново передать клиенту.
func (st *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}

	st.mutex.Lock()
	defer st.mutex.Unlock()

	s := New(uuid.NewString(), st.service)
	st.sessions[s.ID] = &entry{session: s, expiresAt: st.now().Add(st.ttl)}
	return s, true
}

// Len возвращает число хранимых сессий.
func (st *Store) Len() int {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return len(st.sessions)
}

// CleanupExpired удаляет просроченные сессии и отменяет их запросы.
func (st *Store) CleanupExpired() {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	now := st.now()
	for id, e := range st.sessions {
		if now.After(e.expiresAt) {
			e.session.Close()
			delete(st.sessions, id)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных сессий
func (st *Store) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.CleanupExpired()
			}
		}
	}()
}
