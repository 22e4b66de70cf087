package bot

import (
	"sync"
	"time"
)

// TaskStore — потокобезопасное in-memory хранилище активных анализов.
// В каждом чате одновременно выполняется не больше одного анализа.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[int64]time.Time // map[chatID]время запуска
	now   func() time.Time
}

// NewTaskStore создает новый экземпляр TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[int64]time.Time),
		now:   time.Now,
	}
}

// TryStart отмечает чат занятым. Возвращает false, если анализ в чате уже идет.
func (s *TaskStore) TryStart(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.tasks[chatID]; busy {
		return false
	}
	s.tasks[chatID] = s.now()
	return true
}

// Get возвращает время запуска активного анализа в чате.
func (s *TaskStore) Get(chatID int64) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	started, ok := s.tasks[chatID]
	return started, ok
}

// Delete освобождает чат.
func (s *TaskStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, chatID)
}

// Len возвращает число чатов с активным анализом.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
