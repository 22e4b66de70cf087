package router

import "sync/atomic"

// RoundRobinStrategy реализует стратегию выбора "по кругу" (Round Robin).
type RoundRobinStrategy struct {
	// currentIndex хранит индекс последнего выбранного экземпляра.
	currentIndex uint32
}

// NewRoundRobinStrategy создает новую Round Robin стратегию.
func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{}
}

// Next возвращает следующий экземпляр в списке, инкрементируя индекс по кругу.
func (s *RoundRobinStrategy) Next(backends []Backend) (Backend, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	idx := atomic.AddUint32(&s.currentIndex, 1) - 1
	return backends[idx%uint32(len(backends))], nil
}
