// Package router распределяет запросы анализа по нескольким экземплярам сервиса
// и исключает из ротации экземпляры, которые перестали отвечать.
package router

import (
	"chat-analyzer/internal/apiclient"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoBackends возвращается, когда стратегии не из чего выбирать.
var ErrNoBackends = errors.New("no analysis backends available")

const defaultCheckTimeout = 5 * time.Second

// Backend — один экземпляр сервиса анализа.
type Backend interface {
	ports.AnalysisService
	ID() string
}

// Strategy определяет стратегию выбора экземпляра.
type Strategy interface {
	Next(backends []Backend) (Backend, error)
}

// Option определяет функциональную опцию для конфигурации роутера.
type Option func(*Router)

// WithBackends задает экземпляры сервиса в порядке приоритета.
func WithBackends(backends ...Backend) Option {
	return func(r *Router) {
		r.backends = append(r.backends, backends...)
	}
}

// WithHealthCheckInterval — опция для установки интервала проверки работоспособности.
func WithHealthCheckInterval(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.healthCheckInterval = d
		}
	}
}

// WithStrategy — опция для установки стратегии выбора экземпляра.
func WithStrategy(s Strategy) Option {
	return func(r *Router) {
		if s != nil {
			r.strategy = s
		}
	}
}

// WithLogger — опция для установки логгера.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// Router реализует ports.AnalysisService поверх пула экземпляров.
// Неудачный запрос не повторяется: роутер лишь проверяет экземпляр
// и при необходимости исключает его из выбора для следующих запросов.
type Router struct {
	mu        sync.RWMutex
	backends  []Backend
	unhealthy map[string]bool
	strategy  Strategy
	log       *slog.Logger

	healthCheckInterval time.Duration
	checkTimeout        time.Duration
	ticker              *time.Ticker
	done                chan struct{}
	stopped             bool
	stopOnce            sync.Once
	wg                  sync.WaitGroup
}

var _ ports.AnalysisService = (*Router)(nil)

// NewRouter создает роутер и запускает фоновую проверку до Stop или отмены ctx.
func NewRouter(ctx context.Context, opts ...Option) (*Router, error) {
	r := &Router{
		unhealthy:           make(map[string]bool),
		strategy:            NewRoundRobinStrategy(),
		healthCheckInterval: 30 * time.Second,
		checkTimeout:        defaultCheckTimeout,
		done:                make(chan struct{}),
		log:                 slog.Default().With("component", "router"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if len(r.backends) == 0 {
		return nil, errors.New("no backends provided to router")
	}

	r.ticker = time.NewTicker(r.healthCheckInterval)
	r.wg.Add(1)
	go r.healthCheckLoop(ctx)

	return r, nil
}

// AnalyzeFile отправляет файл выбранному экземпляру.
func (r *Router) AnalyzeFile(ctx context.Context, file *domain.ChatFile) (*domain.AnalysisResult, error) {
	b, err := r.pick(ctx)
	if err != nil {
		return nil, err
	}
	res, err := b.AnalyzeFile(ctx, file)
	r.handleError(ctx, b, err)
	return res, err
}

// AnalyzeText отправляет текст выбранному экземпляру.
func (r *Router) AnalyzeText(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	b, err := r.pick(ctx)
	if err != nil {
		return nil, err
	}
	res, err := b.AnalyzeText(ctx, content)
	r.handleError(ctx, b, err)
	return res, err
}

// Health запрашивает состояние выбранного экземпляра.
func (r *Router) Health(ctx context.Context) (*domain.HealthStatus, error) {
	b, err := r.pick(ctx)
	if err != nil {
		return nil, err
	}
	status, err := b.Health(ctx)
	if err != nil && ctx.Err() == nil {
		r.setHealthy(b.ID(), false)
	}
	return status, err
}

// Healthy возвращает идентификаторы экземпляров, участвующих в ротации.
func (r *Router) Healthy() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		if !r.unhealthy[b.ID()] {
			ids = append(ids, b.ID())
		}
	}
	return ids
}

// Stop останавливает фоновую проверку работоспособности.
func (r *Router) Stop() {
	r.stopOnce.Do(func() {
		r.log.Info("stopping router...")
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		r.ticker.Stop()
		close(r.done)
	})
	r.wg.Wait()
}

// pick выбирает экземпляр среди работоспособных. Если исключены все,
// выбор идет из полного списка: запрос к недоступному сервису вернет ту же ошибку.
func (r *Router) pick(ctx context.Context) (Backend, error) {
	r.mu.RLock()
	candidates := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		if !r.unhealthy[b.ID()] {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, r.backends...)
	}
	strategy := r.strategy
	r.mu.RUnlock()

	b, err := strategy.Next(candidates)
	if err != nil {
		r.log.ErrorContext(ctx, "Strategy failed to get next backend", "error", err)
		return nil, fmt.Errorf("strategy failed to get next backend: %w", err)
	}
	r.log.DebugContext(ctx, "Backend selected by strategy", "backend", b.ID())
	return b, nil
}

// handleError запускает проверку экземпляра после сбоя транспорта или ответа 5xx.
// Ошибки приложения и отмена запроса пользователем экземпляр не затрагивают.
func (r *Router) handleError(ctx context.Context, b Backend, err error) {
	if !isBackendFailure(err) || ctx.Err() != nil {
		return
	}
	r.log.WarnContext(ctx, "analysis call failed", "backend", b.ID(), "error", err)

	// После Stop новые проверки не запускаются
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.forceHealthCheck(b)
	}()
}

func isBackendFailure(err error) bool {
	var reqErr *apiclient.RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == 0 || reqErr.StatusCode >= 500
}

func (r *Router) healthCheckLoop(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case t := <-r.ticker.C:
			r.log.Debug("Health check ticker fired", "time", t)
			r.checkUnhealthyBackends()
		case <-ctx.Done():
			r.ticker.Stop()
			return
		case <-r.done:
			r.log.Info("Health check loop is stopping.")
			return
		}
	}
}

// checkUnhealthyBackends возвращает в ротацию восстановившиеся экземпляры.
func (r *Router) checkUnhealthyBackends() {
	r.mu.RLock()
	toCheck := make([]Backend, 0, len(r.unhealthy))
	for _, b := range r.backends {
		if r.unhealthy[b.ID()] {
			toCheck = append(toCheck, b)
		}
	}
	r.mu.RUnlock()

	for _, b := range toCheck {
		if err := r.check(b); err == nil {
			r.log.Info("backend recovered, moving back to rotation", "backend", b.ID())
			r.setHealthy(b.ID(), true)
		} else {
			r.log.Debug("Backend remains unhealthy", "backend", b.ID(), "reason", err)
		}
	}
}

// forceHealthCheck проверяет экземпляр после ошибки и при неудаче исключает его.
func (r *Router) forceHealthCheck(b Backend) {
	if err := r.check(b); err != nil {
		r.log.Warn("backend failed health check, removing from rotation", "backend", b.ID(), "reason", err)
		r.setHealthy(b.ID(), false)
	}
}

func (r *Router) check(b Backend) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.checkTimeout)
	defer cancel()
	_, err := b.Health(ctx)
	return err
}

func (r *Router) setHealthy(id string, healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if healthy {
		delete(r.unhealthy, id)
	} else {
		r.unhealthy[id] = true
	}
	r.log.Info("backend pool updated", "backend", id, "healthy", healthy,
		"unhealthy_count", len(r.unhealthy), "total", len(r.backends))
}

// NewClientPool создает роутер над apiclient.Client для каждого адреса.
func NewClientPool(ctx context.Context, urls []string, interval time.Duration, logger *slog.Logger, opts ...apiclient.Option) (*Router, error) {
	backends := make([]Backend, 0, len(urls))
	for _, u := range urls {
		backends = append(backends, apiclient.NewClient(u, opts...))
	}
	return NewRouter(ctx,
		WithBackends(backends...),
		WithHealthCheckInterval(interval),
		WithLogger(logger),
	)
}
