// Package session хранит состояние одного пользователя фронтенда:
// выбранный файл, стадию запроса и последний результат.
package session

import (
	"chat-analyzer/internal/collector"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"context"
	"errors"
	"sync"
)

// ErrSuperseded возвращается запросу, который был вытеснен более новым действием в той же сессии.
var ErrSuperseded = errors.New("request superseded by a newer action")

// State — стадия обработки последнего действия пользователя.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Snapshot — согласованный срез состояния сессии для отрисовки.
type Snapshot struct {
	State   State
	File    *domain.FileInfo
	Result  *domain.AnalysisResult
	Message string
}

// Session — модель представления одного пользователя.
// Новое действие отменяет незавершенный запрос предыдущего; результат вытесненного запроса отбрасывается.
type Session struct {
	ID string

	service   ports.AnalysisService
	selection *collector.Selection

	mu      sync.Mutex
	state   State
	result  *domain.AnalysisResult
	message string
	gen     uint64
	cancel  context.CancelFunc
}

// New создает сессию в состоянии idle.
func New(id string, service ports.AnalysisService) *Session {
	return &Session{
		ID:        id,
		service:   service,
		selection: collector.NewSelection(),
		state:     StateIdle,
	}
}

// Select выбирает файл. Отклоненный файл не меняет текущий выбор и последний результат,
// а сообщение об ошибке попадает в область статуса.
func (s *Session) Select(file *domain.ChatFile) (domain.FileInfo, error) {
	info, err := s.selection.Select(file)
	if err != nil {
		s.reject(err)
		return domain.FileInfo{}, err
	}
	return info, nil
}

// AnalyzeSelected отправляет выбранный файл. Без выбора запрос не выполняется.
func (s *Session) AnalyzeSelected(ctx context.Context) (*domain.AnalysisResult, error) {
	file, err := s.selection.Require()
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return s.run(ctx, func(ctx context.Context) (*domain.AnalysisResult, error) {
		return s.service.AnalyzeFile(ctx, file)
	})
}

// AnalyzeFile отправляет файл напрямую, минуя выбор (вариант с JSON-выводом).
func (s *Session) AnalyzeFile(ctx context.Context, file *domain.ChatFile) (*domain.AnalysisResult, error) {
	if file == nil {
		err := &collector.ValidationError{Message: collector.MsgNoFileSelected}
		s.fail(err)
		return nil, err
	}
	if err := collector.ValidateFileName(file.Name); err != nil {
		s.fail(err)
		return nil, err
	}
	return s.run(ctx, func(ctx context.Context) (*domain.AnalysisResult, error) {
		return s.service.AnalyzeFile(ctx, file)
	})
}

// AnalyzeText отправляет вставленный текст, предварительно обрезав пробелы.
func (s *Session) AnalyzeText(ctx context.Context, raw string) (*domain.AnalysisResult, error) {
	content, err := collector.PrepareText(raw)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return s.run(ctx, func(ctx context.Context) (*domain.AnalysisResult, error) {
		return s.service.AnalyzeText(ctx, content)
	})
}

// Snapshot возвращает текущее состояние.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:   s.state,
		Result:  s.result,
		Message: s.message,
	}
	if info, ok := s.selection.Info(); ok {
		snap.File = &info
	}
	return snap
}

// Close отменяет незавершенный запрос.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
}

func (s *Session) run(ctx context.Context, call func(ctx context.Context) (*domain.AnalysisResult, error)) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	gen := s.supersede()
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateLoading
	s.message = ""
	s.mu.Unlock()

	result, err := call(reqCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		cancel()
		return nil, ErrSuperseded
	}
	cancel()
	s.cancel = nil

	if err != nil {
		s.state = StateError
		s.message = collector.UserMessage(err)
		s.result = nil
		return nil, err
	}
	s.state = StateSuccess
	s.result = result
	return result, nil
}

// fail фиксирует ошибку ввода. Это тоже новое действие, поэтому прежний запрос вытесняется.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
	s.state = StateError
	s.message = collector.UserMessage(err)
	s.result = nil
}

// reject показывает ошибку выбора, не трогая результат и незавершенный запрос.
func (s *Session) reject(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		s.state = StateError
	}
	s.message = collector.UserMessage(err)
}

// supersede начинает новое поколение и отменяет текущий запрос. Вызывается под mu.
func (s *Session) supersede() uint64 {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.gen
}
