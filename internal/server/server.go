package server

import (
	"chat-analyzer/internal/adapters/parser"
	"chat-analyzer/internal/cache"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/pkg/config"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ChatAnalyzer определяет интерфейс для варианта использования, который анализирует чаты.
type ChatAnalyzer interface {
	AnalyzeChat(ctx context.Context, content string) (*domain.AnalysisResult, error)
}

// Server представляет HTTP-сервер сервиса анализа
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	cacheStore *cache.CacheStore
	analyzer   ChatAnalyzer
	now        func() time.Time
}

// New создает новый экземпляр Server
func New(cfg *config.Config, analyzer ChatAnalyzer, cacheStore *cache.CacheStore) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		cacheStore: cacheStore,
		analyzer:   analyzer,
		now:        time.Now,
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	chiRouter.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/analyze", s.handleAnalyzeFile)
		r.Post("/analyze/text", s.handleAnalyzeText)
		r.Post("/analyze/upload", s.handleAnalyzeUpload)
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// StartBackground запускает очистку кэша до отмены ctx
func (s *Server) StartBackground(ctx context.Context) {
	s.cacheStore.StartCleanupTicker(ctx, s.cfg.Processing.CleanupInterval)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.HealthStatus{
		Status:    "UP",
		Message:   "Chat Analyzer service is running",
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	content, ok := s.readChatFile(w, r)
	if !ok {
		return
	}
	if content == nil {
		s.writeError(w, http.StatusBadRequest, MsgFileRequired)
		return
	}
	s.analyze(w, r, string(content))
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize()+textRequestOverhead)

	var req domain.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest, s.sizeLimitMessage())
			return
		}
		s.writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if isBlank(req.Content) {
		s.writeError(w, http.StatusBadRequest, MsgContentEmpty)
		return
	}
	s.analyze(w, r, req.Content)
}

// handleAnalyzeUpload принимает либо файл chatFile, либо поле формы content.
func (s *Server) handleAnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	// Пустой chatFile считается отсутствующим: тогда используется поле content
	if files := r.MultipartForm.File[FileField]; len(files) > 0 && files[0].Size > 0 {
		content, ok := s.readChatFile(w, r)
		if !ok {
			return
		}
		s.analyze(w, r, string(content))
		return
	}

	text := r.FormValue("content")
	if text == "" {
		s.writeError(w, http.StatusBadRequest, MsgEitherParam)
		return
	}
	if isBlank(text) {
		s.writeError(w, http.StatusBadRequest, MsgContentEmpty)
		return
	}
	s.analyze(w, r, text)
}

// parseMultipart разбирает форму с ограничением размера тела.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest, s.sizeLimitMessage())
			return false
		}
		s.writeError(w, http.StatusBadRequest, MsgInvalidForm)
		return false
	}
	return true
}

// readChatFile возвращает содержимое chatFile или nil, если поле не передано.
// При ошибке проверки ответ уже записан и ok == false.
func (s *Server) readChatFile(w http.ResponseWriter, r *http.Request) (content []byte, ok bool) {
	file, header, err := r.FormFile(FileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, MsgInvalidForm)
		return nil, false
	}
	defer file.Close()

	if msg := s.validateUpload(header.Filename, header.Size); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "error", err, "file_name", header.Filename)
		s.writeError(w, http.StatusInternalServerError, analysisFailed(err))
		return nil, false
	}
	if isBlank(string(data)) {
		s.writeError(w, http.StatusBadRequest, MsgFileContentEmpty)
		return nil, false
	}

	slog.Info("chat file received", "file_name", header.Filename, "size", header.Size, "request_id", middleware.GetReqID(r.Context()))
	return data, true
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, content string) {
	result, err := s.analyzer.AnalyzeChat(r.Context(), content)
	if errors.Is(err, parser.ErrNoMessages) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("chat analysis failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		s.writeError(w, http.StatusInternalServerError, analysisFailed(err))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, domain.ErrorResponse{
		Error:     message,
		Status:    statusText(status),
		Timestamp: s.now().Format(time.RFC3339),
	})
}
