// Package web обслуживает браузерный фронтенд: панель результатов и страницу с сырым JSON.
package web

import (
	"bytes"
	"chat-analyzer/internal/adapters/exporter"
	"chat-analyzer/internal/adapters/source"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/ports"
	"chat-analyzer/internal/render"
	"chat-analyzer/internal/session"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// SessionCookie — имя cookie с идентификатором сессии.
	SessionCookie = "chat_analyzer_session"
	fileField     = "chatFile"
	contentField  = "content"

	multipartMemory = 1 << 20
	xlsxType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type pageData struct {
	Snapshot  session.Snapshot
	View      render.View
	Loading   bool
	Failed    bool
	HasResult bool
	JSON      string
	Content   string
}

// Server представляет HTTP-сервер фронтенда
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	service    ports.AnalysisService
	sessions   *session.Store
	logger     *slog.Logger
}

// New создает новый экземпляр Server. service выполняет запросы к сервису анализа.
func New(cfg *config.Config, service ports.AnalysisService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		sessions: session.NewStore(service, cfg.Frontend.SessionTTL),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Post("/select", s.handleSelect)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/export", s.handleExport)
	r.Get("/raw", s.handleRaw)
	r.Post("/raw/file", s.handleRawFile)
	r.Post("/raw/text", s.handleRawText)
	r.Get("/health", s.handleHealth)

	s.HTTPServer = &http.Server{
		Addr:         cfg.FrontendAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler возвращает маршрутизатор фронтенда.
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

// StartBackground запускает очистку просроченных сессий до отмены ctx.
func (s *Server) StartBackground(ctx context.Context) {
	s.sessions.StartCleanupTicker(ctx, s.cfg.Processing.CleanupInterval)
}

// CheckBackend проверяет доступность сервиса анализа. Результат только логируется.
func (s *Server) CheckBackend(ctx context.Context) {
	status, err := s.service.Health(ctx)
	if err != nil {
		s.logger.Warn("analysis service is not reachable", "backend", s.cfg.Frontend.BackendURL, "error", err)
		return
	}
	s.logger.Info("analysis service is up", "backend", s.cfg.Frontend.BackendURL, "status", status.Status)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")
	return s.HTTPServer.Shutdown(ctx)
}

// session возвращает сессию из cookie или заводит новую.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.cfg.Frontend.SessionTTL / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, s.session(w, r).Snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	file, err := readChatFile(r)
	if err != nil {
		s.logger.Warn("failed to read uploaded file", "error", err)
	}
	if info, err := sess.Select(file); err == nil {
		s.logger.Debug("file selected", "session", sess.ID, "name", info.Name, "size", info.Size)
	}
	s.renderDashboard(w, sess.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.logResult(sess, "file", func() error {
		_, err := sess.AnalyzeSelected(r.Context())
		return err
	})
	s.renderDashboard(w, sess.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.session(w, r).Snapshot()
	if snap.State != session.StateSuccess || snap.Result == nil {
		http.Error(w, "No analysis result to export", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := exporter.NewExcelExporter().Export(&buf, snap.Result); err != nil {
		s.logger.Error("failed to build workbook", "error", err)
		http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="chat-analysis.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	s.renderRaw(w, s.session(w, r).Snapshot(), "")
}

func (s *Server) handleRawFile(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	file, err := readChatFile(r)
	if err != nil {
		s.logger.Warn("failed to read uploaded file", "error", err)
	}
	s.logResult(sess, "file", func() error {
		_, err := sess.AnalyzeFile(r.Context(), file)
		return err
	})
	s.renderRaw(w, sess.Snapshot(), "")
}

func (s *Server) handleRawText(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	content := r.PostFormValue(contentField)
	s.logResult(sess, "text", func() error {
		_, err := sess.AnalyzeText(r.Context(), content)
		return err
	})
	s.renderRaw(w, sess.Snapshot(), content)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status, err := s.service.Health(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
			Error:     err.Error(),
			Status:    "502 BAD_GATEWAY",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(status)
}

// logResult выполняет действие сессии. Вытесненный запрос не считается ошибкой:
// его место в состоянии уже занял более новый.
func (s *Server) logResult(sess *session.Session, mode string, action func() error) {
	err := action()
	switch {
	case err == nil:
		s.logger.Info("chat analyzed", "session", sess.ID, "mode", mode)
	case errors.Is(err, session.ErrSuperseded):
		s.logger.Debug("request superseded", "session", sess.ID, "mode", mode)
	default:
		s.logger.Info("analysis failed", "session", sess.ID, "mode", mode, "error", err)
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, snap session.Snapshot) {
	data := newPageData(snap)
	if data.HasResult {
		data.View = render.Build(snap.Result)
	}
	s.execute(w, dashboardTmpl, data)
}

func (s *Server) renderRaw(w http.ResponseWriter, snap session.Snapshot, content string) {
	data := newPageData(snap)
	data.Content = content
	if data.HasResult {
		var buf bytes.Buffer
		if err := exporter.NewJSONExporter().Export(&buf, snap.Result); err != nil {
			s.logger.Error("failed to encode result", "error", err)
		}
		data.JSON = buf.String()
	}
	s.execute(w, rawTmpl, data)
}

func (s *Server) execute(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render page", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func newPageData(snap session.Snapshot) pageData {
	return pageData{
		Snapshot:  snap,
		Loading:   snap.State == session.StateLoading,
		Failed:    snap.State == session.StateError,
		HasResult: snap.State != session.StateLoading && snap.Result != nil,
	}
}

// readChatFile читает файл из поля chatFile. Отсутствие файла дает nil без ошибки.
func readChatFile(r *http.Request) (*domain.ChatFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	f, header, err := r.FormFile(fileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	src, err := source.NewReaderSource(header.Filename, f, 0)
	if err != nil {
		return nil, err
	}
	return src.Fetch()
}
