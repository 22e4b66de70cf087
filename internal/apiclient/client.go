// Package apiclient реализует клиентскую сторону контракта сервиса анализа чатов.
package apiclient

import (
	"bytes"
	"chat-analyzer/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Пути конечных точек сервиса анализа.
const (
	PathAnalyzeFile = "/api/analyze"
	PathAnalyzeText = "/api/analyze/text"
	PathHealth      = "/api/health"

	// FileField — имя поля multipart-формы с файлом чата.
	FileField = "chatFile"

	// RequestIDHeader передается сервису для сопоставления логов.
	RequestIDHeader = "X-Request-ID"
)

// Client — клиент для взаимодействия с API сервиса анализа.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option определяет функциональную опцию для конфигурации клиента.
type Option func(*Client)

// WithTimeout задает общий таймаут запросов. 0 — таймаут транспорта по умолчанию.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient подменяет HTTP-клиент (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger задает логгер клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient создает новый экземпляр Client.
// Допускаются оба вида базового адреса: "http://host:8080" и "http://host:8080/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		httpClient: &http.Client{},
		logger:     slog.Default().With("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBaseURL убирает завершающие "/" и суффикс "/api".
func NormalizeBaseURL(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	base = strings.TrimSuffix(base, "/api")
	return base
}

// BaseURL возвращает нормализованный базовый адрес.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ID идентифицирует экземпляр сервиса в пуле; совпадает с базовым адресом.
func (c *Client) ID() string {
	return c.baseURL
}

// AnalyzeFile отправляет файл чата multipart-формой с полем chatFile.
func (c *Client) AnalyzeFile(ctx context.Context, file *domain.ChatFile) (*domain.AnalysisResult, error) {
	if file == nil {
		return nil, fmt.Errorf("no file to send")
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile(FileField, file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file for %s: %w", file.Name, err)
	}
	if _, err = fw.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file content for %s: %w", file.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathAnalyzeFile, &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.doAnalyze(req, slog.String("file_name", file.Name), slog.Int64("file_size", file.Size))
}

// AnalyzeText отправляет вставленный текст JSON-телом {"content": ...}.
func (c *Client) AnalyzeText(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	body, err := json.Marshal(domain.TextRequest{Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathAnalyzeText, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doAnalyze(req, slog.Int("content_length", len(content)))
}

// Health запрашивает состояние сервиса.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{StatusCode: resp.StatusCode}
	}

	var status domain.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &status, nil
}

// doAnalyze выполняет запрос анализа и разбирает ответ.
// Поле error в теле ответа считается ошибкой приложения независимо от статуса.
func (c *Client) doAnalyze(req *http.Request, attrs ...any) (*domain.AnalysisResult, error) {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	logger := c.logger.With(slog.String("request_id", requestID), slog.String("path", req.URL.Path))
	logger.Debug("sending analysis request", attrs...)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("analysis request failed", slog.String("error", err.Error()))
		return nil, &RequestError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var result domain.AnalysisResult
	decodeErr := json.Unmarshal(data, &result)
	if decodeErr == nil && result.Error != "" {
		logger.Info("analysis rejected by service", slog.Int("status", resp.StatusCode), slog.String("reason", result.Error))
		return nil, &ApplicationError{StatusCode: resp.StatusCode, Message: result.Error}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("unexpected status code", slog.Int("status", resp.StatusCode))
		return nil, &RequestError{StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}

	logger.Debug("analysis request completed", slog.Duration("elapsed", time.Since(started)))
	return &result, nil
}
