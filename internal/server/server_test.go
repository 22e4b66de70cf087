package server

import (
	"bytes"
	"chat-analyzer/internal/adapters/parser"
	"chat-analyzer/internal/analyzer"
	"chat-analyzer/internal/cache"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/server/usecase"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementation for ChatAnalyzer
type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeChat(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, content)
	if res := args.Get(0); res != nil {
		return res.(*domain.AnalysisResult), args.Error(1)
	}
	return nil, args.Error(1)
}

const sampleChat = "1/2/24, 10:00 - Bob: hello world 😀\n1/2/24, 10:05 - Alice: hello"

func newTestServer(t *testing.T, analyzer ChatAnalyzer) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.MaxUploadSizeMB = 1
	srv, err := New(cfg, analyzer, cache.NewCacheStore())
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return srv
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	if fileName != "" {
		fw, err := writer.CreateFormFile(FileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return &b, writer.FormDataContentType()
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.HTTPServer.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, new(mockAnalyzer))

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	var resp domain.HealthStatus
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "UP", resp.Status)
	assert.Equal(t, "Chat Analyzer service is running", resp.Message)
	assert.Equal(t, "2024-01-02T03:04:05Z", resp.Timestamp)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, new(mockAnalyzer))
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rr := serve(srv, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServer_CORSSimpleRequest(t *testing.T) {
	srv := newTestServer(t, new(mockAnalyzer))
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rr := serve(srv, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_AnalyzeFile(t *testing.T) {
	t.Run("успешный анализ", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		expected := &domain.AnalysisResult{TotalMessages: domain.Int(2)}
		m.On("AnalyzeChat", mock.Anything, sampleChat).Return(expected, nil).Once()

		body, contentType := multipartBody(t, "Chat.TXT", []byte(sampleChat), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rr := serve(srv, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var result domain.AnalysisResult
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, 2, result.GetTotalMessages())
		m.AssertExpectations(t)
	})

	testCases := []struct {
		name     string
		fileName string
		content  []byte
		wantMsg  string
	}{
		{"пустой файл", "chat.txt", nil, MsgFileEmpty},
		{"не txt", "chat.csv", []byte("a"), MsgOnlyTxt},
		{"только пробелы", "chat.txt", []byte(" \n\t "), MsgFileContentEmpty},
		{"слишком большой", "chat.txt", bytes.Repeat([]byte("a"), 1<<20+1), "File size exceeds 1MB limit"},
		{"без файла", "", nil, MsgFileRequired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockAnalyzer)
			srv := newTestServer(t, m)

			body, contentType := multipartBody(t, tc.fileName, tc.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", contentType)

			rr := serve(srv, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeError(t, rr)
			assert.Equal(t, tc.wantMsg, resp.Error)
			assert.Equal(t, "400 BAD_REQUEST", resp.Status)
			m.AssertNotCalled(t, "AnalyzeChat", mock.Anything, mock.Anything)
		})
	}

	t.Run("не multipart", func(t *testing.T) {
		srv := newTestServer(t, new(mockAnalyzer))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rr := serve(srv, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, MsgInvalidForm, decodeError(t, rr).Error)
	})
}

func TestServer_AnalyzeText(t *testing.T) {
	t.Run("успешный анализ", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, "hello").Return(&domain.AnalysisResult{TotalWords: domain.Int(1)}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{"content":"hello"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := serve(srv, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"totalWords":1}`, rr.Body.String())
	})

	t.Run("пустой content", func(t *testing.T) {
		srv := newTestServer(t, new(mockAnalyzer))
		rr := serve(srv, httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{"content":"   "}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, MsgContentEmpty, decodeError(t, rr).Error)
	})

	t.Run("некорректный JSON", func(t *testing.T) {
		srv := newTestServer(t, new(mockAnalyzer))
		rr := serve(srv, httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, MsgInvalidBody, decodeError(t, rr).Error)
	})

	t.Run("нет сообщений", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, "garbage").Return(nil, parser.ErrNoMessages)

		rr := serve(srv, httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{"content":"garbage"}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No valid chat messages found in the provided content", decodeError(t, rr).Error)
	})

	t.Run("внутренняя ошибка", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, "boom").Return(nil, errors.New("disk on fire"))

		rr := serve(srv, httptest.NewRequest(http.MethodPost, "/api/analyze/text", strings.NewReader(`{"content":"boom"}`)))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "Error analyzing chat: disk on fire", resp.Error)
		assert.Equal(t, "500 INTERNAL_SERVER_ERROR", resp.Status)
	})
}

func TestServer_AnalyzeUpload(t *testing.T) {
	t.Run("файл", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, sampleChat).Return(&domain.AnalysisResult{}, nil).Once()

		body, contentType := multipartBody(t, "chat.txt", []byte(sampleChat), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)

		assert.Equal(t, http.StatusOK, serve(srv, req).Code)
		m.AssertExpectations(t)
	})

	t.Run("поле content", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, "pasted").Return(&domain.AnalysisResult{}, nil).Once()

		body, contentType := multipartBody(t, "", nil, map[string]string{"content": "pasted"})
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)

		assert.Equal(t, http.StatusOK, serve(srv, req).Code)
		m.AssertExpectations(t)
	})

	t.Run("пустой файл уступает полю content", func(t *testing.T) {
		m := new(mockAnalyzer)
		srv := newTestServer(t, m)
		m.On("AnalyzeChat", mock.Anything, "pasted").Return(&domain.AnalysisResult{}, nil).Once()

		body, contentType := multipartBody(t, "chat.txt", nil, map[string]string{"content": "pasted"})
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)

		assert.Equal(t, http.StatusOK, serve(srv, req).Code)
		m.AssertExpectations(t)
	})

	t.Run("пустой файл без content", func(t *testing.T) {
		srv := newTestServer(t, new(mockAnalyzer))
		body, contentType := multipartBody(t, "chat.txt", nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)

		rr := serve(srv, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, MsgEitherParam, decodeError(t, rr).Error)
	})

	t.Run("ничего не передано", func(t *testing.T) {
		srv := newTestServer(t, new(mockAnalyzer))
		body, contentType := multipartBody(t, "", nil, map[string]string{"other": "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", body)
		req.Header.Set("Content-Type", contentType)

		rr := serve(srv, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, MsgEitherParam, decodeError(t, rr).Error)
	})
}

func TestServer_EndToEnd(t *testing.T) {
	cfg := config.Default()
	store := cache.NewCacheStore()
	uc := usecase.NewAnalyzeChatUseCase(cfg, parser.NewWhatsAppParser(), analyzer.NewAnalyzer(), store)
	srv, err := New(cfg, uc, store)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.HTTPServer.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/analyze/text", "application/json", strings.NewReader(`{"content":"`+strings.ReplaceAll(sampleChat, "\n", `\n`)+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.GetTotalMessages())
	assert.Equal(t, map[string]int{"Alice": 1, "Bob": 1}, result.GetUserMessageCounts())
	assert.Equal(t, "Alice", result.GetMostActiveUser())
	assert.Equal(t, []domain.Ranked{{Key: "😀", Count: 1}}, result.GetTopEmojis())
	assert.Equal(t, 1, store.Len())
}
