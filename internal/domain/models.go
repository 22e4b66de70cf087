package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Значения по умолчанию для отсутствующих полей результата анализа.
const (
	DefaultCount          = 0
	DefaultMostActiveUser = "-"
)

// ChatFile представляет выбранный пользователем файл с историей чата.
type ChatFile struct {
	Name    string
	Size    int64
	Content []byte
}

// FileInfo содержит отображаемые метаданные выбранного файла.
type FileInfo struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// Ranked представляет пару (значение, количество), например (эмодзи, 10) или (слово, 3).
// В JSON кодируется как массив из двух элементов: ["😀", 10].
type Ranked struct {
	Key   string
	Count int
}

// MarshalJSON кодирует пару в виде двухэлементного массива.
func (r Ranked) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.Key, r.Count})
}

// UnmarshalJSON разбирает пару из двухэлементного массива.
func (r *Ranked) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ranked entry must be an array: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("ranked entry must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Key); err != nil {
		return fmt.Errorf("ranked entry key must be a string: %w", err)
	}
	var count float64
	if err := json.Unmarshal(raw[1], &count); err != nil {
		return fmt.Errorf("ranked entry count must be a number: %w", err)
	}
	r.Count = int(count)
	return nil
}

// AnalysisResult — ответ сервиса анализа. Все поля необязательны:
// отсутствующее значение читается через аксессор, возвращающий значение по умолчанию.
type AnalysisResult struct {
	TotalMessages       *int           `json:"totalMessages,omitempty"`
	TotalWords          *int           `json:"totalWords,omitempty"`
	MediaMessages       *int           `json:"mediaMessages,omitempty"`
	MostActiveUser      *string        `json:"mostActiveUser,omitempty"`
	MostActiveUserCount *int           `json:"mostActiveUserCount,omitempty"`
	UserMessageCounts   map[string]int `json:"userMessageCounts,omitempty"`
	Timeline            map[string]int `json:"timeline,omitempty"`
	TopWords            []Ranked       `json:"topWords,omitempty"`
	TopEmojis           []Ranked       `json:"topEmojis,omitempty"`
	Error               string         `json:"error,omitempty"`
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// GetTotalMessages возвращает общее количество сообщений или 0.
func (r *AnalysisResult) GetTotalMessages() int {
	if r == nil {
		return DefaultCount
	}
	return intOr(r.TotalMessages, DefaultCount)
}

// GetTotalWords возвращает общее количество слов или 0.
func (r *AnalysisResult) GetTotalWords() int {
	if r == nil {
		return DefaultCount
	}
	return intOr(r.TotalWords, DefaultCount)
}

// GetMediaMessages возвращает количество медиа-сообщений или 0.
func (r *AnalysisResult) GetMediaMessages() int {
	if r == nil {
		return DefaultCount
	}
	return intOr(r.MediaMessages, DefaultCount)
}

// GetMostActiveUser возвращает имя самого активного участника или "-".
func (r *AnalysisResult) GetMostActiveUser() string {
	if r == nil || r.MostActiveUser == nil || *r.MostActiveUser == "" {
		return DefaultMostActiveUser
	}
	return *r.MostActiveUser
}

// GetMostActiveUserCount возвращает количество сообщений самого активного участника или 0.
func (r *AnalysisResult) GetMostActiveUserCount() int {
	if r == nil {
		return DefaultCount
	}
	return intOr(r.MostActiveUserCount, DefaultCount)
}

// GetUserMessageCounts возвращает карту участник→количество сообщений (никогда не nil).
func (r *AnalysisResult) GetUserMessageCounts() map[string]int {
	if r == nil || r.UserMessageCounts == nil {
		return map[string]int{}
	}
	return r.UserMessageCounts
}

// GetTimeline возвращает карту дата→количество сообщений (никогда не nil).
func (r *AnalysisResult) GetTimeline() map[string]int {
	if r == nil || r.Timeline == nil {
		return map[string]int{}
	}
	return r.Timeline
}

// GetTopWords возвращает упорядоченный список слов.
func (r *AnalysisResult) GetTopWords() []Ranked {
	if r == nil || r.TopWords == nil {
		return []Ranked{}
	}
	return r.TopWords
}

// GetTopEmojis возвращает упорядоченный список эмодзи.
func (r *AnalysisResult) GetTopEmojis() []Ranked {
	if r == nil || r.TopEmojis == nil {
		return []Ranked{}
	}
	return r.TopEmojis
}

// HealthStatus — ответ конечной точки проверки работоспособности.
type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ErrorResponse — тело ответа сервиса анализа при ошибке.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TextRequest — тело запроса текстового анализа.
type TextRequest struct {
	Content string `json:"content"`
}

// ChatMessage представляет одно разобранное сообщение экспорта чата.
type ChatMessage struct {
	Date   time.Time
	Time   string
	Author string
	Text   string
	Media  bool
}

// Int возвращает указатель на значение. Используется при сборке AnalysisResult.
func Int(v int) *int {
	return &v
}

// String возвращает указатель на значение.
func String(v string) *string {
	return &v
}
