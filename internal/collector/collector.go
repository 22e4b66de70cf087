// Package collector собирает и проверяет источник чата перед отправкой на анализ.
package collector

import (
	"chat-analyzer/internal/domain"
	"errors"
	"strings"
	"sync"
)

// Сообщения, которые видит пользователь при ошибках ввода.
const (
	MsgInvalidFileType = "Please select a valid .txt file"
	MsgNoFileSelected  = "Please select a file first"
	MsgEmptyText       = "Please enter some chat content first"
)

// AllowedExtension — единственное допустимое расширение файла чата.
const AllowedExtension = ".txt"

// ValidationError — ошибка проверки ввода. Сообщение показывается пользователю как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError сообщает, является ли err ошибкой проверки ввода.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateFileName проверяет, что имя файла оканчивается на ".txt".
// Проверка чувствительна к регистру: "chat.TXT" отклоняется.
func ValidateFileName(name string) error {
	if !strings.HasSuffix(name, AllowedExtension) {
		return &ValidationError{Message: MsgInvalidFileType}
	}
	return nil
}

// PrepareText обрезает пробелы по краям и отклоняет пустой текст.
func PrepareText(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", &ValidationError{Message: MsgEmptyText}
	}
	return content, nil
}

// Describe возвращает отображаемые метаданные файла.
func Describe(file *domain.ChatFile) domain.FileInfo {
	return domain.FileInfo{
		Name: file.Name,
		Size: FormatFileSize(file.Size),
	}
}

// Selection хранит текущий выбранный файл одного пользователя.
// Выбор через диалог и через drag-and-drop проходит через один и тот же метод Select.
type Selection struct {
	mu   sync.RWMutex
	file *domain.ChatFile
}

// NewSelection создает пустой выбор.
func NewSelection() *Selection {
	return &Selection{}
}

// Select заменяет текущий файл, если имя прошло проверку.
// При ошибке предыдущий выбор остается без изменений.
func (s *Selection) Select(file *domain.ChatFile) (domain.FileInfo, error) {
	if file == nil {
		return domain.FileInfo{}, &ValidationError{Message: MsgInvalidFileType}
	}
	if err := ValidateFileName(file.Name); err != nil {
		return domain.FileInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = file
	return Describe(file), nil
}

// Current возвращает выбранный файл.
func (s *Selection) Current() (*domain.ChatFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file, s.file != nil
}

// Info возвращает метаданные выбранного файла, если он есть.
func (s *Selection) Info() (domain.FileInfo, bool) {
	file, ok := s.Current()
	if !ok {
		return domain.FileInfo{}, false
	}
	return Describe(file), true
}

// Require возвращает выбранный файл или ошибку "Please select a file first".
func (s *Selection) Require() (*domain.ChatFile, error) {
	file, ok := s.Current()
	if !ok {
		return nil, &ValidationError{Message: MsgNoFileSelected}
	}
	return file, nil
}
