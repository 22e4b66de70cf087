package parser

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// ErrNoMessages возвращается, если в тексте нет ни одной строки сообщения.
var ErrNoMessages = errors.New("No valid chat messages found in the provided content")

var messageLine = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?:\s*(?:AM|PM|am|pm))?)\s*-\s*([^:]+):\s*(.*)$`)

// Форматы даты пробуются по порядку: сначала месяц, затем день.
var dateLayouts = []string{"1/2/2006", "2/1/2006", "1/2/06", "2/1/06"}

var mediaMarkers = []string{
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"document omitted",
	"sticker omitted",
}

// WhatsAppParser разбирает текстовый экспорт чата WhatsApp.
type WhatsAppParser struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewWhatsAppParser создает новый экземпляр WhatsAppParser.
func NewWhatsAppParser() ports.Parser {
	return newWhatsAppParser(time.Now)
}

func newWhatsAppParser(now func() time.Time) *WhatsAppParser {
	return &WhatsAppParser{
		now:    now,
		logger: slog.Default().With("component", "parser"),
	}
}

// Parse возвращает сообщения в порядке следования строк.
// Строки, не похожие на сообщение (продолжения, системные уведомления), пропускаются.
func (p *WhatsAppParser) Parse(content string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := messageLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		text := strings.TrimSpace(m[4])
		messages = append(messages, domain.ChatMessage{
			Date:   p.parseDate(m[1]),
			Time:   m[2],
			Author: strings.TrimSpace(m[3]),
			Text:   text,
			Media:  IsMedia(text),
		})
	}

	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	return messages, nil
}

func (p *WhatsAppParser) parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d
		}
	}
	p.logger.Debug("could not parse date, using current date", slog.String("date", s))
	now := p.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IsMedia сообщает, является ли текст заглушкой вложения.
func IsMedia(text string) bool {
	for _, marker := range mediaMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
