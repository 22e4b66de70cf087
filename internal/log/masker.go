package log

import (
	"context"
	"log/slog"
	"regexp"
)

// MaskerHandler - обертка для slog.Handler, которая скрывает токены бота и номера телефонов.
// Экспорты WhatsApp подписывают незнакомых участников номером, поэтому номера
// попадают в имена авторов и сообщения об ошибках.
type MaskerHandler struct {
	handler slog.Handler
}

// NewMaskerHandler создает новый обработчик с маскировкой
func NewMaskerHandler(handler slog.Handler) *MaskerHandler {
	return &MaskerHandler{
		handler: handler,
	}
}

var (
	// токены в формате botID:token, где ID - числа, token - буквенно-цифровой
	telegramTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)
	// международные номера: +7 916 123-45-67, +1 (555) 010-9999
	phoneRegex = regexp.MustCompile(`\+\d[\d \-()]{6,}\d`)
)

// mask заменяет найденные токены и номера на маску
func mask(text string) string {
	text = telegramTokenRegex.ReplaceAllString(text, "bot***:***masked-token***")
	return phoneRegex.ReplaceAllString(text, "+***")
}

// Enabled реализует интерфейс slog.Handler
func (h *MaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *MaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Clone() не копирует атрибуты в изменяемом виде, поэтому собираем новую запись.
	r := slog.NewRecord(record.Time, record.Level, mask(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *MaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &MaskerHandler{
		handler: h.handler.WithAttrs(masked),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *MaskerHandler) WithGroup(name string) slog.Handler {
	return &MaskerHandler{
		handler: h.handler.WithGroup(name),
	}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskAttributeValue(a.Value)}
}

// maskAttributeValue рекурсивно маскирует значения атрибутов
func maskAttributeValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(mask(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(mask(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, attr := range group {
			masked[i] = maskAttr(attr)
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewMaskerHandler(handler))
}
