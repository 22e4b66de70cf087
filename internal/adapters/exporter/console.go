package exporter

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"chat-analyzer/internal/render"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// DefaultBarWidth — ширина столбца таймлайна в символах.
const DefaultBarWidth = 30

const (
	nameColWidth = 20
	barRune      = "█"
	noData       = "No data."
)

// ConsoleExporter реализует интерфейс Exporter для вывода панели в консоль.
type ConsoleExporter struct {
	barWidth int
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter(barWidth int) ports.Exporter {
	if barWidth <= 0 {
		barWidth = DefaultBarWidth
	}
	return &ConsoleExporter{barWidth: barWidth}
}

// Export выводит счетчики, рейтинг участников, эмодзи, таймлайн и облако слов.
func (e *ConsoleExporter) Export(w io.Writer, result *domain.AnalysisResult) error {
	v := render.Build(result)
	var sb strings.Builder

	sb.WriteString("=== Chat Analysis ===\n")
	fmt.Fprintf(&sb, "Total messages   : %d\n", v.TotalMessages)
	fmt.Fprintf(&sb, "Most active user : %s (%d)\n", v.MostActiveUser, v.MostActiveUserCount)
	fmt.Fprintf(&sb, "Total words      : %d\n", v.TotalWords)
	fmt.Fprintf(&sb, "Media messages   : %d\n", v.MediaMessages)

	sb.WriteString("\n--- Most Active Users ---\n")
	if len(v.Users) == 0 {
		sb.WriteString(noData + "\n")
	}
	for i, u := range v.Users {
		name := runewidth.Truncate(u.Name, nameColWidth, "…")
		fmt.Fprintf(&sb, "%2d. %s%s %d\n", i+1, name, generatePadding(name, nameColWidth), u.Count)
	}

	sb.WriteString("\n--- Top Emojis ---\n")
	if len(v.Emojis) == 0 {
		sb.WriteString(noData + "\n")
	} else {
		parts := make([]string, 0, len(v.Emojis))
		for _, em := range v.Emojis {
			parts = append(parts, fmt.Sprintf("%s %d", em.Key, em.Count))
		}
		sb.WriteString(strings.Join(parts, "   ") + "\n")
	}

	sb.WriteString("\n--- Timeline ---\n")
	if len(v.Timeline) == 0 {
		sb.WriteString(noData + "\n")
	}
	for _, b := range v.Timeline {
		n := e.barLength(b.Height)
		fmt.Fprintf(&sb, "%s %s%s %d\n", b.Date, strings.Repeat(barRune, n), strings.Repeat(" ", e.barWidth-n), b.Count)
	}

	sb.WriteString("\n--- Top Words ---\n")
	if len(v.Words) == 0 {
		sb.WriteString(noData + "\n")
	} else {
		labels := make([]string, 0, len(v.Words))
		for _, t := range v.Words {
			labels = append(labels, t.Label())
		}
		sb.WriteString(strings.Join(labels, ", ") + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *ConsoleExporter) barLength(height float64) int {
	n := int(height * float64(e.barWidth) / 100)
	if n == 0 && height > 0 {
		n = 1
	}
	if n > e.barWidth {
		n = e.barWidth
	}
	return n
}

// generatePadding вычисляет отступ для строки с учетом ширины символов
// и поправки на CJK, которую некоторые клиенты отображают шире.
func generatePadding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}
