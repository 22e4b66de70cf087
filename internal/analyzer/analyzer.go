// Package analyzer строит статистику по разобранным сообщениям чата.
package analyzer

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"strings"
)

// TimelineLayout — формат ключа даты в timeline.
const TimelineLayout = "2006-01-02"

// Analyzer реализует ports.ChatAnalyzer.
type Analyzer struct {
	topLimit int
}

// NewAnalyzer создает новый экземпляр Analyzer.
func NewAnalyzer() ports.ChatAnalyzer {
	return &Analyzer{topLimit: TopLimit}
}

// Analyze считает итоги, активность участников, таймлайн, частые слова и эмодзи.
// Слова и эмодзи берутся только из сообщений без вложений.
func (a *Analyzer) Analyze(messages []domain.ChatMessage) *domain.AnalysisResult {
	userCounts := make(map[string]int)
	timeline := make(map[string]int)
	totalWords := 0
	media := 0

	var text strings.Builder
	for _, m := range messages {
		if m.Author != "" {
			userCounts[m.Author]++
		}
		if !m.Date.IsZero() {
			timeline[m.Date.Format(TimelineLayout)]++
		}
		if m.Media {
			media++
			continue
		}
		if m.Text != "" {
			totalWords += len(strings.Fields(m.Text))
			text.WriteString(m.Text)
			text.WriteByte('\n')
		}
	}

	result := &domain.AnalysisResult{
		TotalMessages:     domain.Int(len(messages)),
		TotalWords:        domain.Int(totalWords),
		MediaMessages:     domain.Int(media),
		UserMessageCounts: userCounts,
		Timeline:          timeline,
		TopWords:          TopWords(text.String(), a.topLimit),
		TopEmojis:         TopEmojis(text.String(), a.topLimit),
	}

	if user, count, ok := mostActive(userCounts); ok {
		result.MostActiveUser = domain.String(user)
		result.MostActiveUserCount = domain.Int(count)
	}
	return result
}

// mostActive выбирает участника с наибольшим числом сообщений, при равенстве — первого по имени.
func mostActive(counts map[string]int) (string, int, bool) {
	var (
		best  string
		count int
		found bool
	)
	for user, c := range counts {
		if !found || c > count || (c == count && user < best) {
			best, count, found = user, c, true
		}
	}
	return best, count, found
}
