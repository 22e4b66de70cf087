package analyzer

import (
	"chat-analyzer/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzer_Analyze(t *testing.T) {
	messages := []domain.ChatMessage{
		{Date: day(1), Author: "Alice", Text: "pizza tonight? 😀😀"},
		{Date: day(1), Author: "Bob", Text: "pizza sounds great 😀"},
		{Date: day(2), Author: "Bob", Text: "<Media omitted>", Media: true},
		{Date: day(2), Author: "Bob", Text: "see https://example.com/pizza or mail bob@example.com"},
	}

	result := NewAnalyzer().Analyze(messages)

	assert.Equal(t, 4, result.GetTotalMessages())
	assert.Equal(t, 1, result.GetMediaMessages())
	assert.Equal(t, 3+4+6, result.GetTotalWords())
	assert.Equal(t, map[string]int{"Alice": 1, "Bob": 3}, result.GetUserMessageCounts())
	assert.Equal(t, "Bob", result.GetMostActiveUser())
	assert.Equal(t, 3, result.GetMostActiveUserCount())
	assert.Equal(t, map[string]int{"2024-01-01": 2, "2024-01-02": 2}, result.GetTimeline())

	require.NotEmpty(t, result.GetTopWords())
	assert.Equal(t, domain.Ranked{Key: "pizza", Count: 2}, result.GetTopWords()[0])
	assert.Equal(t, []domain.Ranked{{Key: "😀", Count: 3}}, result.GetTopEmojis())
}

func TestAnalyzer_MostActiveTie(t *testing.T) {
	result := NewAnalyzer().Analyze([]domain.ChatMessage{
		{Date: day(1), Author: "Zoe", Text: "hi"},
		{Date: day(1), Author: "Adam", Text: "hi"},
	})
	assert.Equal(t, "Adam", result.GetMostActiveUser())
	assert.Equal(t, 1, result.GetMostActiveUserCount())
}

func TestAnalyzer_Empty(t *testing.T) {
	result := NewAnalyzer().Analyze(nil)
	assert.Equal(t, 0, result.GetTotalMessages())
	assert.Equal(t, domain.DefaultMostActiveUser, result.GetMostActiveUser())
	assert.Empty(t, result.GetTopWords())
	assert.Empty(t, result.GetTopEmojis())
}

func TestWords(t *testing.T) {
	got := Words("The QUICK brown fox, don't visit www.fox.com! Email: fox@den.org ok?? naïve 123abc")
	assert.Equal(t, []string{"quick", "brown", "fox", "don", "visit", "email", "abc"}, got)
}

func TestEmojis(t *testing.T) {
	assert.Equal(t, []string{"😀", "🚀", "❤", "🤖", "☀"}, Emojis("a😀b🚀 ❤️ 🤖 ☀ ©"))
	assert.True(t, IsEmoji('🎉'))
	assert.False(t, IsEmoji('a'))
	assert.False(t, IsEmoji('©'))
}

func TestTop(t *testing.T) {
	items := []string{"b", "a", "c", "a", "b", "a", "d"}

	assert.Equal(t, []domain.Ranked{
		{Key: "a", Count: 3},
		{Key: "b", Count: 2},
		{Key: "c", Count: 1},
	}, Top(items, 3))

	assert.Len(t, Top(items, 10), 4)
	assert.Empty(t, Top(nil, 10))
}
