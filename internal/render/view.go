// Package render проецирует результат анализа на области отображения.
// Все выводы (веб-страница, консоль, Excel, бот) строятся из одной View.
package render

import (
	"chat-analyzer/internal/domain"
	"fmt"
	"sort"
)

// Ограничения панелей.
const (
	MaxEmojis = 12
	MaxWords  = 20

	MinWordFontSize = 0.8
	MaxWordFontSize = 1.5
)

// UserRow — строка рейтинга участников.
type UserRow struct {
	Name  string
	Count int
}

// Bar — столбец таймлайна. Height в процентах от максимума.
type Bar struct {
	Date   string
	Count  int
	Height float64
}

// Title возвращает подсказку столбца.
func (b Bar) Title() string {
	return fmt.Sprintf("%s: %d messages", b.Date, b.Count)
}

// HeightStyle возвращает высоту для CSS.
func (b Bar) HeightStyle() string {
	return fmt.Sprintf("%.2f%%", b.Height)
}

// WordTag — элемент облака слов. FontSize в rem.
type WordTag struct {
	Word     string
	Count    int
	FontSize float64
}

// Label возвращает подпись вида "word (3)".
func (w WordTag) Label() string {
	return fmt.Sprintf("%s (%d)", w.Word, w.Count)
}

// FontSizeStyle возвращает размер шрифта для CSS.
func (w WordTag) FontSizeStyle() string {
	return fmt.Sprintf("%.2frem", w.FontSize)
}

// View — полностью вычисленное представление результата.
type View struct {
	TotalMessages       int
	MostActiveUser      string
	MostActiveUserCount int
	TotalWords          int
	MediaMessages       int

	Users    []UserRow
	Emojis   []domain.Ranked
	Timeline []Bar
	Words    []WordTag
}

// Build строит View. Отсутствующие поля заменяются значениями по умолчанию, nil допустим.
func Build(result *domain.AnalysisResult) View {
	return View{
		TotalMessages:       result.GetTotalMessages(),
		MostActiveUser:      result.GetMostActiveUser(),
		MostActiveUserCount: result.GetMostActiveUserCount(),
		TotalWords:          result.GetTotalWords(),
		MediaMessages:       result.GetMediaMessages(),
		Users:               RankUsers(result.GetUserMessageCounts()),
		Emojis:              firstN(result.GetTopEmojis(), MaxEmojis),
		Timeline:            TimelineBars(result.GetTimeline()),
		Words:               WordCloud(result.GetTopWords()),
	}
}

// RankUsers сортирует участников по убыванию числа сообщений.
func RankUsers(counts map[string]int) []UserRow {
	rows := make([]UserRow, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, UserRow{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// TimelineBars строит столбцы в порядке дат. Высота — доля от максимума;
// при максимуме <= 0 все столбцы нулевые.
func TimelineBars(timeline map[string]int) []Bar {
	dates := make([]string, 0, len(timeline))
	maxCount := 0
	for date, count := range timeline {
		dates = append(dates, date)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Strings(dates)

	bars := make([]Bar, 0, len(dates))
	for _, date := range dates {
		count := timeline[date]
		bars = append(bars, Bar{Date: date, Count: count, Height: percent(count, maxCount)})
	}
	return bars
}

func percent(count, maxCount int) float64 {
	if maxCount <= 0 || count <= 0 {
		return 0
	}
	h := float64(count) * 100 / float64(maxCount)
	if h > 100 {
		return 100
	}
	return h
}

// WordCloud берет первые MaxWords слов в исходном порядке. Размер шрифта растет
// линейно от MinWordFontSize до MaxWordFontSize относительно первого слова.
func WordCloud(words []domain.Ranked) []WordTag {
	words = firstN(words, MaxWords)
	if len(words) == 0 {
		return []WordTag{}
	}

	first := words[0].Count
	tags := make([]WordTag, 0, len(words))
	for _, w := range words {
		tags = append(tags, WordTag{Word: w.Key, Count: w.Count, FontSize: fontSize(w.Count, first)})
	}
	return tags
}

func fontSize(count, first int) float64 {
	if first <= 0 {
		return MinWordFontSize
	}
	size := MinWordFontSize + float64(count)/float64(first)*(MaxWordFontSize-MinWordFontSize)
	if size > MaxWordFontSize {
		return MaxWordFontSize
	}
	if size < MinWordFontSize {
		return MinWordFontSize
	}
	return size
}

func firstN(items []domain.Ranked, n int) []domain.Ranked {
	if len(items) > n {
		return items[:n]
	}
	return items
}
