package analyzer

import (
	"chat-analyzer/internal/domain"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// TopLimit — сколько слов и эмодзи попадает в результат.
const TopLimit = 10

var (
	urlPattern   = regexp.MustCompile(`https?\S+|www\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the and or but in on at to for of with by is are was were be been being
		have has had do does did will would could should may might a an this that these those
		i you he she it we they me him her us them my your his its our their am can not no yes ok okay so`) {
		stopWords[w] = struct{}{}
	}
}

// emojiRanges — эмотиконы, пиктограммы, транспорт, флаги, символы, дингбаты и дополнительные пиктограммы.
var emojiRanges = []*unicode.RangeTable{{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1},
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
	},
}}

// IsEmoji сообщает, попадает ли руна в учитываемые диапазоны эмодзи.
func IsEmoji(r rune) bool {
	return unicode.IsOneOf(emojiRanges, r)
}

// Words возвращает значимые слова текста: ссылки и адреса почты удаляются,
// текст делится на слова по UAX #29, из каждого слова берутся серии латинских букв
// в нижнем регистре длиной больше двух, стоп-слова отбрасываются.
func Words(text string) []string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")

	var result []string
	tokens := words.FromString(strings.ToLower(text))
	for tokens.Next() {
		for _, w := range letterRuns(tokens.Value()) {
			if len(w) <= 2 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			result = append(result, w)
		}
	}
	return result
}

func letterRuns(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

// Emojis возвращает все эмодзи текста по одной руне.
func Emojis(text string) []string {
	var result []string
	for _, r := range text {
		if IsEmoji(r) {
			result = append(result, string(r))
		}
	}
	return result
}

// TopWords возвращает limit самых частых значимых слов.
func TopWords(text string, limit int) []domain.Ranked {
	return Top(Words(text), limit)
}

// TopEmojis возвращает limit самых частых эмодзи.
func TopEmojis(text string, limit int) []domain.Ranked {
	return Top(Emojis(text), limit)
}

// Top считает вхождения и возвращает limit самых частых значений,
// при равенстве — в лексикографическом порядке.
func Top(items []string, limit int) []domain.Ranked {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item]++
	}

	ranked := make([]domain.Ranked, 0, len(counts))
	for key, count := range counts {
		ranked = append(ranked, domain.Ranked{Key: key, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
