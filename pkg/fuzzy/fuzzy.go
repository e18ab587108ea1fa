package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance counts the single-rune edits needed to turn s1 into s2,
// after case folding and accent removal.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(Normalize(s1))
	r2 := []rune(Normalize(s2))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Threshold is the typo tolerance for a query of the given length.
func Threshold(query string) int {
	n := len([]rune(query))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Match reports whether query matches text exactly, by prefix of a word, or
// within the typo threshold of a word.
func Match(query, text string) bool {
	query = Normalize(query)
	text = Normalize(text)
	if query == "" {
		return true
	}
	if strings.Contains(text, query) {
		return true
	}

	threshold := Threshold(query)
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) || LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}
	return false
}

// RelevanceScore ranks a contact against a query. Name hits weigh most,
// then email, then phone digits. Zero means no match.
func RelevanceScore(query, name, email, phone string) float64 {
	query = Normalize(query)
	if query == "" {
		return 0
	}
	score := 0.0

	nameNorm := Normalize(name)
	if strings.Contains(nameNorm, query) {
		score += 100
		if containsWord(nameNorm, query) {
			score += 50
		}
	} else {
		for _, word := range strings.Fields(nameNorm) {
			if dist := LevenshteinDistance(query, word); dist <= Threshold(query) {
				score += 50 - float64(dist)*15
			}
			if strings.HasPrefix(word, query) {
				score += 40
			}
		}
	}

	emailNorm := Normalize(email)
	if emailNorm != "" {
		if strings.Contains(emailNorm, query) {
			score += 60
		} else if local, _, ok := strings.Cut(emailNorm, "@"); ok && strings.HasPrefix(local, query) {
			score += 30
		}
	}

	if digits := digitsOnly(query); digits != "" && len(digits) >= 3 {
		if strings.Contains(digitsOnly(phone), digits) {
			score += 40
		}
	}

	return score
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Normalize lowercases, removes diacritics and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(strings.ToLower(out), "đ", "d")
	return strings.Join(strings.Fields(out), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
