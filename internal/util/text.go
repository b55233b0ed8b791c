package util

import (
	"strings"
	"unicode"
)

// NormalizeSpaces collapses runs of whitespace to single spaces and trims.
func NormalizeSpaces(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// CleanHeader prepares a column header for matching: trimmed, inner
// whitespace collapsed. Case is preserved so exact matching stays exact.
func CleanHeader(input string) string {
	return NormalizeSpaces(input)
}

// UpperCompact uppercases and strips all whitespace. Part identifiers are
// stored in this form.
func UpperCompact(input string) string {
	var out strings.Builder
	for _, r := range strings.ToUpper(input) {
		if !unicode.IsSpace(r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// CountTokens counts tokens split on commas and whitespace.
func CountTokens(input string) int {
	n := 0
	for _, part := range strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func ContainsLetter(input string) bool {
	for _, r := range input {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func ContainsDigit(input string) bool {
	for _, r := range input {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// IsAlphabetic reports whether input consists only of letters (and is
// non-empty). Spaces and punctuation disqualify.
func IsAlphabetic(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// LooksLikeCode reports whether input mixes letters and digits, the
// baseline shape test for catalog and part codes.
func LooksLikeCode(input string) bool {
	return ContainsLetter(input) && ContainsDigit(input)
}

// SimilarityRatio is a normalized edit similarity in [0,1]:
// 1 - levenshtein(a,b)/max(len). Comparison is case-insensitive.
func SimilarityRatio(a, b string) float64 {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	if len(ar) == 0 && len(br) == 0 {
		return 1
	}
	if len(ar) == 0 || len(br) == 0 {
		return 0
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := 0; j <= len(br); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := len(ar)
	if len(br) > maxLen {
		maxLen = len(br)
	}
	return 1 - float64(prev[len(br)])/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// DiceCoefficient is a bigram similarity in [0,1], used to group near-equal
// manufacturer spellings during training-data mining.
func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
