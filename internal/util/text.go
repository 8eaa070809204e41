package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ContainsAny returns true if text contains any of the needles (case-insensitive).
func ContainsAny(text string, needles []string) bool {
	lt := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// WordSet lowercases and splits on whitespace, returning the set of words.
func WordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

// Jaccard computes |A∩B| / max(|A|,|B|) over the word sets of a and b.
func Jaccard(a, b string) float64 {
	wa := WordSet(a)
	wb := WordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	den := len(wa)
	if len(wb) > den {
		den = len(wb)
	}
	return float64(inter) / float64(den)
}

// Window extracts up to pad characters either side of the first occurrence
// of needle in text (both lowercased). Pad counts runes so multi-byte text
// is never split mid-rune. Returns "" if needle is absent.
func Window(text, needle string, pad int) string {
	lt := strings.ToLower(text)
	ln := strings.ToLower(needle)
	i := strings.Index(lt, ln)
	if i < 0 {
		return ""
	}
	start := i
	for n := 0; n < pad && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(lt[:start])
		start -= size
	}
	end := i + len(ln)
	for n := 0; n < pad && end < len(lt); n++ {
		_, size := utf8.DecodeRuneInString(lt[end:])
		end += size
	}
	return lt[start:end]
}

// AppendBounded appends v and truncates to the most recent max entries.
func AppendBounded(ring []string, v string, max int) []string {
	ring = append(ring, v)
	if len(ring) > max {
		ring = ring[len(ring)-max:]
	}
	return ring
}

// Tokenize splits on spaces and punctuation.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	repl := strings.NewReplacer(
		",", " ", ".", " ", "!", " ", "?", " ", ":", " ", ";", " ",
		"\n", " ", "\t", " ", "\r", " ", "(", " ", ")", " ", "[", " ", "]", " ",
	)
	s = repl.Replace(s)
	return strings.Fields(s)
}
