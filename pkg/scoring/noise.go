package scoring

import (
	"regexp"
	"strings"
	"unicode"
)

// A noisePredicate flags one structural reason a name is OCR junk or a
// bibliographic artifact rather than a real entity. Predicates are
// independent; IsNoisy is a pure OR over them, so order never affects the
// result.
type noisePredicate struct {
	name  string
	match func(name string, mentions int) bool
}

var (
	ocrGlyphRe   = regexp.MustCompile(`[»«^§|{}†‡¶•☉♀♈〈〉]`)
	biblioRe     = regexp.MustCompile(`(?i)\b(fol\.|lib\.|cap\.|timoth|regum)`)
	yearTokenRe  = regexp.MustCompile(`(?i)^[0-9]{3,4}[a-z]?$`)
	dateWordRe   = regexp.MustCompile(`(?i)\b(janeiro|fevereiro|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro|january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	symbolRe     = regexp.MustCompile(`[£€<>]`)
	wrappedRe    = regexp.MustCompile(`^[_'".()\[\]{}]+|[_'".()\[\]{}]+$`)
	latinScript  = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
	minNonLatin  = 20
	minShortFreq = 10
)

var noisePredicates = []noisePredicate{
	{"ocr_glyph", func(name string, _ int) bool {
		return ocrGlyphRe.MatchString(name)
	}},
	{"bibliographic_fragment", func(name string, _ int) bool {
		return biblioRe.MatchString(name)
	}},
	{"very_short_low_count", func(name string, mentions int) bool {
		return len(name) <= 2 && mentions < minShortFreq
	}},
	{"year_or_page_token", func(name string, _ int) bool {
		return yearTokenRe.MatchString(name)
	}},
	{"date_phrase", func(name string, _ int) bool {
		return dateWordRe.MatchString(name) && countDigits(name) >= 1
	}},
	{"slash_noise", func(name string, mentions int) bool {
		return (strings.ContainsRune(name, '/') || strings.ContainsRune(name, '\\')) && mentions < 100
	}},
	{"symbol_noise", func(name string, _ int) bool {
		return symbolRe.MatchString(name)
	}},
	{"wrapped_punctuation", func(name string, _ int) bool {
		return wrappedRe.MatchString(name)
	}},
	{"numeric_only", func(name string, _ int) bool {
		return countLetters(name) == 0 && countDigits(name) > 0
	}},
	{"punctuation_only", func(name string, _ int) bool {
		return countLetters(name) == 0 && countPunct(name) >= 2
	}},
	{"non_latin_low_count", func(name string, mentions int) bool {
		return !latinScript.MatchString(name) && mentions < minNonLatin
	}},
	{"high_punctuation_ratio", func(name string, _ int) bool {
		letters := countLetters(name)
		if letters == 0 || len(name) == 0 {
			return false
		}
		return float64(countPunct(name))/float64(len(name)) >= 0.35
	}},
	{"high_digit_ratio", func(name string, _ int) bool {
		digits := countDigits(name)
		if len(name) == 0 {
			return false
		}
		return digits >= 4 && float64(digits)/float64(len(name)) > 0.45
	}},
}

// IsNoisy reports whether a candidate name should be rejected before it
// enters any ranking.
func IsNoisy(name string, mentions int) bool {
	return len(NoiseReasons(name, mentions)) > 0
}

// NoiseReasons returns the names of every predicate the name trips. Empty
// input counts as noise.
func NoiseReasons(name string, mentions int) []string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return []string{"empty"}
	}
	var reasons []string
	for _, p := range noisePredicates {
		if p.match(raw, mentions) {
			reasons = append(reasons, p.name)
		}
	}
	return reasons
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func countPunct(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
