package scoring

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var specialLatin = strings.NewReplacer(
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"ß", "ss",
	"Ø", "O", "ø", "o",
	"Ð", "D", "ð", "d",
	"Þ", "Th", "þ", "th",
)

// Normalize folds a name for comparison: special Latin ligatures expanded,
// diacritics stripped, whitespace collapsed, lowercased. Matches the
// normalization the corpus pipeline applied when building the registry, so
// query-side and index-side forms compare equal.
func Normalize(text string) string {
	text = specialLatin.Replace(text)
	text = norm.NFKD.String(text)
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range text {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits normalized text into lowercase word tokens, dropping
// stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stopWords covers the query languages the corpus sees: English plus the
// Portuguese and Latin function words common in early-modern questions.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "did": true, "do": true, "does": true,
	"for": true, "from": true, "had": true, "has": true, "have": true,
	"how": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "their": true, "there": true,
	"this": true, "to": true, "was": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "why": true,
	"will": true, "with": true, "you": true, "your": true,
	"o": true, "os": true, "um": true, "uma": true, "de": true,
	"da": true, "dos": true, "das": true, "em": true, "no": true,
	"na": true, "que": true, "e": true, "para": true, "por": true, "com": true,
	"et": true, "est": true, "non": true, "ad": true, "ex": true,
}
