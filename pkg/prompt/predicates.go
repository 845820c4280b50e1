package prompt

import (
	"regexp"
	"strings"
)

// Rule registries for the two lexical heuristics the assembler needs. Each
// rule is independently testable; detection is an OR over the registry.

// institutionalNouns mark persona names that speak as a body rather than a
// person: these get the first-person-plural procedural voice.
var institutionalNouns = []string{
	"college", "colegio", "colégio",
	"hospital",
	"academy", "academia",
	"society", "sociedade",
	"university", "universidade",
	"convent", "convento",
	"monastery", "mosteiro",
	"tribunal",
	"order", "ordem",
	"pharmacopoeia", "pharmacopeia",
}

// IsInstitutionalVoice reports whether the persona name names an
// institution rather than an individual author.
func IsInstitutionalVoice(personaName string) bool {
	lower := strings.ToLower(personaName)
	for _, noun := range institutionalNouns {
		if strings.Contains(lower, noun) {
			return true
		}
	}
	return false
}

// proceduralPatterns match questions asking for treatments, preparations,
// or dosages; answers to these must include a comparison table.
var proceduralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcures?\b`),
	regexp.MustCompile(`(?i)\bremed(y|ies)\b`),
	regexp.MustCompile(`(?i)\bdos(e|es|age)\b`),
	regexp.MustCompile(`(?i)\btreat(s|ed|ment|ments)?\b`),
	regexp.MustCompile(`(?i)\bprepar(e|ation)s?\b`),
	regexp.MustCompile(`(?i)\brecipes?\b`),
	regexp.MustCompile(`(?i)\bhow\s+(do|to|should).{0,40}\b(heal|cure|treat|administer)\b`),
}

// IsProceduralQuestion reports whether the question asks for a procedure,
// remedy, or dosage.
func IsProceduralQuestion(question string) bool {
	for _, re := range proceduralPatterns {
		if re.MatchString(question) {
			return true
		}
	}
	return false
}
