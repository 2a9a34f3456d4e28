package screening

import (
	"regexp"
	"strings"
	"unicode"
)

// NameUnknown marks a candidate whose name could not be extracted.
const NameUnknown = "Unknown"

const maxNameTokens = 3

var (
	resumeDisallowed = regexp.MustCompile(`[^\w\s.,;:!?()\-+/@&%$#*]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	spaceBeforeClose = regexp.MustCompile(`\s+([.,;:!?)])`)
	spaceAfterOpen   = regexp.MustCompile(`\(\s+`)

	nameDisallowed = regexp.MustCompile(`[^A-Za-z\s.,-]`)
)

// NormalizeResumeText cleans raw extracted resume text into a canonical form:
// characters outside the allow-list become spaces, whitespace runs collapse to
// a single space, spacing around punctuation is tightened and sentence starts
// are re-capitalized.
func NormalizeResumeText(raw string) string {
	if raw == "" {
		return ""
	}

	text := resumeDisallowed.ReplaceAllString(raw, " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = spaceBeforeClose.ReplaceAllString(text, "$1")
	text = spaceAfterOpen.ReplaceAllString(text, "(")

	return capitalizeSentences(strings.TrimSpace(text))
}

// NormalizeName cleans an extracted candidate name: non-name characters are
// stripped, whitespace collapsed, the token count capped and the result
// title-cased. The unknown sentinel passes through unchanged.
func NormalizeName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NameUnknown {
		return NameUnknown
	}

	clean := nameDisallowed.ReplaceAllString(raw, "")
	tokens := strings.Fields(clean)
	if len(tokens) == 0 {
		return NameUnknown
	}

	if len(tokens) > maxNameTokens {
		tokens = tokens[:maxNameTokens]
	}

	return titleWords(strings.Join(tokens, " "))
}

// capitalizeSentences upper-cases the first letter of the text and of every
// sentence following a `.`, `!` or `?` plus whitespace boundary.
func capitalizeSentences(s string) string {
	runes := []rune(s)
	capNext := true

	for i, r := range runes {
		if capNext {
			if unicode.IsLetter(r) {
				runes[i] = unicode.ToUpper(r)
				capNext = false
			} else if !unicode.IsSpace(r) {
				capNext = false
			}
		}

		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				capNext = true
			}
		}
	}

	return string(runes)
}

// titleWords capitalizes the first letter of each whitespace-separated word and
// lower-cases the rest.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
