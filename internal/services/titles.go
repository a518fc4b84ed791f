package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// displayTitleMaxLen bounds generated display titles in runes.
const displayTitleMaxLen = 60

// Extract Unicode letters with optional trailing numbers (e.g., "inv2025").
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
	"re": {}, "fwd": {}, "fw": {},
}

// DisplayTitle derives a concise, title-cased display heading from an email
// subject, stripping reply/forward markers and filler words. Placeholder
// subjects ("no-subject-<i>") and empty subjects yield "Untitled".
func DisplayTitle(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.HasPrefix(subject, "no-subject-") {
		return "Untitled"
	}
	toks := titleWordRE.FindAllString(strings.ToLower(subject), -1)
	if len(toks) == 0 {
		return "Untitled"
	}

	titleCaser := cases.Title(language.English)
	out := make([]string, 0, 8)
	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, titleCaser.String(w))
		if len(out) >= 8 {
			break
		}
	}
	if len(out) == 0 {
		return "Untitled"
	}
	return clipTitle(strings.Join(out, " "))
}

// clipTitle truncates a generated title to the maximum rune length.
func clipTitle(title string) string {
	if utf8.RuneCountInString(title) > displayTitleMaxLen {
		return string([]rune(title)[:displayTitleMaxLen])
	}
	return title
}
