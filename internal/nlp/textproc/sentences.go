package textproc

import (
	"strings"
	"unicode"
)

// Abbreviations whose trailing period does not end a sentence
var abbreviations = map[string]bool{
	"u.s": true, "u.k": true, "e.u": true, "inc": true, "corp": true, "ltd": true,
	"mr": true, "mrs": true, "ms": true, "dr": true, "jr": true,
	"vs": true, "etc": true, "e.g": true, "i.e": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
}

// Short forms that are also ordinary words ("No.", "Co.", "St."). Their
// period ends a sentence when the next word is capitalized.
var ambiguousAbbreviations = map[string]bool{
	"no": true, "co": true, "st": true,
}

// Sentences splits text on terminal punctuation (. ! ?) followed by
// whitespace or end of input. Text without a boundary yields exactly one
// sentence: the trimmed input (an empty string for blank input).
func Sentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{""}
	}

	runes := []rune(trimmed)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}

		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if runes[i] == '.' && isAbbreviation(runes[start:i], runes[end:]) {
			i = end - 1
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return []string{trimmed}
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

// isAbbreviation checks the word immediately before a period against the
// text that follows it
func isAbbreviation(prefix, rest []rune) bool {
	i := len(prefix)
	for i > 0 && (unicode.IsLetter(prefix[i-1]) || prefix[i-1] == '.') {
		i--
	}
	word := strings.ToLower(string(prefix[i:]))
	if word == "" {
		return false
	}
	if abbreviations[word] {
		return true
	}
	return ambiguousAbbreviations[word] && !startsUpper(rest)
}

func startsUpper(rest []rune) bool {
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		return unicode.IsUpper(r)
	}
	return false
}
