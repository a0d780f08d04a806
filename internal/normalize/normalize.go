// Package normalize folds catalog text into the canonical form used for
// matching and work clustering.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// kazakhLetters are the Kazakh Cyrillic letters outside the Russian alphabet.
const kazakhLetters = "әіңғүұқөһ"

// noiseWords are publisher boilerplate tokens dropped after folding.
//
//nolint:gochecknoglobals // Static lookup table
var noiseWords = map[string]struct{}{
	"изд":        {},
	"издание":    {},
	"баспасы":    {},
	"publ":       {},
	"publishing": {},
}

//nolint:gochecknoglobals // Static replacement table
var letterFolds = strings.NewReplacer("ё", "е", "Ё", "Е")

// Text returns the normalized form of s.
//
// The steps run in a fixed order: locale-aware lowercasing, ё to е folding,
// replacement of every character outside the supported alphabets, digits and
// whitespace with a space, whitespace collapsing, and removal of noise words.
// The result may be empty. Text is idempotent.
func Text(s string) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, " ")
	}

	// cases.Caser is stateful, so one per call.
	s = cases.Lower(language.Russian).String(s)
	s = letterFolds.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if _, noise := noiseWords[f]; noise {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// FoldLetters applies only the ё to е folding of Text and keeps case,
// punctuation and spacing. Full-text documents go through it so they match
// normalized queries.
func FoldLetters(s string) string {
	return letterFolds.Replace(s)
}

// Tokens returns the whitespace separated tokens of Text(s).
func Tokens(s string) []string {
	return strings.Fields(Text(s))
}

// isWordRune reports whether r survives punctuation stripping. Input is
// already lowercased.
func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 'а' && r <= 'я', r == 'ё':
		return true
	}
	return strings.ContainsRune(kazakhLetters, r)
}
