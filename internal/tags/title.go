package tags

import (
	"strings"
	"unicode/utf8"
)

// NormalizeTitle maps underscores to spaces, the stored form of titles.
func NormalizeTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// DefaultAlias is the alias registered when none is supplied:
// "<category>:<title>" for characters and artists, the bare title otherwise.
func DefaultAlias(title, category string) string {
	switch category {
	case CategoryCharacter, CategoryArtist:
		return category + ":" + title
	default:
		return title
	}
}

// SwapSeparators returns the alias with spaces turned into underscores, or
// underscores into spaces when it has no spaces. It returns the alias
// unchanged when it has neither.
func SwapSeparators(alias string) string {
	switch {
	case strings.Contains(alias, " "):
		return strings.ReplaceAll(alias, " ", "_")
	case strings.Contains(alias, "_"):
		return strings.ReplaceAll(alias, "_", " ")
	default:
		return alias
	}
}

// ShortenTitle fits s into size characters. Longer strings keep as many
// leading words as fit and end with "…".
func ShortenTitle(s string, size int) string {
	if utf8.RuneCountInString(s) <= size {
		return s
	}

	sep := " "
	if strings.Contains(s, "_") {
		sep = "_"
	}
	words := strings.Split(s, sep)

	n := 1
	for n < len(words) && utf8.RuneCountInString(strings.Join(words[:n+1], " ")+"…") < size {
		n++
	}

	shortened := []rune(strings.Join(words[:n], " ") + "…")
	if len(shortened) > size {
		shortened = shortened[:size]
	}
	return string(shortened)
}
