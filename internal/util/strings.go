package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// HumanizeKey turns a snake_case key into a title-cased label, e.g.
// "pages_processed" -> "Pages Processed".
func HumanizeKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		words[i] = Capitalize(word)
	}
	return strings.Join(words, " ")
}

// LastPathSegment returns the final segment of a slash- or
// backslash-separated path.
func LastPathSegment(path string) string {
	cut := strings.LastIndexAny(path, "/\\")
	if cut < 0 {
		return path
	}
	return path[cut+1:]
}
