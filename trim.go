package colcsv

import (
	"strings"
	"unicode"
)

// TrimSpace removes leading and trailing white space. It fits Reader.OnHeader and Reader.OnToken.
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// TrimLeft removes leading white space.
func TrimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// TrimRight removes trailing white space, including a '\r' left by CRLF input.
func TrimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// TrimFunc returns a hook that trims every leading and trailing rune satisfying f.
func TrimFunc(f func(rune) bool) func(string) string {
	return func(s string) string {
		return strings.TrimFunc(s, f)
	}
}
