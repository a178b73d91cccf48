package colcsv

import (
	"testing"
	"unicode"
)

func TestTrimHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"spaceBoth", TrimSpace, " \tcity \r", "city"},
		{"spaceEmpty", TrimSpace, "   ", ""},
		{"left", TrimLeft, "  habs  ", "habs  "},
		{"right", TrimRight, "  habs \r", "  habs"},
		{"quotes", TrimFunc(func(r rune) bool { return r == '"' }), "\"Paris\"", "Paris"},
		{"digits", TrimFunc(unicode.IsDigit), "12ab34", "ab"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.fn(tc.in); got != tc.want {
				t.Fatalf("trim(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
