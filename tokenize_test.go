package colcsv

import (
	"bufio"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		sep   byte
		want  []string
	}{
		{
			name:  "emptyInput",
			input: "",
			sep:   '\t',
			want:  nil,
		},
		{
			name:  "singleField",
			input: "alpha",
			sep:   '\t',
			want:  []string{"alpha"},
		},
		{
			name:  "tabs",
			input: "a\tb\tc",
			sep:   '\t',
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "emptyMiddle",
			input: "1,,3",
			sep:   ',',
			want:  []string{"1", "", "3"},
		},
		{
			name:  "trailingSeparator",
			input: "a,",
			sep:   ',',
			want:  []string{"a", ""},
		},
		{
			name:  "onlySeparator",
			input: ";",
			sep:   ';',
			want:  []string{"", ""},
		},
		{
			name:  "quotesAreData",
			input: "\"a,b\",c",
			sep:   ',',
			want:  []string{"\"a", "b\"", "c"},
		},
		{
			name:  "highByteSeparator",
			input: "a\xe9b\xe9",
			sep:   0xe9,
			want:  []string{"a", "b", ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Tokenize(tc.input, tc.sep)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestEachTokenIndexes(t *testing.T) {
	t.Parallel()

	var indexes []int
	var fields []string
	err := EachToken("x\ty\t", '\t', func(i int, f string) error {
		indexes = append(indexes, i)
		fields = append(fields, f)
		return nil
	})
	if err != nil {
		t.Fatalf("EachToken() error = %v", err)
	}
	if !reflect.DeepEqual(indexes, []int{0, 1, 2}) {
		t.Fatalf("indexes = %v, want [0 1 2]", indexes)
	}
	if !reflect.DeepEqual(fields, []string{"x", "y", ""}) {
		t.Fatalf("fields = %#v", fields)
	}
}

func TestEachTokenStopsOnError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	calls := 0
	err := EachToken("a,b,c", ',', func(i int, _ string) error {
		calls++
		if i == 1 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("EachToken() error = %v, want %v", err, stop)
	}
	if calls != 2 {
		t.Fatalf("callback called %d times, want 2", calls)
	}
}

func TestEachFieldAlwaysEmitsHeaderField(t *testing.T) {
	t.Parallel()

	var fields []string
	_ = eachField("", '\t', true, func(_ int, f string) error {
		fields = append(fields, f)
		return nil
	})
	if !reflect.DeepEqual(fields, []string{""}) {
		t.Fatalf("eachField(always) = %#v, want one empty field", fields)
	}
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	br := bufio.NewReader(strings.NewReader("one|\n|two"))
	want := []string{"one", "\n", "two"}
	for i, w := range want {
		line, ok, err := readLine(br, '|')
		if err != nil || !ok {
			t.Fatalf("readLine() #%d = %q, %v, %v", i, line, ok, err)
		}
		if line != w {
			t.Fatalf("readLine() #%d = %q, want %q", i, line, w)
		}
	}
	if line, ok, err := readLine(br, '|'); ok || err != nil || line != "" {
		t.Fatalf("readLine() at EOF = %q, %v, %v, want no line", line, ok, err)
	}
}
