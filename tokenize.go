package colcsv

import (
	"bufio"
	"io"
	"strings"
)

const (
	// DefaultSeparator is the field separator used when none is configured.
	DefaultSeparator byte = '\t'
	// DefaultTerminator is the line terminator used when none is configured.
	DefaultTerminator byte = '\n'
)

// Tokenize splits line on every occurrence of sep. An empty line yields no fields,
// not a single empty field; any other input yields strings.Count(line, sep)+1 fields.
func Tokenize(line string, sep byte) []string {
	if line == "" {
		return nil
	}
	fields := make([]string, 0, strings.Count(line, string([]byte{sep}))+1)
	_ = eachField(line, sep, false, func(_ int, field string) error {
		fields = append(fields, field)
		return nil
	})
	return fields
}

// EachToken calls fn with the 0-based index and text of every field of line,
// following the Tokenize rules. It stops at and returns the first error from fn.
func EachToken(line string, sep byte, fn func(index int, field string) error) error {
	return eachField(line, sep, false, fn)
}

// eachField walks the fields of line. When always is set an empty line still
// produces one empty field, which is how a header line read from a stream behaves.
func eachField(line string, sep byte, always bool, fn func(int, string) error) error {
	if line == "" && !always {
		return nil
	}
	index := 0
	for {
		i := strings.IndexByte(line, sep)
		if i < 0 {
			return fn(index, line)
		}
		if err := fn(index, line[:i]); err != nil {
			return err
		}
		line = line[i+1:]
		index++
	}
}

// readLine returns the next line without its terminator. ok is false once the
// source is exhausted; a final line lacking a terminator is still returned.
func readLine(br *bufio.Reader, endl byte) (line string, ok bool, err error) {
	line, err = br.ReadString(endl)
	switch {
	case err == nil:
		return line[:len(line)-1], true, nil
	case err == io.EOF:
		if line == "" {
			return "", false, nil
		}
		return line, true, nil
	default:
		return "", false, err
	}
}
