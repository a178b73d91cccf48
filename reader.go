package colcsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"go.uber.org/zap"
)

const defaultBufferSize = 1 << 12 // 4096 bytes

// ColumnFunc receives one field of a data line. line is 1-based; a non-nil
// error aborts the read and is returned wrapped in a *LineError.
type ColumnFunc func(line int, token string) error

// Reader streams delimited text and dispatches each field to the ColumnFunc
// registered for its header name. Columns present in the header but never
// registered are parsed and discarded.
//
// A Reader may be reused for several reads but is not safe for concurrent use.
type Reader struct {
	// Separator is the field delimiter. Default is '\t'.
	Separator byte
	// Terminator ends every line. Default is '\n'.
	Terminator byte
	// IgnoreExtraFields drops fields beyond the header width instead of failing with ErrExtraField.
	IgnoreExtraFields bool

	// OnHeader, when set, rewrites each header name before it is matched against declared columns.
	OnHeader func(name string) string
	// OnToken, when set, rewrites each bound field before it reaches its ColumnFunc.
	OnToken func(token string) string
	// OnLine, when set, is called after every data line has been dispatched. It never fires for the header.
	OnLine func(line int)

	columns map[string]ColumnFunc

	name      string
	line      int
	done      int
	positions []ColumnFunc
	br        *bufio.Reader
}

// NewReader returns a Reader configured for tab-separated, newline-terminated input.
func NewReader() *Reader {
	return &Reader{
		Separator:  DefaultSeparator,
		Terminator: DefaultTerminator,
		columns:    make(map[string]ColumnFunc),
	}
}

// AddColumn binds fn to the header column called name. Declaring the same name
// twice fails with ErrDuplicateColumn and keeps the first binding. It panics if fn is nil.
func (r *Reader) AddColumn(name string, fn ColumnFunc) error {
	if fn == nil {
		panic("colcsv: column handler cannot be nil")
	}
	if r.columns == nil {
		r.columns = make(map[string]ColumnFunc)
	}
	if _, ok := r.columns[name]; ok {
		return &ColumnError{Name: r.name, Column: name, Index: -1, Err: ErrDuplicateColumn}
	}
	r.columns[name] = fn
	return nil
}

// Columns returns the declared column names, sorted.
func (r *Reader) Columns() []string {
	return slices.Sorted(maps.Keys(r.columns))
}

// Line reports how many data lines of the current or last read were fully dispatched.
func (r *Reader) Line() int {
	return r.done
}

// Read consumes src until EOF: one header line, then data lines. name only
// appears in error messages. src is borrowed and never closed. It returns the
// number of data lines fully processed, which on failure counts the lines
// completed before the failing one. It panics if src is nil.
func (r *Reader) Read(src io.Reader, name string) (int, error) {
	if src == nil {
		panic("colcsv: reader source cannot be nil")
	}
	return r.read(borrowedSource{src}, name)
}

// ReadFile opens path, reads it like Read and closes it. Paths ending in
// CompressedExt are lz4-decompressed on the fly.
func (r *Reader) ReadFile(path string) (int, error) {
	rc, err := openFile(path)
	if err != nil {
		r.reset(path)
		return 0, err
	}
	return r.read(ownedSource{rc}, path)
}

func (r *Reader) read(src source, name string) (n int, err error) {
	r.reset(name)
	if r.br == nil {
		r.br = bufio.NewReaderSize(src, defaultBufferSize)
	} else {
		r.br.Reset(src)
	}

	defer func() {
		r.br.Reset(nil)
		if rerr := src.release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("colcsv: cannot close %q: %w", name, rerr))
		}
		Logger().Debug("read finished",
			zap.String("name", name),
			zap.Int("lines", r.done),
			zap.Error(err))
	}()

	if err := r.readHeader(); err != nil {
		return 0, err
	}
	for {
		ok, err := r.readDataLine()
		if err != nil {
			return r.done, err
		}
		if !ok {
			return r.done, nil
		}
	}
}

// reset clears the per-read state; declared columns and hooks are kept.
func (r *Reader) reset(name string) {
	r.name = name
	r.line = 0
	r.done = 0
	r.positions = r.positions[:0]
}

// readHeader tokenizes line 0 and rebuilds the column-position vector. Every
// missing and every duplicated name is collected before failing; missing
// columns are reported first.
func (r *Reader) readHeader() error {
	line, _, err := readLine(r.br, r.terminator())
	if err != nil {
		return fmt.Errorf("colcsv: cannot read header of %q: %w", r.name, err)
	}

	missing := make(map[string]struct{}, len(r.columns))
	for name := range r.columns {
		missing[name] = struct{}{}
	}
	seen := make(map[string]bool)
	var found, duplicated []string

	_ = eachField(line, r.separator(), true, func(_ int, h string) error {
		if r.OnHeader != nil {
			h = r.OnHeader(h)
		}
		delete(missing, h)
		if dup, ok := seen[h]; ok {
			if !dup {
				duplicated = append(duplicated, h)
				seen[h] = true
			}
		} else {
			seen[h] = false
			found = append(found, h)
		}
		// A nil entry marks an unbound column.
		r.positions = append(r.positions, r.columns[h])
		return nil
	})

	if len(missing) > 0 || len(duplicated) > 0 {
		slices.Sort(duplicated)
		herr := &HeaderError{
			Name:       r.name,
			Missing:    slices.Sorted(maps.Keys(missing)),
			Found:      found,
			Duplicated: duplicated,
			Err:        ErrMissingColumns,
		}
		if len(missing) == 0 {
			herr.Err = ErrDuplicateHeader
		}
		return herr
	}

	Logger().Debug("header bound",
		zap.String("name", r.name),
		zap.Int("fields", len(r.positions)),
		zap.Int("bound", len(r.columns)))
	return nil
}

// readDataLine reads and dispatches one data line. It reports false once the
// source is exhausted; an empty line is a line with no fields, not the end.
func (r *Reader) readDataLine() (bool, error) {
	line, ok, err := readLine(r.br, r.terminator())
	if err != nil {
		return false, fmt.Errorf("colcsv: cannot read %q after line %d: %w", r.name, r.line, err)
	}
	if !ok {
		return false, nil
	}

	r.line++
	if err := eachField(line, r.separator(), false, r.dispatch); err != nil {
		return false, err
	}
	if r.OnLine != nil {
		r.OnLine(r.line)
	}
	r.done = r.line
	return true, nil
}

func (r *Reader) dispatch(col int, token string) error {
	if col >= len(r.positions) {
		if r.IgnoreExtraFields {
			if col == len(r.positions) {
				Logger().Debug("ignoring extra fields",
					zap.String("name", r.name),
					zap.Int("line", r.line),
					zap.Int("header_fields", len(r.positions)))
			}
			return nil
		}
		return &LineError{Name: r.name, Line: r.line, Column: col, Token: token, Err: ErrExtraField}
	}

	fn := r.positions[col]
	if fn == nil {
		return nil
	}
	value := token
	if r.OnToken != nil {
		value = r.OnToken(token)
	}
	if err := fn(r.line, value); err != nil {
		return &LineError{Name: r.name, Line: r.line, Column: col, Token: token, Err: err}
	}
	return nil
}

func (r *Reader) separator() byte {
	if r.Separator == 0 {
		return DefaultSeparator
	}
	return r.Separator
}

func (r *Reader) terminator() byte {
	if r.Terminator == 0 {
		return DefaultTerminator
	}
	return r.Terminator
}
