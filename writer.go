package colcsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Writer emits delimited text through a declared column table. Values are
// stored in a line buffer, in any order, and written as one line by EndLine.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	// Separator is the field delimiter. Default is '\t'.
	Separator byte
	// Terminator ends every line. Default is '\n'.
	Terminator byte

	name    string
	index   map[string]int
	columns []string
	line    []string
	cursor  int
	lines   int

	dst    *bufio.Writer
	target target
	err    error
}

// NewWriter returns a Writer configured for tab-separated, newline-terminated
// output. It has no target until SetTarget or Create is called.
func NewWriter() *Writer {
	return &Writer{
		Separator:  DefaultSeparator,
		Terminator: DefaultTerminator,
		index:      make(map[string]int),
	}
}

// AddColumn appends a column and returns its index for WriteTokenAt and
// WriteTokensAt. Declaring the same name twice fails with ErrDuplicateColumn.
func (w *Writer) AddColumn(name string) (int, error) {
	if w.index == nil {
		w.index = make(map[string]int)
	}
	if _, ok := w.index[name]; ok {
		return -1, &ColumnError{Name: w.name, Column: name, Index: len(w.columns), Err: ErrDuplicateColumn}
	}
	i := len(w.columns)
	w.index[name] = i
	w.columns = append(w.columns, name)
	w.line = append(w.line, "")
	return i, nil
}

// Index returns the position of the column called name.
func (w *Writer) Index(name string) (int, error) {
	i, ok := w.index[name]
	if !ok {
		return -1, &ColumnError{Name: w.name, Column: name, Index: -1, Err: ErrUnknownColumn}
	}
	return i, nil
}

// Columns returns the declared column names in declaration order.
func (w *Writer) Columns() []string {
	return append([]string(nil), w.columns...)
}

// Name returns the display name of the current target.
func (w *Writer) Name() string {
	return w.name
}

// Line reports how many lines, header included, were written to the current target.
func (w *Writer) Line() int {
	return w.lines
}

// SetTarget directs output to dst, which stays owned by the caller and is never
// closed by the Writer. A previously owned target is flushed and closed first;
// if that fails dst is still installed and the release error is returned.
func (w *Writer) SetTarget(dst io.Writer, name string) error {
	if dst == nil {
		panic("colcsv: writer destination cannot be nil")
	}
	return w.retarget(borrowedTarget{dst}, name)
}

// Create creates or truncates path and directs output to it. The Writer owns the
// file and closes it on Close, Reset or the next SetTarget/Create. Paths ending in
// CompressedExt are lz4-compressed.
func (w *Writer) Create(path string) error {
	relErr := w.releaseTarget()
	wc, err := createFile(path)
	if err != nil {
		w.name = path
		return errors.Join(relErr, err)
	}
	return errors.Join(relErr, w.install(ownedTarget{wc}, path))
}

func (w *Writer) retarget(t target, name string) error {
	relErr := w.releaseTarget()
	return errors.Join(relErr, w.install(t, name))
}

// install makes t the current target and checks that it accepts writes.
func (w *Writer) install(t target, name string) error {
	w.target = t
	w.name = name
	w.lines = 0
	w.cursor = 0
	w.err = nil
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(t, defaultBufferSize)
	} else {
		w.dst.Reset(t)
	}

	Logger().Debug("writer target installed", zap.String("name", name), zap.Bool("owned", isOwned(t)))

	// A zero-length write reaches the sink without emitting data; closed files reject it.
	if _, err := t.Write(nil); err != nil {
		w.err = fmt.Errorf("%w: name=%q: %w", ErrNotWritable, name, err)
		return w.err
	}
	return nil
}

// releaseTarget flushes pending output and releases the current target. The
// target is detached before release so an owned sink is closed exactly once,
// even when closing fails.
func (w *Writer) releaseTarget() error {
	t := w.target
	if t == nil {
		return nil
	}
	w.target = nil

	flushErr := w.err
	if flushErr == nil {
		flushErr = w.dst.Flush()
	}
	w.dst.Reset(io.Discard)
	relErr := t.release()

	Logger().Debug("writer target released",
		zap.String("name", w.name),
		zap.Bool("owned", isOwned(t)),
		zap.NamedError("flush_error", flushErr),
		zap.NamedError("close_error", relErr))

	if flushErr != nil || relErr != nil {
		return fmt.Errorf("colcsv: cannot release %q: %w", w.name, errors.Join(flushErr, relErr))
	}
	return nil
}

// WriteHeader writes the declared column names as one line and resets the positional cursor.
func (w *Writer) WriteHeader() error {
	if err := w.writeFields(w.columns); err != nil {
		return err
	}
	w.cursor = 0
	return nil
}

// WriteToken stores value in the buffered line under the column called name.
// A later write to the same column before EndLine replaces it.
func (w *Writer) WriteToken(name, value string) error {
	i, err := w.Index(name)
	if err != nil {
		return err
	}
	w.line[i] = value
	return nil
}

// WriteTokenAt stores value in the buffered line at column index i.
func (w *Writer) WriteTokenAt(i int, value string) error {
	if err := w.checkRange(i, 1); err != nil {
		return err
	}
	w.line[i] = value
	return nil
}

// WriteTokens stores values at successive columns starting from an internal
// cursor. The cursor persists across calls and returns to 0 after EndLine.
func (w *Writer) WriteTokens(values ...string) error {
	if err := w.checkRange(w.cursor, len(values)); err != nil {
		return err
	}
	w.cursor += copy(w.line[w.cursor:], values)
	return nil
}

// WriteTokensAt stores values at successive columns starting at i. The WriteTokens cursor is not moved.
func (w *Writer) WriteTokensAt(i int, values ...string) error {
	if err := w.checkRange(i, len(values)); err != nil {
		return err
	}
	copy(w.line[i:], values)
	return nil
}

// WriteLine writes values as a complete line, bypassing the line buffer. The
// number of values must equal the number of columns; otherwise nothing is
// written and ErrFieldCount is returned.
func (w *Writer) WriteLine(values ...string) error {
	if len(values) != len(w.columns) {
		return fmt.Errorf("%w: got %d values for %d columns, name=%q", ErrFieldCount, len(values), len(w.columns), w.name)
	}
	return w.writeFields(values)
}

// EndLine writes the buffered line, then clears every slot and resets the
// cursor. If the write fails the buffered line and cursor are left intact.
func (w *Writer) EndLine() error {
	if err := w.writeFields(w.line); err != nil {
		return err
	}
	clear(w.line)
	w.cursor = 0
	return nil
}

// Flush writes any buffered data to the target.
func (w *Writer) Flush() error {
	if w.target == nil {
		return w.noTarget()
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first I/O error encountered on the current target.
func (w *Writer) Error() error {
	return w.err
}

// Close flushes and releases the target, closing it only if the Writer owns it,
// and clears the line buffer. Declared columns are kept, so the Writer can be
// pointed at a new target. After closing an owned target the name reads
// "<closed NAME>"; a borrowed target keeps its name.
func (w *Writer) Close() error {
	owned := isOwned(w.target)
	err := w.releaseTarget()
	if owned && w.name != "" && !strings.HasPrefix(w.name, "<closed ") {
		w.name = "<closed " + w.name + ">"
	}
	clear(w.line)
	w.cursor = 0
	w.lines = 0
	w.err = nil
	return err
}

// Reset closes the Writer and discards all declared columns, returning it to
// the state NewWriter produces. Separator and Terminator are kept.
func (w *Writer) Reset() error {
	err := w.Close()
	w.index = make(map[string]int)
	w.columns = nil
	w.line = nil
	return err
}

func (w *Writer) writeFields(fields []string) error {
	if w.target == nil {
		return w.noTarget()
	}
	if w.err != nil {
		return w.err
	}
	sep := w.separator()
	for i, f := range fields {
		if i > 0 {
			if err := w.dst.WriteByte(sep); err != nil {
				w.err = err
				return err
			}
		}
		if _, err := w.dst.WriteString(f); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.dst.WriteByte(w.terminator()); err != nil {
		w.err = err
		return err
	}
	w.lines++
	return nil
}

func (w *Writer) checkRange(i, n int) error {
	if i < 0 || i+n > len(w.columns) {
		return fmt.Errorf("%w: index %d, %d values, %d columns, name=%q", ErrIndexRange, i, n, len(w.columns), w.name)
	}
	return nil
}

func (w *Writer) noTarget() error {
	return fmt.Errorf("%w: name=%q", ErrNoTarget, w.name)
}

func (w *Writer) separator() byte {
	if w.Separator == 0 {
		return DefaultSeparator
	}
	return w.Separator
}

func (w *Writer) terminator() byte {
	if w.Terminator == 0 {
		return DefaultTerminator
	}
	return w.Terminator
}

func isOwned(t target) bool {
	_, ok := t.(ownedTarget)
	return ok
}
