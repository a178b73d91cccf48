package colcsv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
)

// CompressedExt marks paths that ReadFile and Writer.Create treat as lz4 frames.
const CompressedExt = ".lz4"

// source is what a Reader pulls lines from. Owned sources are released once the
// read ends; borrowed sources belong to the caller and release is a no-op.
type source interface {
	io.Reader
	release() error
}

type ownedSource struct{ io.ReadCloser }

func (s ownedSource) release() error { return s.Close() }

type borrowedSource struct{ io.Reader }

func (borrowedSource) release() error { return nil }

// target is what a Writer emits lines to, with the same ownership rules as source.
type target interface {
	io.Writer
	release() error
}

type ownedTarget struct{ io.WriteCloser }

func (t ownedTarget) release() error { return t.Close() }

type borrowedTarget struct{ io.Writer }

func (borrowedTarget) release() error { return nil }

type lz4ReadCloser struct {
	*lz4.Reader
	f *os.File
}

func (c *lz4ReadCloser) Close() error { return c.f.Close() }

type lz4WriteCloser struct {
	*lz4.Writer
	f *os.File
}

// Close terminates the lz4 frame before closing the file; the file is closed even if the frame fails.
func (c *lz4WriteCloser) Close() error {
	return errors.Join(c.Writer.Close(), c.f.Close())
}

// openFile opens path for reading, decompressing it when it ends in CompressedExt.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("colcsv: cannot open file %q: %w", path, err)
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return f, nil
	}
	Logger().Debug("reading lz4 compressed file", zap.String("path", path))
	return &lz4ReadCloser{Reader: lz4.NewReader(f), f: f}, nil
}

// createFile creates or truncates path for writing, compressing it when it ends in CompressedExt.
func createFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("colcsv: cannot create file %q: %w", path, err)
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return f, nil
	}
	zw := lz4.NewWriter(f)
	if err := zw.Apply(lz4.BlockSizeOption(lz4.Block64Kb)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("colcsv: cannot configure lz4 for %q: %w", path, err)
	}
	Logger().Debug("writing lz4 compressed file", zap.String("path", path))
	return &lz4WriteCloser{Writer: zw, f: f}, nil
}
