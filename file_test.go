package colcsv

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeCityFile(t *testing.T, path string) {
	t.Helper()

	w := NewWriter()
	iCity, _ := w.AddColumn("city")
	iHabs, _ := w.AddColumn("habs")
	if err := w.Create(path); err != nil {
		t.Fatalf("Create(%q) error = %v", path, err)
	}
	if w.Name() != path {
		t.Fatalf("Name() = %q, want %q", w.Name(), path)
	}
	_ = w.WriteHeader()
	_ = w.WriteTokenAt(iHabs, "2.10 M")
	_ = w.WriteTokenAt(iCity, "Paris")
	_ = w.EndLine()
	_ = w.WriteLine("Tunis", "599 k")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func readCityFile(t *testing.T, path string) []string {
	t.Helper()

	var rows []string
	var city, habs string
	r := NewReader()
	_ = r.AddColumn("city", func(_ int, s string) error {
		city = s
		return nil
	})
	_ = r.AddColumn("habs", func(_ int, s string) error {
		habs = s
		return nil
	})
	r.OnLine = func(int) {
		rows = append(rows, city+"="+habs)
	}

	n, err := r.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", path, err)
	}
	if n != len(rows) {
		t.Fatalf("ReadFile() = %d, want %d", n, len(rows))
	}
	return rows
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cities.tsv", "cities.tsv" + CompressedExt} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			writeCityFile(t, path)

			got := readCityFile(t, path)
			want := []string{"Paris=2.10 M", "Tunis=599 k"}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("rows = %v, want %v", got, want)
			}
		})
	}
}

func TestFileCompressedOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.tsv")
	packed := filepath.Join(dir, "packed.tsv"+CompressedExt)
	writeCityFile(t, plain)
	writeCityFile(t, packed)

	raw, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(raw) != "city\thabs\nParis\t2.10 M\nTunis\t599 k\n" {
		t.Fatalf("plain contents %q", raw)
	}
	z, err := os.ReadFile(packed)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	// lz4 frame magic number, little endian.
	if !bytes.HasPrefix(z, []byte{0x04, 0x22, 0x4d, 0x18}) {
		t.Fatalf("compressed file does not start with an lz4 frame: % x", z[:min(len(z), 8)])
	}
}

func TestFileRetargetClosesPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "first.tsv")
	second := filepath.Join(dir, "second.tsv")

	w := NewWriter()
	_, _ = w.AddColumn("v")
	if err := w.Create(first); err != nil {
		t.Fatalf("Create(first) error = %v", err)
	}
	_ = w.WriteLine("1")
	if err := w.Create(second); err != nil {
		t.Fatalf("Create(second) error = %v", err)
	}
	_ = w.WriteLine("2")
	if err := w.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	for path, want := range map[string]string{first: "1\n", second: "2\n"} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q) error = %v", path, err)
		}
		if string(got) != want {
			t.Fatalf("%s contents %q, want %q", path, got, want)
		}
	}
}

func TestFileOpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	r := NewReader()
	n, err := r.ReadFile(filepath.Join(dir, "absent.tsv"))
	if !errors.Is(err, fs.ErrNotExist) || n != 0 {
		t.Fatalf("ReadFile(absent) = %d, %v, want fs.ErrNotExist", n, err)
	}

	w := NewWriter()
	err = w.Create(filepath.Join(dir, "no", "such", "dir.tsv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Create(missing dir) error = %v, want fs.ErrNotExist", err)
	}
	if err := w.WriteHeader(); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("WriteHeader() after failed Create error = %v, want ErrNoTarget", err)
	}
}
