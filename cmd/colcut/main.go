// Command colcut projects and renames the columns of a delimited text file
// according to a YAML job file.
//
//	colcut -config job.yaml -in data.tsv -out picked.tsv
//	colcut -config job.yaml -in data.tsv.lz4 -format json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/oleg578/colcsv"
)

const (
	formatTSV  = "tsv"
	formatJSON = "json"
)

func main() {
	configPath := flag.String("config", "", "YAML job file (required)")
	inPath := flag.String("in", "-", "input file, - for stdin")
	outPath := flag.String("out", "-", "output file, - for stdout")
	format := flag.String("format", formatTSV, "output format: tsv or json")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "colcut: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	colcsv.SetLogger(log)

	if *configPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal("invalid config", zap.String("path", *configPath), zap.Error(err))
	}

	n, err := run(cfg, *format, *inPath, *outPath)
	if err != nil {
		log.Fatal("cut failed", zap.String("in", *inPath), zap.Int("records", n), zap.Error(err))
	}
	log.Info("cut finished", zap.String("in", *inPath), zap.String("out", *outPath), zap.Int("records", n))
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(cfg *Config, format, inPath, outPath string) (n int, err error) {
	var out io.Writer = os.Stdout
	outName := "standard output"
	if outPath != "-" && format == formatJSON {
		f, ferr := os.Create(outPath)
		if ferr != nil {
			return 0, ferr
		}
		defer closeOutput(f, outPath, &err)
		out, outName = f, outPath
	}

	c, err := newCut(cfg, format)
	if err != nil {
		return 0, err
	}
	switch {
	case format == formatTSV && outPath != "-":
		err = c.w.Create(outPath)
	case format == formatTSV:
		err = c.w.SetTarget(out, outName)
	default:
		c.enc = json.NewEncoder(out)
	}
	if err != nil {
		return 0, err
	}

	if inPath == "-" {
		return c.cut(os.Stdin, "standard input")
	}
	return c.cutFile(inPath)
}

// closeOutput closes c and stores the close error in *errp unless an earlier error is already there.
func closeOutput(c io.Closer, name string, errp *error) {
	if err := c.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close %s: %w", name, err)
	}
}

// orderedRow encodes as a JSON object whose keys keep the configured column order.
type orderedRow struct {
	names  []string
	values []string
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range r.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// cutter wires a colcsv.Reader to either a colcsv.Writer or a JSON encoder.
type cutter struct {
	r      *colcsv.Reader
	w      *colcsv.Writer
	enc    *json.Encoder
	names  []string
	row    []string
	encErr error
}

func newCut(cfg *Config, format string) (*cutter, error) {
	if format != formatTSV && format != formatJSON {
		return nil, fmt.Errorf("unknown format %q", format)
	}

	c := &cutter{
		r:     colcsv.NewReader(),
		w:     colcsv.NewWriter(),
		names: make([]string, len(cfg.Columns)),
		row:   make([]string, len(cfg.Columns)),
	}
	if sep := delimiter(cfg.Input.Separator); sep != 0 {
		c.r.Separator = sep
	}
	if endl := delimiter(cfg.Input.Terminator); endl != 0 {
		c.r.Terminator = endl
	}
	if sep := delimiter(cfg.Output.Separator); sep != 0 {
		c.w.Separator = sep
	}
	if endl := delimiter(cfg.Output.Terminator); endl != 0 {
		c.w.Terminator = endl
	}
	c.r.IgnoreExtraFields = cfg.Input.IgnoreExtraFields
	if cfg.Input.Trim {
		c.r.OnHeader = colcsv.TrimSpace
		c.r.OnToken = colcsv.TrimSpace
	}

	for i, col := range cfg.Columns {
		idx, err := c.w.AddColumn(col.OutputName())
		if err != nil {
			return nil, err
		}
		c.names[i] = col.OutputName()
		err = c.r.AddColumn(col.From, func(_ int, token string) error {
			c.row[idx] = token
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	c.r.OnLine = c.endLine
	return c, nil
}

func (c *cutter) endLine(line int) {
	if c.enc != nil {
		if c.encErr != nil {
			return
		}
		if err := c.enc.Encode(orderedRow{names: c.names, values: c.row}); err != nil {
			c.encErr = fmt.Errorf("line %d: %w", line, err)
		}
	} else {
		// Write errors are sticky and surface from Close.
		_ = c.w.WriteTokensAt(0, c.row...)
		_ = c.w.EndLine()
	}
	clear(c.row)
}

func (c *cutter) cut(src io.Reader, name string) (int, error) {
	return c.finish(c.begin(func() (int, error) { return c.r.Read(src, name) }))
}

func (c *cutter) cutFile(path string) (int, error) {
	return c.finish(c.begin(func() (int, error) { return c.r.ReadFile(path) }))
}

func (c *cutter) begin(read func() (int, error)) (int, error) {
	if c.enc == nil {
		if err := c.w.WriteHeader(); err != nil {
			return 0, err
		}
	}
	return read()
}

func (c *cutter) finish(n int, err error) (int, error) {
	if err != nil {
		_ = c.w.Close()
		return n, err
	}
	if c.encErr != nil {
		return n, c.encErr
	}
	if c.enc == nil {
		if err := c.w.Close(); err != nil {
			return n, err
		}
	}
	return n, nil
}
