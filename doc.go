// # colcsv: Column-Bound Streaming TSV/CSV for Go
//
// colcsv reads and writes simple delimited text (tab-separated by default) one line at a time and binds columns by header name instead of by position.
//
// # Features
//
// - Streaming Reader that maps header names to per-column callbacks and dispatches every field as the line is read.
// - Complete header diagnostics: every missing column and every duplicated header name is reported at once via `HeaderError`.
// - Handler failures wrapped in `LineError` with the source name, line, column and raw token.
// - Writer with a name/index column table and a line buffer, so values can be written out of order and emitted as one line by `EndLine`.
// - Owned and borrowed targets: `ReadFile` and `Writer.Create` own the file they open, `Read` and `Writer.SetTarget` never close what they are given.
// - Transparent lz4 compression for paths ending in `.lz4`.
//
// There is no quoting grammar. A separator or terminator byte inside data is always a boundary.
//
// # Getting Started
//
//	r := colcsv.NewReader()
//	r.OnHeader = colcsv.TrimSpace
//	_ = r.AddColumn("city", func(line int, token string) error {
//		city = token
//		return nil
//	})
//	n, err := r.ReadFile("cities.tsv")
//
// Debug logging goes through go.uber.org/zap; install a logger with SetLogger.
package colcsv
