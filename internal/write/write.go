package write

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for output paths without a .csv or .json extension.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// WriteCSV writes the header row and one row per approach, each terminated
// by CRLF. The sequence is consumed once. It returns the number of data rows
// written.
func WriteCSV(w io.Writer, results iter.Seq[*domain.Approach]) (int, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	n := 0
	for a := range results {
		rec, err := NewRecord(a)
		if err != nil {
			return n, err
		}
		if err := cw.Write(rec.CSVRow()); err != nil {
			return n, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush csv: %w", err)
	}
	return n, nil
}

// WriteJSON writes the approaches as an indented JSON array. The output list
// is materialized before encoding, so an empty sequence yields exactly "[]".
func WriteJSON(w io.Writer, results iter.Seq[*domain.Approach]) (int, error) {
	records := make([]Record, 0)
	for a := range results {
		rec, err := NewRecord(a)
		if err != nil {
			return len(records), err
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("write json: %w", err)
	}
	return len(records), nil
}

// To writes results to w in the given format.
func To(w io.Writer, format Format, results iter.Seq[*domain.Approach]) (int, error) {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ToFile writes results to path, choosing the format from its extension.
// Output goes to a temporary file in the same directory that is renamed over
// path only on success, so a failed write never leaves a partial file behind.
func ToFile(path string, results iter.Seq[*domain.Approach]) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	n, err := To(tmp, format, results)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return n, fmt.Errorf("close temp output: %w", err)
	}
	// CreateTemp opens 0600; output is world-readable regardless of umask.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return n, fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return n, fmt.Errorf("rename output: %w", err)
	}
	return n, nil
}
