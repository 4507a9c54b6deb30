// Package extract reads JPL neos.csv and cad.json exports into domain entities.
package extract

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// ErrMalformedInput is returned when a file cannot be read as the expected
// container format (as opposed to a single bad record).
var ErrMalformedInput = errors.New("malformed input")

// Report counts the records a load accepted and rejected.
type Report struct {
	Accepted int
	Rejected int
}

// Loader turns raw rows into entities. In strict mode the first invalid
// record aborts the load; otherwise invalid records are logged and skipped.
type Loader struct {
	strict bool
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(strict bool, logger *slog.Logger) *Loader {
	return &Loader{strict: strict, logger: logger}
}

// LoadNEOs reads a neos.csv export. The header row supplies the field names.
func (l *Loader) LoadNEOs(ctx context.Context, r io.Reader) ([]*domain.NEO, Report, error) {
	var report Report

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, fmt.Errorf("%w: neos csv has no header row", ErrMalformedInput)
		}
		return nil, report, fmt.Errorf("%w: read neos csv header: %w", ErrMalformedInput, err)
	}

	var neos []*domain.NEO
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: read neos csv line %d: %w", ErrMalformedInput, line, err)
		}

		neo, err := domain.NewNEO(domain.NEORecordFromFields(zip(header, row)))
		if err != nil {
			if rejectErr := l.reject("neo", line, err, &report); rejectErr != nil {
				return nil, report, rejectErr
			}
			continue
		}
		neos = append(neos, neo)
		report.Accepted++
	}

	l.logger.Info("neos loaded", "accepted", report.Accepted, "rejected", report.Rejected)
	return neos, report, nil
}

// cadFile is the SBDB Close-Approach Data API response shape.
type cadFile struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// LoadApproaches reads a cad.json export. Null cells are treated as empty.
func (l *Loader) LoadApproaches(ctx context.Context, r io.Reader) ([]*domain.Approach, Report, error) {
	var report Report

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var file cadFile
	if err := dec.Decode(&file); err != nil {
		return nil, report, fmt.Errorf("%w: decode cad json: %w", ErrMalformedInput, err)
	}
	if len(file.Fields) == 0 {
		return nil, report, fmt.Errorf("%w: cad json has no fields", ErrMalformedInput)
	}

	approaches := make([]*domain.Approach, 0, len(file.Data))
	for i, cells := range file.Data {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = cellString(cell)
		}

		a, err := domain.NewApproach(domain.ApproachRecordFromFields(zip(file.Fields, row)))
		if err != nil {
			if rejectErr := l.reject("approach", i+1, err, &report); rejectErr != nil {
				return nil, report, rejectErr
			}
			continue
		}
		approaches = append(approaches, a)
		report.Accepted++
	}

	l.logger.Info("approaches loaded", "accepted", report.Accepted, "rejected", report.Rejected)
	return approaches, report, nil
}

// reject records an invalid record and returns a non-nil error if the load
// must stop.
func (l *Loader) reject(entity string, record int, err error, report *Report) error {
	report.Rejected++
	if l.strict {
		return fmt.Errorf("%s record %d: %w", entity, record, err)
	}
	l.logger.Warn("skipping invalid record", "entity", entity, "record", record, "error", err)
	return nil
}

// zip pairs header names with row values; short rows yield empty values.
func zip(header, row []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		} else {
			fields[name] = ""
		}
	}
	return fields
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case json.Number:
		return c.String()
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

// FileSource loads NEOs and approaches from files on disk.
type FileSource struct {
	NEOPath string
	CADPath string
	Loader  *Loader
}

func (s *FileSource) LoadNEOs(ctx context.Context) ([]*domain.NEO, Report, error) {
	f, err := os.Open(s.NEOPath)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open neo file: %w", err)
	}
	defer f.Close()
	return s.Loader.LoadNEOs(ctx, f)
}

func (s *FileSource) LoadApproaches(ctx context.Context) ([]*domain.Approach, Report, error) {
	f, err := os.Open(s.CADPath)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open close approach file: %w", err)
	}
	defer f.Close()
	return s.Loader.LoadApproaches(ctx, f)
}
