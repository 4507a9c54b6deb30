package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/write"
)

// TextSink prints one human-readable line per approach.
type TextSink struct {
	W io.Writer
}

func (TextSink) Name() string { return "stdout" }

func (s TextSink) Write(ctx context.Context, results iter.Seq[*domain.Approach]) (int, error) {
	n := 0
	for a := range results {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := fmt.Fprintln(s.W, a); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// StreamSink encodes results as CSV or JSON onto an io.Writer.
type StreamSink struct {
	W      io.Writer
	Format write.Format
}

func (s StreamSink) Name() string { return string(s.Format) }

func (s StreamSink) Write(ctx context.Context, results iter.Seq[*domain.Approach]) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return write.To(s.W, s.Format, results)
}

// FileSink writes results to Path, with the format taken from its extension.
type FileSink struct {
	Path string
}

// Name reports the output format, or "file" when the extension is not recognised.
func (s FileSink) Name() string {
	format, err := write.FormatFromPath(s.Path)
	if err != nil {
		return "file"
	}
	return string(format)
}

func (s FileSink) Write(ctx context.Context, results iter.Seq[*domain.Approach]) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return write.ToFile(s.Path, results)
}
