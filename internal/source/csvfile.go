package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/tabular"
)

// CSVFile reads a local CSV export. Paths ending in ".gz" are decompressed.
type CSVFile struct {
	Path string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (f CSVFile) Name() string { return "csv:" + f.Path }

func (f CSVFile) Load(ctx context.Context) (ridership.RawBatch, error) {
	if err := ctx.Err(); err != nil {
		return ridership.RawBatch{}, err
	}
	logger := logging.Component(f.Logger, "csv_loader")

	file, err := os.Open(f.Path)
	if err != nil {
		return ridership.RawBatch{}, fmt.Errorf("error reading local ridership file: %w", err)
	}
	defer logging.SafeCloseWithLogging(file, logger, "csv_file")

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(f.Path), ".gz") {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return ridership.RawBatch{}, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer logging.SafeCloseWithLogging(zr, logger, "gzip_reader")
		r = zr
	}

	batch, report, err := tabular.ReadCSV(r)
	if err != nil {
		return ridership.RawBatch{}, err
	}
	if err := batch.Validate(); err != nil {
		return ridership.RawBatch{}, fmt.Errorf("unusable ridership file %s: %w", f.Path, err)
	}
	if report.Skipped > 0 {
		logging.LogOperation(logger, "csv_rows_skipped",
			slog.String("path", f.Path), slog.Int("skipped", report.Skipped))
	}
	return batch, nil
}
