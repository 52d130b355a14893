package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ridership.subwaydash.org/internal/appconf"
)

// FromConfig returns the configured loaders in fallback order: CSV file,
// remote endpoint, SQLite table. The SQLite source, if any, is also returned
// so callers can ping and close its handle. Every loader logs through logger.
func FromConfig(ctx context.Context, cfg appconf.DataConfig, logger *slog.Logger) ([]Loader, *SQLite, error) {
	var loaders []Loader
	if cfg.CSVPath != "" {
		loaders = append(loaders, CSVFile{Path: cfg.CSVPath, Logger: logger})
	}
	if cfg.RemoteURL != "" {
		remote := NewRemote(cfg.RemoteURL, cfg.RowLimit, cfg.AppToken, cfg.HTTPTimeout)
		remote.Logger = logger
		loaders = append(loaders, remote)
	}
	var db *SQLite
	if cfg.SQLitePath != "" {
		var err error
		if db, err = OpenSQLite(ctx, cfg.SQLitePath, cfg.SQLiteTable); err != nil {
			return nil, nil, fmt.Errorf("failed to open ridership DB: %w", err)
		}
		db.Logger = logger
		loaders = append(loaders, db)
	}
	if len(loaders) == 0 {
		return nil, nil, errors.New("no ridership source configured")
	}
	return loaders, db, nil
}
