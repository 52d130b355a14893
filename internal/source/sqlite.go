package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/tabular"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads ridership rows from a table in a SQLite database opened
// read-only. The handle stays open between loads; call Close on shutdown.
type SQLite struct {
	path   string
	table  string
	DB     *sql.DB
	Logger *slog.Logger
}

// OpenSQLite opens path read-only and checks that table exists.
func OpenSQLite(ctx context.Context, path, table string) (*SQLite, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open ridership DB: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLite{path: path, table: table, DB: db}
	if _, err := s.columns(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Name() string { return "sqlite:" + s.path + "#" + s.table }

func (s *SQLite) Close() error {
	return s.DB.Close()
}

// columns returns the known source columns the table carries, in canonical order.
func (s *SQLite) columns(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", s.table)
	if err != nil {
		return nil, fmt.Errorf("error reading table info: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, nil, "sqlite_rows")

	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		have[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(have) == 0 {
		return nil, fmt.Errorf("sqlite table %q not found", s.table)
	}

	var cols []string
	for _, c := range ridership.AllColumns {
		if have[c] {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("sqlite table %q has no ridership columns", s.table)
	}
	return cols, nil
}

func (s *SQLite) Load(ctx context.Context) (ridership.RawBatch, error) {
	logger := logging.Component(s.Logger, "sqlite_loader")

	cols, err := s.columns(ctx)
	if err != nil {
		return ridership.RawBatch{}, err
	}
	if err := (ridership.RawBatch{Columns: ridership.NewColumns(cols...)}).Validate(); err != nil {
		return ridership.RawBatch{}, fmt.Errorf("unusable sqlite table %q: %w", s.table, err)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), s.table)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return ridership.RawBatch{}, fmt.Errorf("error querying ridership rows: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, logger, "sqlite_rows")

	records := [][]string{cols}
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return ridership.RawBatch{}, fmt.Errorf("error scanning ridership row: %w", err)
		}
		rec := make([]string, len(cols))
		for i, c := range cells {
			rec[i] = c.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return ridership.RawBatch{}, err
	}

	batch, report, err := tabular.FromRecords(records)
	if err != nil {
		return ridership.RawBatch{}, err
	}
	if report.Skipped > 0 {
		logging.LogOperation(logger, "sqlite_rows_skipped", slog.Int("skipped", report.Skipped))
	}
	return batch, nil
}
