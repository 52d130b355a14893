package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"ridership.subwaydash.org/internal/ridership"
)

// ToFrame loads a derived table into an all-string frame.
func ToFrame(t ridership.Table) dataframe.DataFrame {
	records := append([][]string{t.Header()}, t.Records()...)
	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
}

// WriteCSV writes a derived table with its header. Tables without rows are
// written as a bare header because a frame cannot hold zero rows.
func WriteCSV(w io.Writer, t ridership.Table) error {
	if len(t.Records()) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header()); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	df := ToFrame(t)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	return df.WriteCSV(w)
}

// WriteCSVFile writes t to dir/name.csv.
func WriteCSVFile(dir, name string, t ridership.Table) (err error) {
	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := WriteCSV(f, t); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
