package datasets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/vizdash/internal/frame"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrBadSource is returned for source strings that cannot be parsed.
var ErrBadSource = errors.New("datasets: bad source")

// Open resolves a source string and loads the dataset it names.
//
//	builtin:<name>             embedded sample
//	csv:<path> or <path>.csv   CSV file with a header row
//	sqlite:<path>?table=<t>    every row of one SQLite table
//
// cols declares the columns the caller reads. External sources load only
// those columns and parse them as the declared kind; builtin sources are
// checked against them. Any missing column fails with frame.ErrMissingColumn.
func Open(ctx context.Context, source string, cols ...frame.Column) (*frame.Dataset, error) {
	scheme, rest, ok := strings.Cut(source, ":")
	if !ok || len(scheme) == 1 {
		// bare path (a one-letter scheme is a windows drive)
		scheme, rest = "csv", source
	}

	switch scheme {
	case "builtin":
		ds, err := Builtin(rest)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			if _, err := ds.Schema().Require(c.Name, c.Kind); err != nil {
				return nil, err
			}
		}
		return ds, nil
	case "csv":
		return openCSV(rest, cols)
	case "sqlite":
		return openSQLite(ctx, rest, cols)
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", ErrBadSource, scheme)
	}
}

func openCSV(path string, cols []frame.Column) (*frame.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return frame.ReadCSV(name, f, cols...)
}

func openSQLite(ctx context.Context, spec string, cols []frame.Column) (*frame.Dataset, error) {
	path, query, _ := strings.Cut(spec, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSource, err)
	}
	table := params.Get("table")
	if path == "" || table == "" {
		return nil, fmt.Errorf("%w: sqlite source needs a path and ?table=", ErrBadSource)
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+strings.ReplaceAll(table, `"`, `""`)+`"`)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var records [][]string
	vals := make([]sql.NullString, len(header))
	ptrs := make([]any, len(header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = v.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return frame.FromRecords(table, header, records, cols...)
}
