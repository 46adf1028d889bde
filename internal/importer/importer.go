// Package importer builds the initial grid from a CSV file, an XLSX sheet
// or a PostgreSQL query. Whatever the source, the result is padded to a
// rectangle before the store sees it.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gridbench/internal/db"
	"gridbench/internal/grid"
	"gridbench/internal/log"
)

// ErrUnsupportedSource is returned for a file type gridbench cannot read.
var ErrUnsupportedSource = errors.New("unsupported source")

// ErrSheetNotFound is returned when the requested XLSX sheet is missing.
var ErrSheetNotFound = errors.New("sheet not found")

// ImportError records which source failed.
type ImportError struct {
	Source string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Source, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Kind selects the reader.
type Kind int

const (
	KindCSV Kind = iota
	KindTSV
	KindXLSX
	KindSQL
)

// Querier runs a read-only query. *db.DB satisfies it.
type Querier interface {
	QueryGrid(ctx context.Context, sql string) (*db.QueryResult, error)
}

// Source describes where the grid comes from.
type Source struct {
	Kind Kind

	// Path is the file for CSV, TSV and XLSX sources.
	Path string
	// Sheet picks the XLSX sheet; empty means the first one.
	Sheet string

	// DB, Table and Query configure SQL sources. Query wins over Table.
	DB    Querier
	Table string
	Query string
	// Header prepends the column names as the first row.
	Header bool
}

// String names the source for messages.
func (s Source) String() string {
	switch s.Kind {
	case KindXLSX:
		if s.Sheet != "" {
			return filepath.Base(s.Path) + "[" + s.Sheet + "]"
		}
		return filepath.Base(s.Path)
	case KindSQL:
		if s.Query != "" {
			return "query"
		}
		return s.Table
	default:
		return filepath.Base(s.Path)
	}
}

// FromPath picks a file source by extension.
func FromPath(path, sheet string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return Source{Kind: KindCSV, Path: path}, nil
	case ".tsv", ".tab":
		return Source{Kind: KindTSV, Path: path}, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return Source{Kind: KindXLSX, Path: path, Sheet: sheet}, nil
	default:
		return Source{}, &ImportError{Source: filepath.Base(path), Err: ErrUnsupportedSource}
	}
}

// Load reads src and returns a rectangular store. Empty input yields a
// single empty cell.
func Load(ctx context.Context, src Source) (*grid.Store, error) {
	var (
		rows [][]string
		err  error
	)
	switch src.Kind {
	case KindCSV:
		rows, err = readDelimitedFile(src.Path, ',')
	case KindTSV:
		rows, err = readDelimitedFile(src.Path, '\t')
	case KindXLSX:
		rows, err = readXLSX(src.Path, src.Sheet)
	case KindSQL:
		rows, err = readSQL(ctx, src)
	default:
		err = ErrUnsupportedSource
	}
	if err != nil {
		log.ErrorErr(log.CatImport, "import failed", err, "source", src.String())
		return nil, &ImportError{Source: src.String(), Err: err}
	}

	rows = Rectangularize(rows)
	store, err := grid.New(rows)
	if err != nil {
		return nil, &ImportError{Source: src.String(), Err: err}
	}
	log.Info(log.CatImport, "loaded", "source", src.String(), "rows", store.Rows(), "cols", store.Cols())
	return store, nil
}

// Rectangularize pads every row with empty strings to the widest row's
// length. Input with no cells becomes [[""]]. The input is not modified.
func Rectangularize(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if len(rows) == 0 || width == 0 {
		return [][]string{{""}}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

func readDelimitedFile(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDelimited(f, comma)
}

// ReadDelimited parses CSV-style records. Rows may differ in length and
// stray quotes are tolerated.
func ReadDelimited(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	} else if !contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readSQL(ctx context.Context, src Source) ([][]string, error) {
	if src.DB == nil {
		return nil, errors.New("no database connection")
	}
	sql := src.Query
	if sql == "" {
		if src.Table == "" {
			return nil, errors.New("need a table or a query")
		}
		sql = db.TableQuery(src.Table)
	}
	res, err := src.DB.QueryGrid(ctx, sql)
	if err != nil {
		return nil, err
	}
	if !src.Header {
		return res.Rows, nil
	}
	return append([][]string{res.Columns}, res.Rows...), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
