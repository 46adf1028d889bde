package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gridbench/internal/db"
	"gridbench/internal/grid"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRectangularize(t *testing.T) {
	in := [][]string{{"a"}, {"b", "c", "d"}, {}}
	got := Rectangularize(in)

	assert.Equal(t, [][]string{{"a", "", ""}, {"b", "c", "d"}, {"", "", ""}}, got)
	assert.Equal(t, []string{"a"}, in[0])

	assert.Equal(t, [][]string{{""}}, Rectangularize(nil))
	assert.Equal(t, [][]string{{""}}, Rectangularize([][]string{{}, {}}))
}

func TestFromPath(t *testing.T) {
	src, err := FromPath("data/Sales.CSV", "")
	require.NoError(t, err)
	assert.Equal(t, KindCSV, src.Kind)

	src, err = FromPath("book.xlsx", "Q1")
	require.NoError(t, err)
	assert.Equal(t, KindXLSX, src.Kind)
	assert.Equal(t, "book.xlsx[Q1]", src.String())

	src, err = FromPath("x.tsv", "")
	require.NoError(t, err)
	assert.Equal(t, KindTSV, src.Kind)

	_, err = FromPath("notes.pdf", "")
	require.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoadCSV_PadsRaggedRows(t *testing.T) {
	path := writeFile(t, "in.csv", "name,qty\nwidget,3,extra\n\"quoted, value\"\n")

	store, err := Load(context.Background(), Source{Kind: KindCSV, Path: path})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "qty", ""},
		{"widget", "3", "extra"},
		{"quoted, value", "", ""},
	}, store.Snapshot())
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	store, err := Load(context.Background(), Source{Kind: KindCSV, Path: path})
	require.NoError(t, err)
	assert.Equal(t, grid.Bounds{Rows: 1, Cols: 1}, store.Bounds())
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "in.tsv", "a\tb\nc\td\n")

	store, err := Load(context.Background(), Source{Kind: KindTSV, Path: path})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, store.Snapshot())
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), Source{Kind: KindCSV, Path: filepath.Join(t.TempDir(), "nope.csv")})
	require.ErrorIs(t, err, os.ErrNotExist)

	var ie *ImportError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "nope.csv", ie.Source)
}

func saveWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Header1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Header2"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 100))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", "far"))

	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "second"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX_FirstSheet(t *testing.T) {
	path := saveWorkbook(t)

	store, err := Load(context.Background(), Source{Kind: KindXLSX, Path: path})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Header1", "Header2", ""},
		{"100", "", ""},
		{"", "", "far"},
	}, store.Snapshot())
}

func TestLoadXLSX_NamedSheet(t *testing.T) {
	path := saveWorkbook(t)

	store, err := Load(context.Background(), Source{Kind: KindXLSX, Path: path, Sheet: "Other"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"second"}}, store.Snapshot())

	_, err = Load(context.Background(), Source{Kind: KindXLSX, Path: path, Sheet: "Missing"})
	require.ErrorIs(t, err, ErrSheetNotFound)
}

type fakeQuerier struct {
	sql    string
	result *db.QueryResult
	err    error
}

func (f *fakeQuerier) QueryGrid(_ context.Context, sql string) (*db.QueryResult, error) {
	f.sql = sql
	return f.result, f.err
}

func TestLoadSQL(t *testing.T) {
	q := &fakeQuerier{result: &db.QueryResult{
		Columns: []string{"id", "name"},
		Rows:    [][]string{{"1", "ann"}, {"2", ""}},
	}}

	store, err := Load(context.Background(), Source{Kind: KindSQL, DB: q, Table: "users", Header: true})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users"`, q.sql)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "ann"}, {"2", ""}}, store.Snapshot())

	store, err = Load(context.Background(), Source{Kind: KindSQL, DB: q, Query: "select 1", Table: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "select 1", q.sql)
	assert.Equal(t, 2, store.Rows())
}

func TestLoadSQL_EmptyResultWithoutHeader(t *testing.T) {
	q := &fakeQuerier{result: &db.QueryResult{Columns: []string{"id"}}}

	store, err := Load(context.Background(), Source{Kind: KindSQL, DB: q, Table: "t"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{""}}, store.Snapshot())
}

func TestLoadSQL_Errors(t *testing.T) {
	_, err := Load(context.Background(), Source{Kind: KindSQL, DB: &fakeQuerier{}})
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = Load(context.Background(), Source{Kind: KindSQL, DB: &fakeQuerier{err: boom}, Table: "t"})
	require.ErrorIs(t, err, boom)
}
