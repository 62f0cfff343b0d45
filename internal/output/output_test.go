package output

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gmapscrape/internal/business"
)

var records = []business.Record{
	{Index: 1, Name: "Blue Door Cafe", Rating: "4.6", Category: "Coffee shop", Address: "123 Main St", Phone: "(217) 555-0100"},
	{Index: 2, Name: "Red Cup <Bistro>", Rating: "3.8", Category: "Bistro", Website: "https://redcup.example.com"},
}

func fixedExporter(t *testing.T) (*Exporter, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	e := New(t.TempDir(), zap.New(core))
	e.now = func() time.Time { return time.Unix(1700000000, 0) }
	return e, logs
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"coffee shops", "coffee_shops"},
		{"  Austin, TX! ", "Austin_TX"},
		{"café & bar", "café__bar"},
		{"self-serve_wash", "self-serve_wash"},
		{"東京 ラーメン", "東京_ラーメン"},
		{"?!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	require.Equal(t, "coffee_shops_Austin_TX_1700000000.csv", Filename("coffee shops", "Austin, TX", ts, "csv"))
	require.Equal(t, "pizza_1700000000.json", Filename("pizza", "", ts, "json"))
}

func TestExportWritesEveryFormat(t *testing.T) {
	e, _ := fixedExporter(t)
	paths, err := e.Export(context.Background(), records, Meta{Query: "coffee", Location: "Springfield", RunID: "run-1"}, Formats)
	require.NoError(t, err)
	require.Len(t, paths, len(Formats))
	for i, f := range Formats {
		require.Equal(t, filepath.Join(e.dir, "coffee_Springfield_1700000000."+f), paths[i])
		require.FileExists(t, paths[i])
	}
}

func TestExportEmptyWritesNothing(t *testing.T) {
	e, logs := fixedExporter(t)
	paths, err := e.Export(context.Background(), nil, Meta{Query: "coffee"}, []string{"csv", "json"})
	require.NoError(t, err)
	require.Empty(t, paths)
	require.Equal(t, 1, logs.FilterMessage("no businesses to save").Len())

	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestExportUnknownFormat(t *testing.T) {
	e, _ := fixedExporter(t)
	_, err := e.Export(context.Background(), records, Meta{Query: "coffee"}, []string{"csv", "parquet"})
	require.ErrorIs(t, err, ErrUnknownFormat)

	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"index,name,rating,category,address,phone,website\n"+
			"1,Blue Door Cafe,4.6,Coffee shop,123 Main St,(217) 555-0100,\n"+
			"2,Red Cup <Bistro>,3.8,Bistro,,,https://redcup.example.com\n", string(data))
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  {\n    \"index\": 1,")
	require.Contains(t, string(data), "Red Cup <Bistro>")

	got, err := ReadJSON(path)
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestReadJSONInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o644))
	_, err := ReadJSON(path)
	require.ErrorContains(t, err, "failed to parse")
}

func TestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rep := business.NewReport(records)
	rep.RunID = "run-1"
	require.NoError(t, WriteXLSX(path, records, rep))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{businessSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(businessSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"index", "name", "rating", "category", "address", "phone", "website"}, rows[0])
	require.Equal(t, "Blue Door Cafe", rows[1][1])
	require.Equal(t, "https://redcup.example.com", rows[2][6])

	total, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	require.Equal(t, "2", total)
	runID, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	require.Equal(t, "run-1", runID)
}

func TestSQLiteUpserts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.sqlite")
	require.NoError(t, WriteSQLite(ctx, path, records, "run-1"))

	updated := []business.Record{records[0]}
	updated[0].Phone = "(217) 555-0199"
	require.NoError(t, WriteSQLite(ctx, path, updated, "run-2"))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&n))
	require.Equal(t, 2, n)

	var phone, runID string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT phone, run_id FROM businesses WHERE record_key = ?`, records[0].Key()).Scan(&phone, &runID))
	require.Equal(t, "(217) 555-0199", phone)
	require.Equal(t, "run-2", runID)
}
