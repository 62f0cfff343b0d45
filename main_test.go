package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gmapscrape/internal/business"
	"gmapscrape/internal/config"
	"gmapscrape/internal/output"
)

func TestConfigKeysHaveFlags(t *testing.T) {
	root := newRootCmd()
	for _, cmd := range root.Commands() {
		keys := map[string]string{}
		for k, v := range globalKeys {
			keys[k] = v
		}
		for k, v := range commandKeys[cmd.Name()] {
			keys[k] = v
		}
		for key, name := range keys {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				f = cmd.InheritedFlags().Lookup(name)
			}
			require.NotNil(t, f, "command %s: flag %q for %s", cmd.Name(), name, key)
		}
	}
}

func TestScraperOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Browser: config.Browser{Timeout: 20 * time.Second, Proxy: "http://127.0.0.1:7890", Headless: true},
		Scroll:  config.Scroll{Pause: 2 * time.Second, MaxStale: 4, MaxScrolls: 10},
		Extract: config.Extract{Details: true, ClickPause: time.Second, SidebarWait: 3 * time.Second, SearchPause: 5 * time.Second},
	}

	opts := scraperOptions(cfg)
	require.Equal(t, 20*time.Second, opts.Timeout)
	require.Equal(t, 4, opts.Scroll.MaxStale)
	require.Equal(t, 10, opts.Scroll.MaxScrolls)
	require.Equal(t, 2*time.Second, opts.Scroll.Pause)
	require.True(t, opts.Details)
	require.Equal(t, 5*time.Second, opts.SearchPause)

	bc := browserConfig(cfg)
	require.True(t, bc.Headless)
	require.Equal(t, "http://127.0.0.1:7890", bc.ProxyURL)
	require.Equal(t, 20*time.Second, bc.Timeout)
}

func TestPrepare(t *testing.T) {
	records := []business.Record{
		{Name: "Blue Door", Address: "1 Main St", Rating: "4.6"},
		{Name: "Blue Door", Address: "1 Main St", Phone: "(217) 555-0100"},
		{Name: "Red Cup", Address: "2 Main St", Rating: "3.9"},
		{Name: "Green Leaf", Address: "3 Main St", Rating: "4.0"},
	}

	out := prepare(records, business.Filters{MinRating: 4.0}, zap.NewNop())
	require.Len(t, out, 2)
	require.Equal(t, "Blue Door", out[0].Name)
	require.Equal(t, "(217) 555-0100", out[0].Phone)
	require.Equal(t, 1, out[0].Index)
	require.Equal(t, "Green Leaf", out[1].Name)
	require.Equal(t, 2, out[1].Index)
}

func TestJoinRendered(t *testing.T) {
	require.Equal(t, "a", joinRendered([]string{"a"}, "json"))
	require.Equal(t, "[{\"a\":1},\n{\"b\":2}]", joinRendered([]string{`{"a":1}`, `{"b":2}`}, "json"))
	require.Equal(t, "a\n\n---\n\nb", joinRendered([]string{"a", "b"}, "markdown"))
	require.Equal(t, "a\n\nb", joinRendered([]string{"a", "b"}, "text"))
}

func TestValidFormat(t *testing.T) {
	require.True(t, validFormat("markdown"))
	require.False(t, validFormat("xlsx"))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	rep := business.NewReport([]business.Record{{Name: "A", Rating: "4.5"}})
	path, err := writeReport(dir, []string{filepath.Join(dir, "coffee_1700000000.csv")}, rep)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "coffee_1700000000_report.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded business.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 1, decoded.TotalBusinesses)
	require.InDelta(t, 4.5, decoded.AverageRating, 0.001)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coffee.json")
	require.NoError(t, output.WriteJSON(path, []business.Record{
		{Index: 1, Name: "Blue Door", Rating: "4.8", Category: "Cafe", Phone: "(217) 555-0100"},
		{Index: 2, Name: "Red Cup", Rating: "3.9", Category: "Cafe"},
	}))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"report", path, "--log-file", "", "--log-level", "error", "--env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, root.Execute())
	if state.closeLog != nil {
		state.closeLog()
	}

	text := out.String()
	require.Contains(t, text, "SCRAPING REPORT SUMMARY")
	require.Contains(t, text, "Total businesses    2")
	require.Contains(t, text, "Average rating      4.35")
	require.Contains(t, text, "Cafe")
	require.Contains(t, text, "Blue Door")
}

func TestSaveEmptyLogsWarning(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	exporter := output.New(dir, zap.New(core))

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	meta := output.Meta{Query: "coffee", Location: "Nowhere"}
	err := save(context.Background(), cmd, exporter, nil, meta, config.Output{Dir: dir, Formats: []string{"csv", "json"}})
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("no businesses to save").Len())
	require.Contains(t, out.String(), "No businesses found for coffee in Nowhere")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
