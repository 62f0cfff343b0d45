package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/business"
	"gmapscrape/internal/config"
	"gmapscrape/internal/enrich"
	"gmapscrape/internal/formatter"
	"gmapscrape/internal/output"
	"gmapscrape/internal/scraper"
)

const previewSize = 5

var searchFlags struct {
	location    string
	minRating   float64
	minReviews  int
	categories  []string
	keywords    []string
	report      bool
	noProgress  bool
	combinedOut bool
}

func init() {
	commandKeys["search"] = map[string]string{
		"scroll.pause":         "scroll-pause",
		"scroll.max_stale":     "max-stale",
		"scroll.max_scrolls":   "max-scrolls",
		"extract.details":      "details",
		"extract.click_pause":  "click-pause",
		"extract.sidebar_wait": "sidebar-wait",
		"extract.search_pause": "search-pause",
		"extract.emails":       "emails",
		"output.dir":           "output-dir",
		"output.formats":       "formats",
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search Google Maps and export every listing found",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	f := cmd.Flags()
	f.StringVarP(&searchFlags.location, "location", "L", "", "Location appended to every query")
	f.Duration("scroll-pause", config.DefaultScrollPause, "Wait after each scroll of the results list")
	f.Int("max-stale", config.DefaultMaxStale, "Stop after this many scrolls without new results")
	f.Int("max-scrolls", config.DefaultMaxScrolls, "Hard limit on scrolls per search")
	f.Bool("details", true, "Open each listing to read address, phone, website and hours")
	f.Duration("click-pause", config.DefaultClickPause, "Wait before clicking a listing")
	f.Duration("sidebar-wait", config.DefaultSidebarWait, "How long to wait for a listing's details to load")
	f.Duration("search-pause", config.DefaultSearchPause, "Wait after the results first appear")
	f.Bool("emails", false, "Visit business websites to collect contact emails")
	f.StringP("output-dir", "o", ".", "Directory for exported files")
	f.StringSliceP("formats", "f", []string{"csv", "json"}, "Export formats: "+strings.Join(output.Formats, ", "))
	f.Float64Var(&searchFlags.minRating, "min-rating", 0, "Keep businesses rated at least this")
	f.IntVar(&searchFlags.minReviews, "min-reviews", 0, "Keep businesses with at least this many reviews")
	f.StringSliceVar(&searchFlags.categories, "category", nil, "Keep businesses whose category contains one of these")
	f.StringSliceVar(&searchFlags.keywords, "address-contains", nil, "Keep businesses whose address contains one of these")
	f.BoolVar(&searchFlags.report, "report", false, "Write a summary report next to the exports")
	f.BoolVar(&searchFlags.noProgress, "no-progress", false, "Disable progress bars")
	f.BoolVar(&searchFlags.combinedOut, "combined", false, "With several queries, also export the merged results")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := state.cfg
	runID := uuid.NewString()
	log := state.log.With(zap.String("run_id", runID))

	s, ok := scraper.Get("maps")
	if !ok {
		return fmt.Errorf("maps scraper not registered")
	}

	sess, err := browser.Open(ctx, browserConfig(cfg), log)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts := scraperOptions(cfg)
	opts.Location = searchFlags.location
	opts.Progress = !searchFlags.noProgress

	filters := business.Filters{
		MinRating:        searchFlags.minRating,
		MinReviews:       searchFlags.minReviews,
		Categories:       searchFlags.categories,
		LocationKeywords: searchFlags.keywords,
	}
	exporter := output.New(cfg.Output.Dir, log)

	var all []business.Record
	var stopErr error
	for _, query := range args {
		content, err := s.Scrape(ctx, sess, query, opts)
		var records []business.Record
		if content != nil {
			records = content.Records()
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Error("search failed", zap.String("query", query), zap.Error(err))
				continue
			}
			log.Warn("interrupted, saving what was collected", zap.String("query", query), zap.Int("count", len(records)))
			stopErr = err
		}

		records = prepare(records, filters, log)
		if cfg.Extract.Emails && ctx.Err() == nil {
			if _, err := enrich.New(sess, enrichConfig(cfg)).Enrich(ctx, records); err != nil {
				log.Warn("email enrichment stopped", zap.Error(err))
			}
		}

		meta := output.Meta{Query: query, Location: searchFlags.location, RunID: runID}
		if err := save(context.WithoutCancel(ctx), cmd, exporter, records, meta, cfg.Output); err != nil {
			return err
		}
		all = append(all, records...)
		if stopErr != nil {
			break
		}
	}

	if searchFlags.combinedOut && len(args) > 1 {
		merged := business.Merge(all)
		business.Reindex(merged)
		meta := output.Meta{Query: "combined", Location: searchFlags.location, RunID: runID}
		if err := save(context.WithoutCancel(ctx), cmd, exporter, merged, meta, cfg.Output); err != nil {
			return err
		}
	}

	if stopErr != nil && errors.Is(stopErr, context.Canceled) {
		printf(cmd, "\nScraping interrupted by user\n")
		return nil
	}
	return stopErr
}

// prepare deduplicates, filters and renumbers one query's records.
func prepare(records []business.Record, filters business.Filters, log *zap.Logger) []business.Record {
	records = business.Merge(records)
	if filters.Active() {
		before := len(records)
		records = business.Filter(records, filters)
		log.Info("filtered businesses", zap.Int("before", before), zap.Int("after", len(records)))
	}
	business.Reindex(records)
	return records
}

// save exports records, prints a preview and optionally writes the report.
func save(ctx context.Context, cmd *cobra.Command, exporter *output.Exporter, records []business.Record, meta output.Meta, out config.Output) error {
	title := meta.Query
	if meta.Location != "" {
		title += " in " + meta.Location
	}
	paths, err := exporter.Export(ctx, records, meta, out.Formats)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printf(cmd, "\nNo businesses found for %s. Try a different query or location.\n", title)
		return nil
	}

	printf(cmd, "\nScraped %d businesses for %s\n\n", len(records), title)
	preview := records
	if len(preview) > previewSize {
		preview = preview[:previewSize]
	}
	printf(cmd, "%s", formatter.RecordsText("", preview,
		business.FieldIndex, business.FieldName, business.FieldRating, business.FieldCategory))
	if len(records) > previewSize {
		printf(cmd, "... and %d more businesses\n", len(records)-previewSize)
	}

	if searchFlags.report {
		rep := business.NewReport(records)
		rep.RunID = meta.RunID
		path, err := writeReport(out.Dir, paths, rep)
		if err != nil {
			return err
		}
		paths = append(paths, path)
		printf(cmd, "\n%s", reportText(rep))
	}

	printf(cmd, "\nResults saved to:\n")
	for _, p := range paths {
		printf(cmd, "   %s\n", p)
	}
	return nil
}

// writeReport stores rep as "<export base>_report.json" beside the exports.
func writeReport(dir string, exports []string, rep business.Report) (string, error) {
	base := "scraping"
	if len(exports) > 0 {
		name := filepath.Base(exports[0])
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}
	path := filepath.Join(dir, base+"_report.json")
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
