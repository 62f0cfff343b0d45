package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/config"
	"gmapscrape/internal/formatter"
	"gmapscrape/internal/scraper"
)

var placeFlags struct {
	reviews      bool
	maxReviews   int
	menu         bool
	qa           bool
	popularTimes bool
	format       string
	output       string
}

func init() {
	commandKeys["place"] = map[string]string{
		"extract.search_pause": "search-pause",
	}
}

func newPlaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place URL...",
		Short: "Extract full details of Google Maps place pages",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlace,
	}
	f := cmd.Flags()
	f.BoolVar(&placeFlags.reviews, "reviews", false, "Collect reviews")
	f.IntVar(&placeFlags.maxReviews, "max-reviews", 10, "Maximum reviews per place")
	f.BoolVar(&placeFlags.menu, "menu", false, "Collect menu items")
	f.BoolVar(&placeFlags.qa, "qa", false, "Collect questions and answers")
	f.BoolVar(&placeFlags.popularTimes, "popular-times", false, "Collect popular times per weekday")
	f.Duration("search-pause", config.DefaultSearchPause, "Wait after the place page appears")
	f.StringVarP(&placeFlags.format, "format", "f", "text", "Output format (html, text, markdown, json, csv)")
	f.StringVarP(&placeFlags.output, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	return cmd
}

func runPlace(cmd *cobra.Command, args []string) error {
	if placeFlags.output != "" && !cmd.Flags().Changed("format") {
		if inferred := formatter.InferFormat(placeFlags.output); inferred != "" {
			placeFlags.format = inferred
		}
	}
	if !validFormat(placeFlags.format) {
		return fmt.Errorf("invalid output format: %s", placeFlags.format)
	}

	s, ok := scraper.Get("maps.place")
	if !ok {
		return fmt.Errorf("place scraper not registered")
	}

	ctx := cmd.Context()
	log := state.log
	sess, err := browser.Open(ctx, browserConfig(state.cfg), log)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts := scraperOptions(state.cfg)
	opts.Reviews = placeFlags.reviews
	opts.MaxReviews = placeFlags.maxReviews
	opts.Menu = placeFlags.menu
	opts.QA = placeFlags.qa
	opts.PopularTimes = placeFlags.popularTimes

	var rendered []string
	for _, link := range args {
		content, err := s.Scrape(ctx, sess, link, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("place failed", zap.String("url", link), zap.Error(err))
			continue
		}
		out, err := formatter.Format(content, placeFlags.format)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		rendered = append(rendered, out)
	}
	if len(rendered) == 0 {
		return fmt.Errorf("no place could be extracted")
	}

	result := joinRendered(rendered, placeFlags.format)
	if placeFlags.output != "" {
		if err := os.WriteFile(placeFlags.output, []byte(result), 0o644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", placeFlags.output)
		return nil
	}
	printf(cmd, "%s\n", result)
	return nil
}

func validFormat(f string) bool {
	for _, known := range formatter.Formats {
		if f == known {
			return true
		}
	}
	return false
}

// joinRendered combines per-place outputs; JSON becomes an array.
func joinRendered(parts []string, format string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	switch format {
	case "json":
		return "[" + strings.Join(parts, ",\n") + "]"
	case "markdown":
		return strings.Join(parts, "\n\n---\n\n")
	default:
		return strings.Join(parts, "\n\n")
	}
}
