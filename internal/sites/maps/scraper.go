package maps

import (
	"context"
	"fmt"
	"strings"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/scraper"
)

func init() {
	scraper.Register(&SearchScraper{})
	scraper.Register(&PlaceScraper{})
}

// SearchScraper collects every listing a Maps search returns. When the
// search stops early the records gathered so far are returned with the error.
type SearchScraper struct{}

func (s *SearchScraper) Name() string { return "maps" }

func (s *SearchScraper) Scrape(ctx context.Context, sess *browser.Session, query string, opts scraper.Options) (scraper.Content, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required for maps search")
	}
	res, err := NewClient(sess, opts).Search(ctx, query, opts.Location)
	if err != nil {
		if res == nil {
			return nil, fmt.Errorf("failed to search maps: %w", err)
		}
		return NewSearchContent(res), fmt.Errorf("search stopped early: %w", err)
	}
	return NewSearchContent(res), nil
}

// PlaceScraper extracts one place page with its optional sections.
type PlaceScraper struct{}

func (s *PlaceScraper) Name() string { return "maps.place" }

func (s *PlaceScraper) Scrape(ctx context.Context, sess *browser.Session, link string, opts scraper.Options) (scraper.Content, error) {
	p, err := NewClient(sess, opts).Place(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape place: %w", err)
	}
	return NewPlaceContent(p), nil
}
