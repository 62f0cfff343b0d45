package scraper

import (
	"context"
	"time"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/business"
	"gmapscrape/internal/scroller"
)

type Scraper interface {
	Name() string
	Scrape(ctx context.Context, sess *browser.Session, target string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
	Records() []business.Record
}

type Options struct {
	Location string // appended to the search query
	Timeout  time.Duration
	Scroll   scroller.Config

	Details     bool          // open each result's sidebar
	ClickPause  time.Duration // settle time before clicking a result
	SidebarWait time.Duration // how long to wait for the sidebar heading to change
	SearchPause time.Duration // settle time after the results view appears
	Progress    bool          // draw progress bars on a terminal

	// Place view sections.
	Reviews      bool
	MaxReviews   int
	Menu         bool
	QA           bool
	PopularTimes bool
}
