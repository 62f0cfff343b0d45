package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/business"
	"gmapscrape/internal/extractor"
	"gmapscrape/internal/fetcher"
	"gmapscrape/internal/scraper"
	"gmapscrape/internal/scroller"
)

const baseURL = "https://www.google.com/maps"

// Containers holding the detail view of an opened place.
var sidebarContainers = []string{
	`div.bJzME.tTVLSc`,
	`div[role="main"]:has(h1.DUwDvf)`,
}

// Client drives one Session through Google Maps searches and place pages.
type Client struct {
	sess  *browser.Session
	page  *rod.Page
	fetch *fetcher.Fetcher
	log   *zap.Logger
	opts  scraper.Options
}

// NewClient binds a Client to the session's working page.
func NewClient(sess *browser.Session, opts scraper.Options) *Client {
	log := sess.Log.With(zap.String("site", "maps"))
	return &Client{
		sess:  sess,
		page:  sess.Page,
		fetch: fetcher.New(sess.Page, log),
		log:   log,
		opts:  opts,
	}
}

// SearchURL builds the Maps search link for query and an optional location.
func SearchURL(query, location string) string {
	q := strings.Join(strings.Fields(query+" "+location), " ")
	return baseURL + "/search/" + url.QueryEscape(q) + "?hl=en"
}

// SearchResult is the outcome of one search.
type SearchResult struct {
	Query    string
	Location string
	URL      string
	Records  []business.Record
	Scroll   scroller.Stats
	Found    int // result elements seen before extraction
	Failed   int // elements that produced no record
}

// Search loads all results for query, then extracts one record per result.
// Per-result failures are logged and skipped.
func (c *Client) Search(ctx context.Context, query, location string) (*SearchResult, error) {
	res := &SearchResult{Query: query, Location: location, URL: SearchURL(query, location)}
	c.log.Info("searching", zap.String("query", query), zap.String("location", location), zap.String("url", res.URL))

	loaded, err := c.fetch.Fetch(ctx, fetcher.Request{
		URL:     res.URL,
		Wait:    fetcher.WaitStrategyElement,
		Targets: resultsContainers,
		Delay:   c.opts.SearchPause,
		Timeout: c.opts.Timeout,
		Consent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("results did not load: %w", err)
	}

	// A query matching exactly one place redirects straight to it.
	if strings.Contains(loaded.URL, "/maps/place/") {
		c.log.Info("search opened a single place", zap.String("url", loaded.URL))
		rec, err := c.sidebarRecord(ctx)
		if err != nil {
			return nil, err
		}
		rec.Index = 1
		rec.URL = loaded.URL
		c.finish(&rec, query, location)
		if business.Validate(rec) {
			res.Records = append(res.Records, rec)
		}
		res.Found = 1
		return res, nil
	}

	panel, err := findPanel(ctx, c.page, panelSelectors, countSelector)
	if err != nil {
		c.log.Warn("could not find scrollable results panel", zap.Error(err))
	} else {
		c.log.Debug("results panel", zap.String("selector", panel.selector))
		res.Scroll, err = c.scroll(ctx, panel)
		if err != nil {
			return res, err
		}
	}

	elements, err := c.resultElements(ctx)
	if err != nil {
		return res, err
	}
	res.Found = len(elements)
	c.log.Info("processing results", zap.Int("count", len(elements)))

	return res, c.extractAll(ctx, res, elements)
}

// extractAll turns result elements into records. Elements that fail or end
// up without a name count as Failed; only cancellation stops the loop.
func (c *Client) extractAll(ctx context.Context, res *SearchResult, elements []resultElement) error {
	bar := c.bar(len(elements), "extracting")
	defer bar.Finish()

	state := ""
	for i, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = bar.Add(1)

		rec, st, err := c.extract(ctx, el, i+1, state)
		if st != "" {
			state = st
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return err
			}
			res.Failed++
			c.log.Warn("skipping result", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		c.finish(&rec, res.Query, res.Location)
		if !business.Validate(rec) {
			res.Failed++
			c.log.Debug("discarding result without a name", zap.Int("index", i+1))
			continue
		}
		res.Records = append(res.Records, rec)
		c.log.Info("extracted business", zap.Int("n", len(res.Records)), zap.String("name", rec.Name))
	}
	return nil
}

func (c *Client) scroll(ctx context.Context, panel *resultsPanel) (scroller.Stats, error) {
	bar := c.bar(-1, "loading results")
	defer bar.Finish()

	s := scroller.New(c.opts.Scroll, c.log)
	s.OnProgress = func(n int) { _ = bar.Set(n) }
	return s.Run(ctx, panel)
}

// openFunc opens the sidebar of one result. It gets the sidebar state seen
// before the click and returns the detail record with the state after it.
type openFunc func(ctx context.Context, prevState string) (business.Record, string, error)

type resultElement struct {
	snapshot *goquery.Selection
	open     openFunc
}

// errStaleSidebar means the sidebar still shows the previously opened place.
var errStaleSidebar = errors.New("sidebar did not change after click")

// resultElements returns the nodes of the first result selector that matches
// anything, with duplicates removed.
func (c *Client) resultElements(ctx context.Context) ([]resultElement, error) {
	page := c.page.Context(ctx).Timeout(c.opts.Timeout)
	for _, sel := range resultSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Debug("result selector failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if len(els) == 0 {
			continue
		}
		c.log.Info("found result elements", zap.String("selector", sel), zap.Int("count", len(els)))

		seen := make(map[string]bool)
		out := make([]resultElement, 0, len(els))
		for _, el := range els {
			snap, err := extractor.Element(el)
			if err != nil {
				c.log.Debug("snapshot failed", zap.Error(err))
				continue
			}
			if key := resultKey(snap); key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			out = append(out, resultElement{snapshot: snap, open: c.opener(el)})
		}
		return out, nil
	}
	return nil, fmt.Errorf("no result elements found")
}

// resultKey identifies a result element by data-cid, data-feature-id or its
// place link. Elements without any of these get "" and are never merged.
func resultKey(snap *goquery.Selection) string {
	for _, attr := range []string{"data-cid", "data-feature-id"} {
		if node := snap.Find("[" + attr + "]").First(); node.Length() > 0 {
			if v, _ := node.Attr(attr); v != "" {
				return attr + ":" + v
			}
		}
	}
	if href := extractor.Resolve(snap, resultTable[business.FieldURL]); href != "" {
		return "href:" + href
	}
	return ""
}

// extract builds the record for one result element. prevState is the
// sidebar state before the click; the state after it is returned.
func (c *Client) extract(ctx context.Context, el resultElement, index int, prevState string) (business.Record, string, error) {
	rec := business.Record{Index: index}
	resultTable.Fill(el.snapshot, &rec, basicFields...)

	if !c.opts.Details || el.open == nil {
		return rec, "", nil
	}

	detail, state, err := el.open(ctx, prevState)
	if err != nil {
		if rec.Name == "" || ctx.Err() != nil {
			return rec, state, err
		}
		c.log.Warn("could not open details, keeping basic data", zap.Int("index", index), zap.Error(err))
		return rec, state, nil
	}
	if !applyDetail(&rec, detail) {
		c.log.Warn("sidebar shows another place, keeping basic data",
			zap.Int("index", index), zap.String("name", rec.Name), zap.String("sidebar", detail.Name))
	}
	return rec, state, nil
}

// applyDetail overlays sidebar values onto rec. The basic name is kept; the
// sidebar name is used only when rec has none. A sidebar naming a different
// place is rejected and rec is left unchanged.
func applyDetail(rec *business.Record, detail business.Record) bool {
	if rec.Name != "" && detail.Name != "" && !sameName(rec.Name, detail.Name) {
		return false
	}
	name := rec.Name
	rec.Overlay(detail)
	if name != "" {
		rec.Name = name
	}
	return true
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

func (c *Client) opener(el *rod.Element) openFunc {
	return func(ctx context.Context, prevState string) (business.Record, string, error) {
		return c.openSidebar(ctx, el, prevState)
	}
}

// openSidebar clicks the result, waits for the sidebar to change and resolves
// the detail fields.
func (c *Client) openSidebar(ctx context.Context, el *rod.Element, prevState string) (business.Record, string, error) {
	el = el.Context(ctx).Timeout(c.opts.Timeout)
	target := el
	if has, link, err := el.Has("a.hfpxzc"); err == nil && has {
		target = link
	}

	if err := target.ScrollIntoView(); err != nil {
		return business.Record{}, "", fmt.Errorf("failed to scroll to result: %w", err)
	}
	if err := c.sess.Pause(ctx, c.opts.ClickPause); err != nil {
		return business.Record{}, "", err
	}
	if err := target.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return business.Record{}, "", fmt.Errorf("failed to click result: %w", err)
	}

	state, err := c.waitSidebarChange(ctx, prevState, c.opts.SidebarWait)
	if err != nil {
		return business.Record{}, state, err
	}

	rec, err := c.sidebarRecord(ctx)
	if err != nil {
		return business.Record{}, state, err
	}
	if info, err := c.page.Info(); err == nil && extractor.IsPlaceLink(info.URL) {
		rec.URL = info.URL
	}
	return rec, state, nil
}

// waitSidebarChange polls the sidebar state until it differs from prev, or
// fails with errStaleSidebar once wait elapses.
func (c *Client) waitSidebarChange(ctx context.Context, prev string, wait time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	for {
		st := c.sidebarState(ctx)
		if st != "" && st != prev {
			return st, nil
		}
		if time.Now().After(deadline) {
			return st, fmt.Errorf("%w within %s", errStaleSidebar, wait)
		}
		if err := browser.Sleep(ctx, 250*time.Millisecond); err != nil {
			return "", err
		}
	}
}

// sidebarState is the sidebar heading joined with the page location, so two
// branches sharing a name still differ. It is empty while no heading shows.
func (c *Client) sidebarState(ctx context.Context) string {
	res, err := c.page.Context(ctx).Timeout(evalTimeout).Eval(`(sels) => {
		for (const s of sels) {
			const el = document.querySelector(s);
			if (el && el.textContent.trim()) return el.textContent.trim() + '\n' + location.href;
		}
		return '';
	}`, sidebarHeadings)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// sidebarRecord snapshots the opened place and resolves the detail fields.
func (c *Client) sidebarRecord(ctx context.Context) (business.Record, error) {
	ext := extractor.New(c.page.Context(ctx), evalTimeout)
	snap, sel, err := ext.First(sidebarContainers...)
	if err != nil || snap == nil {
		if err != nil {
			c.log.Debug("sidebar container lookup failed", zap.Error(err))
		}
		snap, err = ext.Document()
		if err != nil {
			return business.Record{}, err
		}
		sel = "document"
	}
	var rec business.Record
	set := sidebarTable.Fill(snap, &rec, detailFields...)
	c.log.Debug("sidebar fields", zap.String("container", sel), zap.Int("found", len(set)))
	return rec, nil
}

// finish normalizes a record and tags it with its search.
func (c *Client) finish(rec *business.Record, query, location string) {
	normalize(rec)
	rec.SearchQuery = query
	rec.SearchLocation = location
}

var countSeparators = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "", "\u202f", "")

// normalize tidies raw extracted values and derives coordinates.
func normalize(rec *business.Record) {
	if rec.ReviewsCount != "" {
		if n := business.CleanReviewsCount(countSeparators.Replace(rec.ReviewsCount)); n > 0 {
			rec.ReviewsCount = strconv.Itoa(n)
		} else {
			rec.ReviewsCount = ""
		}
	}
	if rec.Phone != "" {
		rec.Phone = business.CleanPhone(rec.Phone)
	}
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Locate()
}

func (c *Client) bar(max int, desc string) *progressbar.ProgressBar {
	visible := c.opts.Progress && term.IsTerminal(int(os.Stderr.Fd()))
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(visible),
	)
}
