package maps

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"gmapscrape/internal/business"
	"gmapscrape/internal/extractor"
	"gmapscrape/internal/fetcher"
	"gmapscrape/internal/scroller"
)

// Review is one customer review on a place page.
type Review struct {
	Author  string `json:"author"`
	Rating  string `json:"rating"`
	Date    string `json:"date"`
	Text    string `json:"text"`
	Helpful string `json:"helpful_count"`
}

// MenuItem is one entry of a place's menu.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Question is one Q&A entry.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Place is a business record plus the optional sections of its page.
type Place struct {
	business.Record
	Reviews      []Review          `json:"reviews,omitempty"`
	Menu         []MenuItem        `json:"menu,omitempty"`
	QA           []Question        `json:"qa,omitempty"`
	PopularTimes map[string]string `json:"popular_times,omitempty"`
}

var (
	reviewTabs = []string{
		`button[role="tab"][aria-label*="Reviews"]`,
		`button[data-value="Sort reviews"]`,
		`button[jsaction*="moreReviews"]`,
	}
	reviewPanels = []string{
		`div.m6QErb.DxyBCb.kA9KIf.dS8AEf`,
		`div.m6QErb[tabindex="-1"]`,
		`[role="main"] .m6QErb`,
	}
	menuButtons = []string{
		`button[role="tab"][aria-label*="Menu"]`,
		`button[aria-label*="Menu"]`,
		`a[data-item-id="menu"]`,
	}
	qaButtons = []string{
		`button[aria-label*="Questions"]`,
		`a[href*="questions"]`,
	}
)

const (
	reviewSelector = `[data-review-id]`
	tabPause       = 2 * time.Second
)

// IsPlaceURL reports whether link points at a Google Maps place.
func IsPlaceURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	if !strings.Contains(host, "google.") && host != "maps.app.goo.gl" && host != "goo.gl" {
		return false
	}
	return strings.Contains(u.Path, "/maps") || strings.HasSuffix(host, "goo.gl")
}

// Place extracts the full record of a place page and the sections enabled in
// the client options. Section failures are logged and leave that section
// empty.
func (c *Client) Place(ctx context.Context, link string) (*Place, error) {
	if !IsPlaceURL(link) {
		return nil, fmt.Errorf("not a Google Maps place link: %s", link)
	}
	if err := c.openPlace(ctx, link); err != nil {
		return nil, err
	}

	rec, err := c.sidebarRecord(ctx)
	if err != nil {
		return nil, err
	}
	rec.Index = 1
	rec.URL = link
	if info, err := c.page.Info(); err == nil && extractor.IsPlaceLink(info.URL) {
		rec.URL = info.URL
	}
	normalize(&rec)
	if !business.Validate(rec) {
		return nil, fmt.Errorf("no business name found at %s", link)
	}
	p := &Place{Record: rec}
	c.log.Info("place loaded", zap.String("name", rec.Name))

	if c.opts.PopularTimes {
		if doc, err := extractor.New(c.page.Context(ctx), evalTimeout).Document(); err != nil {
			c.log.Warn("popular times unavailable", zap.Error(err))
		} else {
			p.PopularTimes = parsePopularTimes(doc)
		}
	}
	if c.opts.Menu {
		if doc := c.section(ctx, link, "menu", menuButtons); doc != nil {
			p.Menu = parseMenu(doc)
			c.log.Info("menu extracted", zap.Int("items", len(p.Menu)))
		}
	}
	if c.opts.QA {
		if doc := c.section(ctx, link, "qa", qaButtons); doc != nil {
			p.QA = parseQA(doc)
			c.log.Info("questions extracted", zap.Int("items", len(p.QA)))
		}
	}
	if c.opts.Reviews {
		reviews, err := c.reviews(ctx, link, c.opts.MaxReviews)
		if err != nil {
			c.log.Warn("reviews unavailable", zap.Error(err))
		}
		p.Reviews = reviews
	}
	return p, nil
}

func (c *Client) openPlace(ctx context.Context, link string) error {
	_, err := c.fetch.Fetch(ctx, fetcher.Request{
		URL:     link,
		Wait:    fetcher.WaitStrategyElement,
		Targets: sidebarHeadings,
		Delay:   c.opts.SearchPause,
		Timeout: c.opts.Timeout,
		Consent: true,
	})
	if err != nil {
		return fmt.Errorf("place did not load: %w", err)
	}
	return nil
}

// section reloads the place, opens a tab through the first of buttons found
// and returns a snapshot of the page, or nil when the tab is unavailable.
func (c *Client) section(ctx context.Context, link, name string, buttons []string) *goquery.Selection {
	log := c.log.With(zap.String("section", name))
	if err := c.openPlace(ctx, link); err != nil {
		log.Warn("section unavailable", zap.Error(err))
		return nil
	}
	ok, err := c.clickFirst(ctx, buttons)
	if err != nil {
		log.Warn("opening section failed", zap.Error(err))
		return nil
	}
	if !ok {
		log.Info("section not found")
		return nil
	}
	if err := c.sess.Pause(ctx, tabPause); err != nil {
		return nil
	}
	doc, err := extractor.New(c.page.Context(ctx), evalTimeout).Document()
	if err != nil {
		log.Warn("section snapshot failed", zap.Error(err))
		return nil
	}
	return doc
}

func (c *Client) reviews(ctx context.Context, link string, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := c.openPlace(ctx, link); err != nil {
		return nil, err
	}
	ok, err := c.clickFirst(ctx, reviewTabs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reviews tab not found")
	}
	if _, err := c.fetch.WaitAny(ctx, c.opts.Timeout, reviewSelector); err != nil {
		return nil, err
	}

	if panel, err := findPanel(ctx, c.page, reviewPanels, reviewSelector); err != nil {
		c.log.Debug("review list not scrollable", zap.Error(err))
	} else {
		s := scroller.New(scroller.Config{
			Pause:      tabPause,
			MaxStale:   1,
			MaxScrolls: limit/3 + 1,
		}, c.log)
		if _, err := s.Run(ctx, panel); err != nil {
			return nil, err
		}
	}

	c.expandReviews(ctx)

	doc, err := extractor.New(c.page.Context(ctx), evalTimeout).Document()
	if err != nil {
		return nil, err
	}
	reviews := parseReviews(doc, limit)
	c.log.Info("reviews extracted", zap.Int("count", len(reviews)))
	return reviews, nil
}

// expandReviews clicks every "See more" button so full texts are rendered.
func (c *Client) expandReviews(ctx context.Context) {
	res, err := c.page.Context(ctx).Timeout(evalTimeout).Eval(`() => {
		const buttons = document.querySelectorAll('button[aria-label="See more"], button.w8nwRe');
		buttons.forEach(b => b.click());
		return buttons.length;
	}`)
	if err != nil {
		c.log.Debug("expanding reviews failed", zap.Error(err))
		return
	}
	if res.Value.Int() > 0 {
		_ = c.sess.Pause(ctx, time.Second)
	}
}

// clickFirst clicks the first of selectors present on the page.
func (c *Client) clickFirst(ctx context.Context, selectors []string) (bool, error) {
	page := c.page.Context(ctx).Timeout(c.opts.Timeout)
	for _, sel := range selectors {
		has, el, err := page.Has(sel)
		if err != nil {
			return false, err
		}
		if !has {
			continue
		}
		if err := el.ScrollIntoView(); err != nil {
			return false, err
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func parseReviews(doc *goquery.Selection, limit int) []Review {
	var out []Review
	seen := make(map[string]bool)
	doc.Find(reviewSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("data-review-id")
		if seen[id] {
			return true
		}
		seen[id] = true
		r := Review{
			Author:  extractor.Resolve(s, reviewTable["author"]),
			Rating:  extractor.Resolve(s, reviewTable["rating"]),
			Date:    extractor.Resolve(s, reviewTable["date"]),
			Text:    extractor.Resolve(s, reviewTable["text"]),
			Helpful: extractor.Resolve(s, reviewTable["helpful"]),
		}
		if r.Author == "" && r.Text == "" && r.Rating == "" {
			return true
		}
		out = append(out, r)
		return limit <= 0 || len(out) < limit
	})
	return out
}

func parseMenu(doc *goquery.Selection) []MenuItem {
	var out []MenuItem
	for _, sel := range menuItemSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			item := MenuItem{
				Name:        extractor.Resolve(s, menuTable["name"]),
				Price:       extractor.Resolve(s, menuTable["price"]),
				Description: extractor.Resolve(s, menuTable["description"]),
			}
			if item.Name != "" {
				out = append(out, item)
			}
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

func parseQA(doc *goquery.Selection) []Question {
	var out []Question
	for _, sel := range qaItemSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			q := Question{
				Question: extractor.Resolve(s, qaTable["question"]),
				Answer:   extractor.Resolve(s, qaTable["answer"]),
			}
			if q.Question != "" {
				out = append(out, q)
			}
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

// parsePopularTimes reads the per-weekday aria-labels of the popular times
// chart. Days without a bar get "No data". A page without the chart gives nil.
func parsePopularTimes(doc *goquery.Selection) map[string]string {
	section := doc.Find(`[aria-label*="Popular times"]`).First()
	if section.Length() == 0 {
		return nil
	}
	out := make(map[string]string, len(weekdays))
	for _, day := range weekdays {
		out[day] = "No data"
		if v := extractor.Resolve(section, []extractor.Strategy{
			{Selector: `[aria-label*="` + day + `"]`, Source: extractor.Label},
		}); v != "" {
			out[day] = v
		}
	}
	return out
}
