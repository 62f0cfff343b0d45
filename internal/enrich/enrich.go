// Package enrich adds contact emails to records by visiting their websites.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/business"
	"gmapscrape/internal/extractor"
	"gmapscrape/internal/fetcher"
)

const (
	defaultContactPages = 3
	emailSeparator      = "; "
)

// Config tunes the website visits.
type Config struct {
	Timeout      time.Duration
	Pause        time.Duration // settle time after each page load
	ContactPages int           // extra contact/about pages tried when the home page has no email
}

// Enricher visits business websites in its own tab of the session.
type Enricher struct {
	sess *browser.Session
	cfg  Config
	log  *zap.Logger
}

func New(sess *browser.Session, cfg Config) *Enricher {
	if cfg.ContactPages <= 0 {
		cfg.ContactPages = defaultContactPages
	}
	return &Enricher{
		sess: sess,
		cfg:  cfg,
		log:  sess.Log.With(zap.String("stage", "enrich")),
	}
}

// Enrich fills Emails on every record with an eligible website and no emails
// yet. Site failures are logged; only cancellation stops the run. It returns
// the number of records that received emails.
func (e *Enricher) Enrich(ctx context.Context, records []business.Record) (int, error) {
	page, err := e.sess.NewPage()
	if err != nil {
		return 0, fmt.Errorf("failed to open enrichment tab: %w", err)
	}
	defer page.Close()
	f := fetcher.New(page, e.log)

	found := 0
	for i := range records {
		r := &records[i]
		if r.Emails != "" || !Eligible(r.Website) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return found, err
		}
		emails, err := e.visit(ctx, f, r.Website)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			e.log.Warn("website unavailable", zap.String("name", r.Name), zap.String("website", r.Website), zap.Error(err))
			continue
		}
		if len(emails) == 0 {
			e.log.Debug("no emails found", zap.String("website", r.Website))
			continue
		}
		r.Emails = strings.Join(emails, emailSeparator)
		found++
		e.log.Info("emails found", zap.String("name", r.Name), zap.Strings("emails", emails))
	}
	return found, nil
}

// visit reads the home page and, when it has no email, the likeliest contact
// pages until one does.
func (e *Enricher) visit(ctx context.Context, f *fetcher.Fetcher, site string) ([]string, error) {
	doc, err := e.load(ctx, f, site)
	if err != nil {
		return nil, err
	}
	if emails := Emails(doc); len(emails) > 0 {
		return emails, nil
	}
	for _, link := range ContactPages(doc, site, e.cfg.ContactPages) {
		sub, err := e.load(ctx, f, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Debug("contact page unavailable", zap.String("url", link), zap.Error(err))
			continue
		}
		if emails := Emails(sub); len(emails) > 0 {
			return emails, nil
		}
	}
	return nil, nil
}

func (e *Enricher) load(ctx context.Context, f *fetcher.Fetcher, link string) (*goquery.Selection, error) {
	res, err := f.Fetch(ctx, fetcher.Request{
		URL:     link,
		Wait:    fetcher.WaitStrategyLoad,
		Delay:   e.cfg.Pause,
		Timeout: e.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return extractor.New(res.Page.Context(ctx), e.cfg.Timeout).Document()
}
