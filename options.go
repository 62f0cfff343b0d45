package main

import (
	"gmapscrape/internal/browser"
	"gmapscrape/internal/config"
	"gmapscrape/internal/enrich"
	"gmapscrape/internal/scraper"
	"gmapscrape/internal/scroller"
)

func browserConfig(cfg *config.Config) browser.Config {
	return browser.Config{
		Headless:   cfg.Browser.Headless,
		ProxyURL:   cfg.Browser.Proxy,
		Bin:        cfg.Browser.Bin,
		Download:   cfg.Browser.Download,
		UserAgent:  cfg.Browser.UserAgent,
		Images:     cfg.Browser.Images,
		WindowSize: cfg.Browser.WindowSize,
		Timeout:    cfg.Browser.Timeout,
	}
}

func scraperOptions(cfg *config.Config) scraper.Options {
	return scraper.Options{
		Timeout: cfg.Browser.Timeout,
		Scroll: scroller.Config{
			Pause:      cfg.Scroll.Pause,
			MaxStale:   cfg.Scroll.MaxStale,
			MaxScrolls: cfg.Scroll.MaxScrolls,
		},
		Details:     cfg.Extract.Details,
		ClickPause:  cfg.Extract.ClickPause,
		SidebarWait: cfg.Extract.SidebarWait,
		SearchPause: cfg.Extract.SearchPause,
	}
}

func enrichConfig(cfg *config.Config) enrich.Config {
	return enrich.Config{
		Timeout: cfg.Browser.Timeout,
		Pause:   cfg.Extract.ClickPause,
	}
}
