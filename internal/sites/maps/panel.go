package maps

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

const evalTimeout = 5 * time.Second

// resultsPanel is the scrollable results list. It implements scroller.Panel.
type resultsPanel struct {
	page     *rod.Page
	selector string
	items    string
}

// findPanel returns the first of selectors present on the page.
func findPanel(ctx context.Context, page *rod.Page, selectors []string, items string) (*resultsPanel, error) {
	res, err := page.Context(ctx).Timeout(evalTimeout).Eval(`(sels) => {
		for (const s of sels) {
			if (document.querySelector(s)) return s;
		}
		return '';
	}`, selectors)
	if err != nil {
		return nil, fmt.Errorf("failed to look up results panel: %w", err)
	}
	sel := res.Value.Str()
	if sel == "" {
		return nil, fmt.Errorf("no results panel found")
	}
	return &resultsPanel{page: page, selector: sel, items: items}, nil
}

func (p *resultsPanel) Scroll(ctx context.Context) error {
	_, err := p.page.Context(ctx).Timeout(evalTimeout).Eval(`(sel) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.scrollTop = el.scrollHeight;
		return true;
	}`, p.selector)
	return err
}

func (p *resultsPanel) Count(ctx context.Context) (int, error) {
	res, err := p.page.Context(ctx).Timeout(evalTimeout).Eval(`(sel) => document.querySelectorAll(sel).length`, p.items)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// AtEnd looks for the end-of-list text or the trailing marker node Maps
// appends to the feed once no more results exist.
func (p *resultsPanel) AtEnd(ctx context.Context) (bool, error) {
	res, err := p.page.Context(ctx).Timeout(evalTimeout).Eval(`(sel) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		const text = el.innerText || '';
		if (text.includes("You've reached the end of the list") || text.includes('reached the end of the list')) return true;
		const last = el.lastElementChild;
		if (!last || last.querySelector('a[href]')) return false;
		return last.querySelector('span.HlvSq') !== null || last.querySelector('p.fontBodyMedium span span') !== null;
	}`, p.selector)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}
