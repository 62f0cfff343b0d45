package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"gmapscrape/internal/browser"
)

// WaitStrategy 等待策略类型
type WaitStrategy string

const (
	WaitStrategyLoad    WaitStrategy = "load"    // 仅等待页面加载
	WaitStrategyElement WaitStrategy = "element" // 等待 Targets 中任一元素出现
	WaitStrategyTime    WaitStrategy = "time"    // 固定等待 Delay
)

const pollInterval = 500 * time.Millisecond

// Request 一次页面抓取请求
type Request struct {
	URL     string
	Wait    WaitStrategy
	Targets []string      // element 策略的选择器，按优先级排列
	Delay   time.Duration // 等待策略之后的额外停顿
	Timeout time.Duration
	Consent bool // 自动关闭 Google 同意弹窗，仅用于 Google 页面
}

// Result 抓取结果
type Result struct {
	Page     *rod.Page
	Title    string
	URL      string
	Matched  string // 命中的选择器
	LoadTime time.Duration
}

// Fetcher 页面抓取器
type Fetcher struct {
	page *rod.Page
	log  *zap.Logger
}

// New 创建新的 Fetcher 实例
func New(page *rod.Page, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		page: page,
		log:  log,
	}
}

// Fetch 执行页面抓取
// 设置 req.Consent 时关闭 Cookie 同意弹窗，然后应用等待策略
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if req.Timeout <= 0 {
		req.Timeout = 15 * time.Second
	}
	page := f.page.Context(ctx)

	f.log.Debug("navigating", zap.String("url", req.URL))
	if err := page.Timeout(req.Timeout).Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.Timeout(req.Timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for page load: %w", err)
	}

	if req.Consent && f.DismissConsent(ctx) {
		f.log.Info("dismissed cookie consent")
		_ = page.Timeout(req.Timeout).WaitLoad()
	}

	res := &Result{Page: f.page}
	switch req.Wait {
	case WaitStrategyElement:
		if len(req.Targets) == 0 {
			return nil, fmt.Errorf("wait targets are required for element strategy")
		}
		matched, err := f.WaitAny(ctx, req.Timeout, req.Targets...)
		if err != nil {
			return nil, err
		}
		res.Matched = matched
	case WaitStrategyTime, WaitStrategyLoad, "":
	default:
		return nil, fmt.Errorf("unknown wait strategy: %s", req.Wait)
	}

	if err := browser.Sleep(ctx, req.Delay); err != nil {
		return nil, err
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get page info: %w", err)
	}
	res.Title = info.Title
	res.URL = info.URL
	res.LoadTime = time.Since(start)

	f.log.Debug("page ready",
		zap.String("url", res.URL),
		zap.String("matched", res.Matched),
		zap.Duration("load_time", res.LoadTime),
	)
	return res, nil
}

// WaitAny 轮询直到任一选择器出现并返回它
// 同时出现时靠前的优先
func (f *Fetcher) WaitAny(ctx context.Context, timeout time.Duration, selectors ...string) (string, error) {
	page := f.page.Context(ctx)
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			if has, _, err := page.Has(sel); err == nil && has {
				return sel, nil
			}
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("none of %v appeared within %s", selectors, timeout)
		}
		if err := browser.Sleep(ctx, pollInterval); err != nil {
			return "", err
		}
	}
}

// DismissConsent 点击 Google 同意表单或拒绝按钮，返回是否点击
func (f *Fetcher) DismissConsent(ctx context.Context) bool {
	res, err := f.page.Context(ctx).Timeout(5 * time.Second).Eval(`() => {
		const form = document.querySelector('form[action*="consent.google"]');
		if (form) {
			const btn = form.querySelector('button, input[type="submit"]');
			if (btn) {
				btn.click();
				return true;
			}
		}
		for (const btn of document.querySelectorAll('button, input[type="submit"]')) {
			const text = (btn.textContent || btn.value || '').toLowerCase();
			if (text.includes('reject all') || text.includes('decline') || text.includes('ablehnen')) {
				btn.click();
				return true;
			}
		}
		return false;
	}`)
	if err != nil {
		f.log.Debug("consent check failed", zap.Error(err))
		return false
	}
	return res.Value.Bool()
}
