package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// Config 浏览器会话的启动参数
type Config struct {
	Headless   bool
	ProxyURL   string
	Bin        string // 显式指定的浏览器路径，跳过其余查找
	Download   bool   // 允许 rod 下载托管的 Chromium
	UserAgent  string // 为空时随机选择桌面 UA
	Images     bool
	WindowSize string // "宽,高"
	Timeout    time.Duration
}

// Session 持有浏览器、启动器和工作页面
// 所有抓取步骤共用同一个 Session，只关闭一次
type Session struct {
	Browser *rod.Browser
	Page    *rod.Page
	Log     *zap.Logger
	Timeout time.Duration

	launcher  *launcher.Launcher
	userAgent string
	closeOnce sync.Once
	closeErr  error
}

// Open 查找浏览器、以反检测参数启动并打开 stealth 页面
// 任何失败都以 *SetupError 返回
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	bin, attempts, err := ResolveBin(cfg, log)
	if err != nil {
		return nil, &SetupError{Attempts: attempts, Err: err}
	}

	l := newLauncher(ctx, cfg, bin)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, &SetupError{Attempts: attempts, Err: fmt.Errorf("failed to launch %s: %w", bin, err)}
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, &SetupError{Attempts: attempts, Err: fmt.Errorf("failed to connect to browser: %w", err)}
	}

	s := &Session{
		Browser:   b,
		Log:       log,
		Timeout:   cfg.Timeout,
		launcher:  l,
		userAgent: cfg.UserAgent,
	}
	if s.userAgent == "" {
		s.userAgent = RandomUserAgent()
	}

	page, err := s.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, &SetupError{Attempts: attempts, Err: err}
	}
	s.Page = page

	log.Info("browser session ready",
		zap.String("bin", bin),
		zap.Bool("headless", cfg.Headless),
		zap.Bool("proxy", cfg.ProxyURL != ""),
		zap.String("user_agent", s.userAgent),
	)
	return s, nil
}

func newLauncher(ctx context.Context, cfg Config, bin string) *launcher.Launcher {
	size := cfg.WindowSize
	if size == "" {
		size = "1920,1080"
	}

	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(cfg.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("window-size", size).
		Set("lang", "en-US").
		Delete("enable-automation")

	if !cfg.Images {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	return l
}

// NewPage 创建使用会话 UA 的 stealth 页面
func (s *Session) NewPage() (*rod.Page, error) {
	page, err := stealth.Page(s.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.userAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	if _, err := page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to mask webdriver: %w", err)
	}
	return page, nil
}

// UserAgent 返回会话页面使用的 UA
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Pause 等待 d，ctx 结束时提前返回
func (s *Session) Pause(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

// Close 关闭浏览器并清理启动的进程，可重复调用
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.Browser != nil {
			s.closeErr = s.Browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
		}
		s.Log.Debug("browser session closed")
	})
	return s.closeErr
}

// Sleep 等待 d 或直到 ctx 结束
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
