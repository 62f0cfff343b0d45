package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// Attempt 中使用的查找策略名
const (
	StrategyExplicit  = "explicit path"
	StrategyDownload  = "managed download"
	StrategyWellKnown = "well-known path"
	StrategyPath      = "PATH lookup"
)

// Attempt 记录一次浏览器查找的结果
type Attempt struct {
	Strategy string
	Path     string
	Err      error
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("%s: %v", a.Strategy, a.Err)
	}
	return fmt.Sprintf("%s: %s", a.Strategy, a.Path)
}

// ErrNoBrowser 所有策略都找不到可用浏览器
var ErrNoBrowser = errors.New("no Chrome or Chromium binary found")

// finder 封装有副作用的查找，测试时可替换文件系统
type finder struct {
	download  func() (string, error)
	exists    func(path string) bool
	lookPath  func(name string) (string, error)
	wellKnown []string
	pathNames []string
}

var defaultFinder = finder{
	download:  func() (string, error) { return launcher.NewBrowser().Get() },
	exists:    isFile,
	lookPath:  exec.LookPath,
	wellKnown: wellKnownPaths(runtime.GOOS),
	pathNames: []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome", "msedge"},
}

// ResolveBin 依次尝试：显式路径、托管下载、常见安装位置、PATH
// 返回每一次尝试，便于调用方输出
func ResolveBin(cfg Config, log *zap.Logger) (string, []Attempt, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return defaultFinder.resolve(cfg, log)
}

func (f finder) resolve(cfg Config, log *zap.Logger) (string, []Attempt, error) {
	var attempts []Attempt
	fail := func(strategy, path string, err error) {
		attempts = append(attempts, Attempt{Strategy: strategy, Path: path, Err: err})
		log.Warn("browser binary strategy failed", zap.String("strategy", strategy), zap.Error(err))
	}
	ok := func(strategy, path string) (string, []Attempt, error) {
		attempts = append(attempts, Attempt{Strategy: strategy, Path: path})
		log.Debug("browser binary resolved", zap.String("strategy", strategy), zap.String("path", path))
		return path, attempts, nil
	}

	if cfg.Bin != "" {
		if f.exists(cfg.Bin) {
			return ok(StrategyExplicit, cfg.Bin)
		}
		fail(StrategyExplicit, cfg.Bin, fmt.Errorf("%s does not exist", cfg.Bin))
	}

	if cfg.Download {
		path, err := f.download()
		if err == nil && path != "" {
			return ok(StrategyDownload, path)
		}
		if err == nil {
			err = errors.New("downloader returned no path")
		}
		fail(StrategyDownload, "", err)
	}

	for _, p := range f.wellKnown {
		if f.exists(p) {
			return ok(StrategyWellKnown, p)
		}
	}
	if len(f.wellKnown) > 0 {
		fail(StrategyWellKnown, "", fmt.Errorf("none of %d known locations exist", len(f.wellKnown)))
	}

	for _, name := range f.pathNames {
		if p, err := f.lookPath(name); err == nil {
			return ok(StrategyPath, p)
		}
	}
	fail(StrategyPath, "", fmt.Errorf("none of %s on PATH", strings.Join(f.pathNames, ", ")))

	return "", attempts, ErrNoBrowser
}

func wellKnownPaths(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		}
	case "windows":
		var paths []string
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "LocalAppData"} {
			root := os.Getenv(env)
			if root == "" {
				continue
			}
			paths = append(paths,
				filepath.Join(root, `Google\Chrome\Application\chrome.exe`),
				filepath.Join(root, `Microsoft\Edge\Application\msedge.exe`),
			)
		}
		return paths
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/opt/google/chrome/chrome",
		}
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SetupError 浏览器会话创建失败
type SetupError struct {
	Attempts []Attempt
	Err      error
}

func (e *SetupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "browser setup failed: %v", e.Err)
	if len(e.Attempts) > 0 {
		b.WriteString("\n\nTried:")
		for _, a := range e.Attempts {
			b.WriteString("\n  - ")
			b.WriteString(a.String())
		}
	}
	b.WriteString("\n\nTo fix:")
	for i, step := range remediation {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, step)
	}
	return b.String()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

var remediation = []string{
	"Install Google Chrome or Chromium (e.g. apt install chromium, brew install --cask google-chrome)",
	"Point browser.bin or GMAPSCRAPE_BROWSER_BIN at the binary",
	"Enable browser.download and check network or proxy access so a managed Chromium can be fetched",
	"On servers without a display, run with --headless",
	"Run `gmapscrape doctor` for a full diagnosis",
}
