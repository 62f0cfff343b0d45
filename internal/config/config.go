package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "GMAPSCRAPE"

// Defaults shared with command flags.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultScrollPause = 4 * time.Second
	DefaultMaxStale    = 3
	DefaultMaxScrolls  = 50
	DefaultClickPause  = time.Second
	DefaultSidebarWait = 3 * time.Second
	DefaultSearchPause = 3 * time.Second
)

// Config is the full runtime configuration.
type Config struct {
	Browser Browser `mapstructure:"browser"`
	Scroll  Scroll  `mapstructure:"scroll"`
	Extract Extract `mapstructure:"extract"`
	Output  Output  `mapstructure:"output"`
	Log     Log     `mapstructure:"log"`
}

// Browser configures the Chrome session.
type Browser struct {
	Headless   bool          `mapstructure:"headless"`
	Proxy      string        `mapstructure:"proxy"`
	Bin        string        `mapstructure:"bin"`
	Download   bool          `mapstructure:"download"`
	UserAgent  string        `mapstructure:"user_agent"`
	Images     bool          `mapstructure:"images"`
	Timeout    time.Duration `mapstructure:"timeout"`
	WindowSize string        `mapstructure:"window_size"`
}

// Scroll configures the results-panel loading loop.
type Scroll struct {
	Pause      time.Duration `mapstructure:"pause"`
	MaxStale   int           `mapstructure:"max_stale"`
	MaxScrolls int           `mapstructure:"max_scrolls"`
}

// Extract configures per-result extraction.
type Extract struct {
	Details     bool          `mapstructure:"details"`
	ClickPause  time.Duration `mapstructure:"click_pause"`
	SidebarWait time.Duration `mapstructure:"sidebar_wait"`
	Emails      bool          `mapstructure:"emails"`
	SearchPause time.Duration `mapstructure:"search_pause"`
}

// Output configures exported files.
type Output struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

// Log configures the logger.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Options tells Load where to look besides the defaults.
type Options struct {
	// File is an explicit config file. When empty, gmapscrape.yaml is searched
	// in the working directory and $HOME/.config/gmapscrape.
	File string
	// Flags maps config keys (e.g. "scroll.max_scrolls") to command flags.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
	// EnvFile is loaded with godotenv when it exists.
	EnvFile string
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.download", true)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.images", true)
	v.SetDefault("browser.timeout", DefaultTimeout)
	v.SetDefault("browser.window_size", "1920,1080")

	v.SetDefault("scroll.pause", DefaultScrollPause)
	v.SetDefault("scroll.max_stale", DefaultMaxStale)
	v.SetDefault("scroll.max_scrolls", DefaultMaxScrolls)

	v.SetDefault("extract.details", true)
	v.SetDefault("extract.click_pause", DefaultClickPause)
	v.SetDefault("extract.sidebar_wait", DefaultSidebarWait)
	v.SetDefault("extract.emails", false)
	v.SetDefault("extract.search_pause", DefaultSearchPause)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.formats", []string{"csv", "json"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "scraper.log")
}

// Load resolves configuration from defaults, an optional YAML file, .env,
// GMAPSCRAPE_* environment variables and command flags, in increasing order
// of precedence.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	SetDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("gmapscrape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/gmapscrape")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("unknown flag %q for key %s", name, key)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Output.Formats = normalizeFormats(cfg.Output.Formats)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser.timeout must be positive")
	}
	if c.Scroll.Pause < 0 {
		return fmt.Errorf("scroll.pause cannot be negative")
	}
	if c.Scroll.MaxStale <= 0 {
		return fmt.Errorf("scroll.max_stale must be positive")
	}
	if c.Scroll.MaxScrolls <= 0 {
		return fmt.Errorf("scroll.max_scrolls must be positive")
	}
	if c.Extract.ClickPause < 0 || c.Extract.SidebarWait < 0 || c.Extract.SearchPause < 0 {
		return fmt.Errorf("extract pauses cannot be negative")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}

// normalizeFormats lowercases, trims and splits comma-joined values, which is
// how formats arrive from environment variables.
func normalizeFormats(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range in {
		for _, f := range strings.Split(raw, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
