package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"DealFinder/internal/discount"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// ScraperConfig holds page acquisition settings.
type ScraperConfig struct {
	Mode              string        `yaml:"mode"`
	Workers           string        `yaml:"workers"`
	Headless          bool          `yaml:"headless"`
	UserAgent         string        `yaml:"user_agent"`
	MaxWait           time.Duration `yaml:"max_wait"`
	CheckInterval     time.Duration `yaml:"check_interval"`
	ScrollSteps       int           `yaml:"scroll_steps"`
	ScrollDelay       time.Duration `yaml:"scroll_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// DiscountConfig holds the inference policy.
type DiscountConfig struct {
	MinDiscount         float64  `yaml:"min_discount"`
	MinPercent          float64  `yaml:"min_percent"`
	MaxPercent          float64  `yaml:"max_percent"`
	MaxPrice            float64  `yaml:"max_price"`
	Currencies          []string `yaml:"currencies"`
	Strategies          []string `yaml:"strategies"`
	BadgeMarkers        []string `yaml:"badge_markers"`
	BadgeRequireKeyword bool     `yaml:"badge_require_keyword"`
	TextRequireKeyword  bool     `yaml:"text_require_keyword"`
	PriceRoles          string   `yaml:"price_roles"`
}

// LocatorConfig holds the card-detection settings.
type LocatorConfig struct {
	Selectors     []string `yaml:"selectors"`
	MinCandidates int      `yaml:"min_candidates"`
	ReadyMin      int      `yaml:"ready_min"`
}

// ExportConfig holds where scan results are written. An empty Prefix names
// files after the scanned host.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	CSV    bool   `yaml:"csv"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Discount DiscountConfig `yaml:"discount"`
	Locator  LocatorConfig  `yaml:"locator"`
	Export   ExportConfig   `yaml:"export"`
	Server   struct {
		Port   string `yaml:"port"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"server"`
	Metrics struct {
		Port string `yaml:"port"`
	} `yaml:"metrics"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{
		Scraper: ScraperConfig{
			Mode:              "browser",
			Workers:           "auto",
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			MaxWait:           10 * time.Second,
			CheckInterval:     500 * time.Millisecond,
			ScrollSteps:       5,
			ScrollDelay:       time.Second,
			RequestsPerSecond: 1,
			Timeout:           30 * time.Second,
		},
		Discount: DiscountConfig{
			MinDiscount:        25,
			MinPercent:         discount.DefaultBounds.MinPercent,
			MaxPercent:         discount.DefaultBounds.MaxPercent,
			MaxPrice:           discount.DefaultMaxPrice,
			Currencies:         []string{"€"},
			Strategies:         append([]string(nil), discount.DefaultStrategyOrder...),
			BadgeMarkers:       append([]string(nil), discount.DefaultBadgeMarkers...),
			TextRequireKeyword: true,
			PriceRoles:         discount.SaleFirst.String(),
		},
		Locator: LocatorConfig{
			MinCandidates: 10,
			ReadyMin:      5,
		},
		Export: ExportConfig{
			Dir:    "./exports",
			Prefix: "deals",
			CSV:    true,
		},
	}
	cfg.Server.Port = "8080"
	return cfg
}

// Load reads the YAML file at path on top of the defaults, applies .env and
// DEALFINDER_* overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: could not load .env file: %v", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config YAML: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads the configuration or stops the program.
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DEALFINDER_API_KEY"); ok {
		c.Server.ApiKey = v
	}
	if v, ok := os.LookupEnv("DEALFINDER_EXPORT_DIR"); ok && v != "" {
		c.Export.Dir = v
	}
	if v, ok := os.LookupEnv("DEALFINDER_MODE"); ok && v != "" {
		c.Scraper.Mode = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("DEALFINDER_HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: DEALFINDER_HEADLESS=%q", ErrInvalidConfig, v)
		}
		c.Scraper.Headless = b
	}
	if v, ok := os.LookupEnv("DEALFINDER_MIN_DISCOUNT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: DEALFINDER_MIN_DISCOUNT=%q", ErrInvalidConfig, v)
		}
		c.Discount.MinDiscount = f
	}
	return nil
}

// Validate checks the settings that would otherwise fail deep inside a scan.
func (c *Config) Validate() error {
	switch c.Scraper.Mode {
	case "browser", "static":
	default:
		return fmt.Errorf("%w: scraper.mode must be browser or static, got %q", ErrInvalidConfig, c.Scraper.Mode)
	}
	d := c.Discount
	if d.MinPercent < 0 || d.MaxPercent > 100 || d.MinPercent >= d.MaxPercent {
		return fmt.Errorf("%w: discount bounds %v..%v", ErrInvalidConfig, d.MinPercent, d.MaxPercent)
	}
	if d.MaxPrice <= 0 {
		return fmt.Errorf("%w: discount.max_price must be positive", ErrInvalidConfig)
	}
	if len(d.Currencies) == 0 {
		return fmt.Errorf("%w: discount.currencies is empty", ErrInvalidConfig)
	}
	if _, err := discount.NewPolicy(c.Policy()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := discount.ParseRoleOrder(d.PriceRoles); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Locator.MinCandidates < 1 || c.Locator.ReadyMin < 1 {
		return fmt.Errorf("%w: locator thresholds must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Policy translates the discount section into inference options.
func (c *Config) Policy() discount.Options {
	return discount.Options{
		Strategies:          c.Discount.Strategies,
		Currencies:          c.Discount.Currencies,
		MaxPrice:            c.Discount.MaxPrice,
		Bounds:              discount.Bounds{MinPercent: c.Discount.MinPercent, MaxPercent: c.Discount.MaxPercent},
		BadgeMarkers:        c.Discount.BadgeMarkers,
		BadgeRequireKeyword: c.Discount.BadgeRequireKeyword,
		TextPermissive:      !c.Discount.TextRequireKeyword,
	}
}
