package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported browser drivers
const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
)

// DefaultQuery is the LinkedIn-scoped search used when SEARCH_QUERY is unset
const DefaultQuery = "site:linkedin.com/in/ software engineer"

// Config is captured once at process start and handed to every step.
type Config struct {
	Query        string `yaml:"search_query"`
	Headless     bool   `yaml:"headless"`
	UseTimestamp bool   `yaml:"use_timestamp"`
	OutputFile   string `yaml:"output_file"`
	MaxResults   int    `yaml:"max_results"`
	ChromeBin    string `yaml:"chrome_bin"`

	FreshResults bool   `yaml:"fresh_results"`
	MaxPages     int    `yaml:"max_pages"`
	Driver       string `yaml:"browser_driver"`

	PageTimeout   time.Duration `yaml:"page_timeout"`
	RenderWaitMin time.Duration `yaml:"render_wait_min"`
	RenderWaitMax time.Duration `yaml:"render_wait_max"`
	PageInterval  time.Duration `yaml:"page_interval"`

	// StatusFile is the run status sidecar path. Empty derives it from the
	// output file, "-" disables it.
	StatusFile string `yaml:"status_file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Query:         DefaultQuery,
		Headless:      true,
		UseTimestamp:  false,
		OutputFile:    "linkedin_profiles.csv",
		MaxResults:    30,
		MaxPages:      1,
		Driver:        DriverRod,
		PageTimeout:   30 * time.Second,
		RenderWaitMin: 2 * time.Second,
		RenderWaitMax: 5 * time.Second,
		PageInterval:  3 * time.Second,
	}
}

// LoadDotEnv copies .env (if present) into the process environment without
// overriding variables already set. FromEnv(os.LookupEnv) then sees
// defaults < SCRAPER_CONFIG yaml < .env/env.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("⚠️ Unable to load .env file: %v\n", err)
	}
}

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// FromEnv builds a Config from defaults, the yaml file named by
// SCRAPER_CONFIG and the variables visible through lookup.
func FromEnv(lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path, ok := lookup("SCRAPER_CONFIG"); ok && strings.TrimSpace(path) != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		b, err := ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid integer %q", key, v))
			return
		}
		*dst = n
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, v))
			return
		}
		*dst = d
	}

	str("SEARCH_QUERY", &cfg.Query)
	boolean("HEADLESS", &cfg.Headless)
	boolean("USE_TIMESTAMP", &cfg.UseTimestamp)
	str("OUTPUT_FILE", &cfg.OutputFile)
	integer("MAX_RESULTS", &cfg.MaxResults)
	str("CHROME_BIN", &cfg.ChromeBin)
	boolean("FRESH_RESULTS", &cfg.FreshResults)
	integer("MAX_PAGES", &cfg.MaxPages)
	str("BROWSER_DRIVER", &cfg.Driver)
	duration("PAGE_TIMEOUT", &cfg.PageTimeout)
	duration("RENDER_WAIT_MIN", &cfg.RenderWaitMin)
	duration("RENDER_WAIT_MAX", &cfg.RenderWaitMax)
	duration("PAGE_INTERVAL", &cfg.PageInterval)
	str("STATUS_FILE", &cfg.StatusFile)

	cfg.Driver = strings.ToLower(cfg.Driver)

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Query) == "" {
		errs = append(errs, errors.New("search query is empty"))
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		errs = append(errs, errors.New("output file is empty"))
	}
	if c.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("max results must be positive, got %d", c.MaxResults))
	}
	if c.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("max pages must be positive, got %d", c.MaxPages))
	}
	switch c.Driver {
	case DriverRod, DriverChromedp:
	default:
		errs = append(errs, fmt.Errorf("unknown browser driver %q (want %q or %q)", c.Driver, DriverRod, DriverChromedp))
	}
	if c.PageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("page timeout must be positive, got %s", c.PageTimeout))
	}
	if c.RenderWaitMin < 0 || c.RenderWaitMax < 0 {
		errs = append(errs, errors.New("render wait must not be negative"))
	}
	if c.RenderWaitMin > c.RenderWaitMax {
		errs = append(errs, fmt.Errorf("render wait min %s exceeds max %s", c.RenderWaitMin, c.RenderWaitMax))
	}
	if c.PageInterval < 0 {
		errs = append(errs, fmt.Errorf("page interval must not be negative, got %s", c.PageInterval))
	}
	if c.StatusFile != "" && c.StatusFile != "-" && filepath.Clean(c.StatusFile) == filepath.Clean(c.OutputFile) {
		errs = append(errs, fmt.Errorf("status file %q would overwrite the output file", c.StatusFile))
	}

	return errors.Join(errs...)
}

// ParseBool accepts true/false, 1/0, yes/no and on/off in any case
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
