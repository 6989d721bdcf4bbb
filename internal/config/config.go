// Package config loads image-tagger settings from a TOML file and
// IMAGE_TAGGER_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-tagger/internal/logging"
	"github.com/ironsheep/image-tagger/internal/ocr"
	"github.com/ironsheep/image-tagger/internal/redact"
	"github.com/ironsheep/image-tagger/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_TAGGER_"

// Config is the complete application configuration.
type Config struct {
	// Folder is the image library folder.
	Folder string `toml:"folder"`

	// Addr is the HTTP listen address for serve.
	Addr string `toml:"addr"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Store  StoreConfig  `toml:"store"`
	Label  LabelConfig  `toml:"label"`
	Output OutputConfig `toml:"output"`
	OCR    OCRConfig    `toml:"ocr"`
}

// StoreConfig selects where tags and regions live.
type StoreConfig struct {
	// Backend is "json" or "badger".
	Backend string `toml:"backend"`

	// Path overrides the default location inside the folder: data.json for
	// the JSON backend, .image-tagger.db for Badger.
	Path string `toml:"path"`
}

// LabelConfig styles the text drawn over redacted regions.
type LabelConfig struct {
	Fonts        []string `toml:"fonts"`
	Fill         string   `toml:"fill"`
	Outline      string   `toml:"outline"`
	OutlineWidth int      `toml:"outline_width"`
}

// OutputConfig controls re-encoding of redacted images.
type OutputConfig struct {
	JPEGQuality int    `toml:"jpeg_quality"`
	Background  string `toml:"background"`
}

// OCRConfig controls text detection for suggestions.
type OCRConfig struct {
	Engine        string  `toml:"engine"`
	Language      string  `toml:"language"`
	Level         string  `toml:"level"`
	MinConfidence float64 `toml:"min_confidence"`
	Padding       int     `toml:"padding"`
}

// Default returns the built-in configuration.
func Default() Config {
	o := ocr.DefaultOptions()
	return Config{
		Folder:   ".",
		Addr:     ":5000",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: store.BackendJSON,
		},
		Label: LabelConfig{
			Fonts:        append([]string(nil), redact.DefaultFonts...),
			Fill:         "#ffffff",
			Outline:      "#000000",
			OutlineWidth: 2,
		},
		Output: OutputConfig{
			JPEGQuality: 95,
			Background:  "#ffffff",
		},
		OCR: OCRConfig{
			Engine:        string(o.Engine),
			Language:      o.Language,
			Level:         string(o.Level),
			MinConfidence: o.MinConfidence,
			Padding:       o.Padding,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (when
// path is not empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from IMAGE_TAGGER_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("FOLDER", &c.Folder)
	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("STORE_BACKEND", &c.Store.Backend)
	str("STORE_PATH", &c.Store.Path)
	str("OCR_ENGINE", &c.OCR.Engine)
	str("OCR_LANGUAGE", &c.OCR.Language)
	str("OCR_LEVEL", &c.OCR.Level)

	if v := getenv(EnvPrefix + "JPEG_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sJPEG_QUALITY %q: %w", EnvPrefix, v, err)
		}
		c.Output.JPEGQuality = q
	}
	if v := getenv(EnvPrefix + "LABEL_FONTS"); v != "" {
		c.Label.Fonts = strings.Split(v, ",")
	}
	return nil
}

// Validate checks every field that has a fixed domain.
func (c Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case store.BackendJSON, store.BackendBadger:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", store.ErrUnknownBackend, c.Store.Backend))
	}
	if _, err := c.LabelStyle(); err != nil {
		errs = append(errs, err)
	}
	if _, err := colorful.Hex(c.Output.Background); err != nil {
		errs = append(errs, fmt.Errorf("invalid output background %q: %w", c.Output.Background, err))
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be 1-100, got %d", c.Output.JPEGQuality))
	}
	if _, err := c.OCROptions(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StorePath returns the store location for folder.
func (c Config) StorePath(folder string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == store.BackendBadger {
		return filepath.Join(folder, ".image-tagger.db")
	}
	return filepath.Join(folder, "data.json")
}

// LabelStyle parses the label colors.
func (c Config) LabelStyle() (redact.LabelStyle, error) {
	return redact.ParseLabelStyle(c.Label.Fill, c.Label.Outline, c.Label.OutlineWidth)
}

// EngineOptions converts the label and output settings into engine options.
// Fonts are located here, so this is only called once per process.
func (c Config) EngineOptions() ([]redact.Option, error) {
	style, err := c.LabelStyle()
	if err != nil {
		return nil, err
	}
	bg, err := colorful.Hex(c.Output.Background)
	if err != nil {
		return nil, fmt.Errorf("invalid output background %q: %w", c.Output.Background, err)
	}
	return []redact.Option{
		redact.WithFonts(redact.LoadFonts(c.Label.Fonts...)),
		redact.WithLabelStyle(style),
		redact.WithJPEGQuality(c.Output.JPEGQuality),
		redact.WithBackground(bg),
	}, nil
}

// OCROptions converts the OCR settings.
func (c Config) OCROptions() (ocr.Options, error) {
	engine, err := ocr.ParseEngine(c.OCR.Engine)
	if err != nil {
		return ocr.Options{}, err
	}
	level, err := ocr.ParseLevel(c.OCR.Level)
	if err != nil {
		return ocr.Options{}, err
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return ocr.Options{}, fmt.Errorf("ocr min_confidence must be 0-1, got %g", c.OCR.MinConfidence)
	}
	if c.OCR.Padding < 0 {
		return ocr.Options{}, fmt.Errorf("ocr padding must not be negative, got %d", c.OCR.Padding)
	}
	return ocr.Options{
		Engine:        engine,
		Language:      c.OCR.Language,
		Level:         level,
		MinConfidence: c.OCR.MinConfidence,
		Padding:       c.OCR.Padding,
	}, nil
}
