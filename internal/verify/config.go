package verify

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the pipeline time budget, scoring weights, and verdict
// thresholds. Checkpoint values are seconds elapsed since request start and
// must be strictly increasing up to the overall ceiling.
type Config struct {
	CeilingSeconds         int     `toml:"ceiling_seconds"`
	AbortExtractionSeconds int     `toml:"abort_extraction_seconds"`
	AbortMatchingSeconds   int     `toml:"abort_matching_seconds"`
	SkipVisualSeconds      int     `toml:"skip_visual_seconds"`
	StopVisualSeconds      int     `toml:"stop_visual_seconds"`
	TopK                   int     `toml:"top_k"`
	TextWeight             float64 `toml:"text_weight"`
	VisualWeight           float64 `toml:"visual_weight"`
	ConformeThreshold      float64 `toml:"conforme_threshold"`
	SuspectThreshold       float64 `toml:"suspect_threshold"`
	MaxImageSize           int64   `toml:"max_image_size"`
	AlertPreview           int     `toml:"alert_preview"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CeilingSeconds string
	TopK           string
	MaxImageSize   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.CeilingSeconds != 0 {
		c.CeilingSeconds = overlay.CeilingSeconds
	}
	if overlay.AbortExtractionSeconds != 0 {
		c.AbortExtractionSeconds = overlay.AbortExtractionSeconds
	}
	if overlay.AbortMatchingSeconds != 0 {
		c.AbortMatchingSeconds = overlay.AbortMatchingSeconds
	}
	if overlay.SkipVisualSeconds != 0 {
		c.SkipVisualSeconds = overlay.SkipVisualSeconds
	}
	if overlay.StopVisualSeconds != 0 {
		c.StopVisualSeconds = overlay.StopVisualSeconds
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
	if overlay.TextWeight != 0 {
		c.TextWeight = overlay.TextWeight
	}
	if overlay.VisualWeight != 0 {
		c.VisualWeight = overlay.VisualWeight
	}
	if overlay.ConformeThreshold != 0 {
		c.ConformeThreshold = overlay.ConformeThreshold
	}
	if overlay.SuspectThreshold != 0 {
		c.SuspectThreshold = overlay.SuspectThreshold
	}
	if overlay.MaxImageSize != 0 {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if overlay.AlertPreview != 0 {
		c.AlertPreview = overlay.AlertPreview
	}
}

// Ceiling returns the overall wall-clock limit as a duration.
func (c *Config) Ceiling() time.Duration {
	return time.Duration(c.CeilingSeconds) * time.Second
}

func (c *Config) loadDefaults() {
	if c.CeilingSeconds == 0 {
		c.CeilingSeconds = 300
	}
	if c.AbortExtractionSeconds == 0 {
		c.AbortExtractionSeconds = 240
	}
	if c.AbortMatchingSeconds == 0 {
		c.AbortMatchingSeconds = 250
	}
	if c.SkipVisualSeconds == 0 {
		c.SkipVisualSeconds = 260
	}
	if c.StopVisualSeconds == 0 {
		c.StopVisualSeconds = 280
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.TextWeight == 0 {
		c.TextWeight = 0.5
	}
	if c.VisualWeight == 0 {
		c.VisualWeight = 0.5
	}
	if c.ConformeThreshold == 0 {
		c.ConformeThreshold = 80
	}
	if c.SuspectThreshold == 0 {
		c.SuspectThreshold = 50
	}
	if c.MaxImageSize == 0 {
		c.MaxImageSize = 10 << 20
	}
	if c.AlertPreview == 0 {
		c.AlertPreview = 3
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CeilingSeconds != "" {
		if v := os.Getenv(env.CeilingSeconds); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.CeilingSeconds = n
			}
		}
	}
	if env.TopK != "" {
		if v := os.Getenv(env.TopK); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.TopK = n
			}
		}
	}
	if env.MaxImageSize != "" {
		if v := os.Getenv(env.MaxImageSize); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.MaxImageSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.AbortExtractionSeconds >= c.AbortMatchingSeconds {
		return fmt.Errorf("abort_extraction_seconds must precede abort_matching_seconds")
	}
	if c.AbortMatchingSeconds >= c.SkipVisualSeconds {
		return fmt.Errorf("abort_matching_seconds must precede skip_visual_seconds")
	}
	if c.SkipVisualSeconds >= c.StopVisualSeconds {
		return fmt.Errorf("skip_visual_seconds must precede stop_visual_seconds")
	}
	if c.StopVisualSeconds >= c.CeilingSeconds {
		return fmt.Errorf("stop_visual_seconds must precede ceiling_seconds")
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.TextWeight < 0 || c.VisualWeight < 0 {
		return fmt.Errorf("score weights cannot be negative")
	}
	if sum := c.TextWeight + c.VisualWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("text_weight and visual_weight must sum to 1")
	}
	if c.SuspectThreshold <= 0 || c.SuspectThreshold >= c.ConformeThreshold {
		return fmt.Errorf("suspect_threshold must fall below conforme_threshold")
	}
	if c.ConformeThreshold > 100 {
		return fmt.Errorf("conforme_threshold cannot exceed 100")
	}
	if c.MaxImageSize < 1 {
		return fmt.Errorf("max_image_size must be positive")
	}
	if c.AlertPreview < 1 {
		return fmt.Errorf("alert_preview must be positive")
	}
	return nil
}
