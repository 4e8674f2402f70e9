package verify

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := testConfig(t)

	if cfg.CeilingSeconds != 300 {
		t.Errorf("CeilingSeconds = %d, want 300", cfg.CeilingSeconds)
	}
	if cfg.AbortExtractionSeconds != 240 {
		t.Errorf("AbortExtractionSeconds = %d, want 240", cfg.AbortExtractionSeconds)
	}
	if cfg.AbortMatchingSeconds != 250 {
		t.Errorf("AbortMatchingSeconds = %d, want 250", cfg.AbortMatchingSeconds)
	}
	if cfg.SkipVisualSeconds != 260 {
		t.Errorf("SkipVisualSeconds = %d, want 260", cfg.SkipVisualSeconds)
	}
	if cfg.StopVisualSeconds != 280 {
		t.Errorf("StopVisualSeconds = %d, want 280", cfg.StopVisualSeconds)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.TextWeight != 0.5 || cfg.VisualWeight != 0.5 {
		t.Errorf("weights = %v/%v, want 0.5/0.5", cfg.TextWeight, cfg.VisualWeight)
	}
	if cfg.ConformeThreshold != 80 || cfg.SuspectThreshold != 50 {
		t.Errorf("thresholds = %v/%v, want 80/50", cfg.ConformeThreshold, cfg.SuspectThreshold)
	}
	if cfg.MaxImageSize != 10<<20 {
		t.Errorf("MaxImageSize = %d, want %d", cfg.MaxImageSize, 10<<20)
	}
	if cfg.Ceiling() != 300*time.Second {
		t.Errorf("Ceiling() = %v, want 5m0s", cfg.Ceiling())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"extraction checkpoint after matching", func(c *Config) {
			c.AbortExtractionSeconds = 255
		}},
		{"matching checkpoint after skip", func(c *Config) {
			c.AbortMatchingSeconds = 265
		}},
		{"skip checkpoint after stop", func(c *Config) {
			c.SkipVisualSeconds = 285
		}},
		{"stop checkpoint after ceiling", func(c *Config) {
			c.StopVisualSeconds = 310
		}},
		{"negative top k", func(c *Config) {
			c.TopK = -1
		}},
		{"weights exceed one", func(c *Config) {
			c.TextWeight = 0.7
			c.VisualWeight = 0.5
		}},
		{"suspect above conforme", func(c *Config) {
			c.SuspectThreshold = 90
		}},
		{"conforme above scale", func(c *Config) {
			c.ConformeThreshold = 120
		}},
		{"negative image size", func(c *Config) {
			c.MaxImageSize = -1
		}},
		{"negative alert preview", func(c *Config) {
			c.AlertPreview = -1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.loadDefaults()
			tt.mutate(cfg)

			if err := cfg.validate(); err == nil {
				t.Error("validate() = nil, want error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Merge(&Config{TopK: 5, ConformeThreshold: 85})

	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.ConformeThreshold != 85 {
		t.Errorf("ConformeThreshold = %v, want 85", cfg.ConformeThreshold)
	}
	if cfg.CeilingSeconds != 300 {
		t.Errorf("CeilingSeconds = %d after merge, want 300", cfg.CeilingSeconds)
	}
	if cfg.SuspectThreshold != 50 {
		t.Errorf("SuspectThreshold = %v after merge, want 50", cfg.SuspectThreshold)
	}
}
