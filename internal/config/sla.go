package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/case-workflow/internal/sla"
)

// DefaultSLAMinutes applies when neither the file nor the environment sets a
// global threshold.
const DefaultSLAMinutes = 1440

// SLAConfig carries resolution-time thresholds per case category.
type SLAConfig = sla.Thresholds

// LoadSLA reads thresholds from the YAML file at path, if any, then applies
// the SLA_DEFAULT_MINUTES override. A missing file is not an error when path
// is empty.
//
//	default_minutes: 1440
//	categories:
//	  INQUIRY: 480
//	  COMPLAINT_FORMAL: 2880
func LoadSLA(path string) (SLAConfig, error) {
	cfg := SLAConfig{
		DefaultMinutes: DefaultSLAMinutes,
		PerCategory:    map[string]int{},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read sla config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse sla config: %w", err)
		}
	}

	if v := getEnvAsInt("SLA_DEFAULT_MINUTES", 0); v > 0 {
		cfg.DefaultMinutes = v
	}
	if cfg.PerCategory == nil {
		cfg.PerCategory = map[string]int{}
	}
	return cfg, nil
}
