// Package source implements the metrics backends widgets are polled from.
package source

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
)

// Defaults fill in whatever a dashboard's source block leaves out.
type Defaults struct {
	PrometheusURL string
	Timeout       time.Duration
	Logger        *log.Logger
}

// New builds the source for a dashboard. A nil cfg means Prometheus at the
// default URL.
func New(cfg *dashboard.SourceConfig, d Defaults) (engine.Source, error) {
	if cfg == nil || cfg.Type == "" || cfg.Type == dashboard.SourcePrometheus {
		url := d.PrometheusURL
		if cfg != nil && cfg.URL != "" {
			url = cfg.URL
		}
		p, err := NewPrometheus(PrometheusOptions{URL: url, Timeout: d.Timeout, Logger: d.Logger})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	if cfg.Type == dashboard.SourceSNMP {
		s, err := NewSNMP(cfg, d.Timeout, d.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown source type %q", cfg.Type)
}

// CheckQuery reports queries the backend can reject without a round trip.
// Only SNMP queries have a local syntax; PromQL is left to the server.
func CheckQuery(cfg *dashboard.SourceConfig, query string) error {
	if cfg != nil && cfg.Type == dashboard.SourceSNMP {
		_, err := parseOIDQuery(query)
		return err
	}
	return nil
}

// Describe returns a short human-readable name for the backend.
func Describe(cfg *dashboard.SourceConfig, defaultURL string) string {
	switch {
	case cfg == nil || cfg.Type == "" || cfg.Type == dashboard.SourcePrometheus:
		if cfg != nil && cfg.URL != "" {
			return "prometheus " + cfg.URL
		}
		return "prometheus " + defaultURL
	case cfg.Type == dashboard.SourceSNMP:
		port := cfg.Port
		if port == 0 {
			port = DefaultSNMPPort
		}
		return fmt.Sprintf("snmp %s:%d", cfg.Host, port)
	}
	return cfg.Type
}
