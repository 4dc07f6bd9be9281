// Package config holds the per-runtime-instance configuration described in
// spec §6.5, loaded from YAML the same way the teacher's
// internal/config/config.go loads GOX cell configuration: a plain struct
// with yaml tags and a constructor that fills in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limits mirrors the structural limits enforced by the envelope parser and
// surface store (spec §4.1 table, §3.1 invariant (c)).
type Limits struct {
	MaxComponents    int `yaml:"max_components"`
	MaxTemplateItems int `yaml:"max_template_items"`
	MaxDepth         int `yaml:"max_depth"`
	MaxPathSegments  int `yaml:"max_path_segments"`
}

// Runtime is the full configuration surface for one A2UI runtime instance
// (spec §6.5).
type Runtime struct {
	TopicPrefix       string        `yaml:"topic_prefix"`
	RetryMS           int           `yaml:"retry_ms"`
	EventRingSize     int           `yaml:"event_ring_size"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	Limits            Limits        `yaml:"limits"`

	// EventPostTimeout bounds an outbound client->server event POST
	// (spec §5 "Default event POST timeout 5 s").
	EventPostTimeout time.Duration `yaml:"event_post_timeout"`
	// SessionCreateTimeout bounds session-creation calls (spec §5 "session
	// create 10 s").
	SessionCreateTimeout time.Duration `yaml:"session_create_timeout"`
}

// Default returns a Runtime populated with every default from spec §6.5.
func Default() Runtime {
	return Runtime{
		TopicPrefix:       "a2ui:session:",
		RetryMS:           3000,
		EventRingSize:     100,
		HeartbeatInterval: 30 * time.Second,
		Limits: Limits{
			MaxComponents:    1000,
			MaxTemplateItems: 1000,
			MaxDepth:         64,
			MaxPathSegments:  32,
		},
		EventPostTimeout:     5 * time.Second,
		SessionCreateTimeout: 10 * time.Second,
	}
}

// Load reads a Runtime from a YAML file, filling any field left at its zero
// value with the corresponding default (so a config file only needs to
// override what it cares about).
func Load(path string) (Runtime, error) {
	rt := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Runtime{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return Runtime{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	rt.fillDefaults()
	return rt, nil
}

func (rt *Runtime) fillDefaults() {
	d := Default()
	if rt.TopicPrefix == "" {
		rt.TopicPrefix = d.TopicPrefix
	}
	if rt.RetryMS == 0 {
		rt.RetryMS = d.RetryMS
	}
	if rt.EventRingSize == 0 {
		rt.EventRingSize = d.EventRingSize
	}
	if rt.HeartbeatInterval == 0 {
		rt.HeartbeatInterval = d.HeartbeatInterval
	}
	if rt.Limits.MaxComponents == 0 {
		rt.Limits.MaxComponents = d.Limits.MaxComponents
	}
	if rt.Limits.MaxTemplateItems == 0 {
		rt.Limits.MaxTemplateItems = d.Limits.MaxTemplateItems
	}
	if rt.Limits.MaxDepth == 0 {
		rt.Limits.MaxDepth = d.Limits.MaxDepth
	}
	if rt.Limits.MaxPathSegments == 0 {
		rt.Limits.MaxPathSegments = d.Limits.MaxPathSegments
	}
	if rt.EventPostTimeout == 0 {
		rt.EventPostTimeout = d.EventPostTimeout
	}
	if rt.SessionCreateTimeout == 0 {
		rt.SessionCreateTimeout = d.SessionCreateTimeout
	}
}
