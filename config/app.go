package config

import (
	"fmt"
	"time"

	"github.com/kbukum/pipelinekit/observability"
	"github.com/kbukum/pipelinekit/server"
	"github.com/kbukum/pipelinekit/validation"
)

// DefaultCycleTimeout bounds cycle detection on a single pipeline.
const DefaultCycleTimeout = 3 * time.Second

// Config is the pipelinectl configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Registry      RegistryConfig       `yaml:"registry" mapstructure:"registry"`
	Validation    ValidationConfig     `yaml:"validation" mapstructure:"validation"`
}

// RegistryConfig points at the node-type specs that make up the palette.
type RegistryConfig struct {
	// Paths are spec files or directories of spec files (.yaml, .yml, .json).
	Paths []string `yaml:"paths" mapstructure:"paths" json:"paths"`
	// PipelineProperties is a spec file describing pipeline-level properties.
	PipelineProperties string `yaml:"pipeline_properties" mapstructure:"pipeline_properties" json:"pipeline_properties"`
}

// ValidationConfig tunes document validation.
type ValidationConfig struct {
	CycleTimeout  time.Duration `yaml:"cycle_timeout" mapstructure:"cycle_timeout" json:"cycle_timeout" validate:"gte=0"`
	MigrateOnOpen bool          `yaml:"migrate_on_open" mapstructure:"migrate_on_open" json:"migrate_on_open"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pipelinectl"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults(c.Name)
	if c.Validation.CycleTimeout == 0 {
		c.Validation.CycleTimeout = DefaultCycleTimeout
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	if err := validation.Validate(c.Validation); err != nil {
		return fmt.Errorf("config.validation: %w", err)
	}
	return nil
}

// Load reads the pipelinectl configuration, applies defaults and validates it.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig("pipelinectl", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
