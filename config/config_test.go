package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		cfg := ServiceConfig{Name: "svc", Environment: env}
		cfg.Logging.ApplyDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", valid("moon"), true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: pipelinectl
environment: staging
logging:
  level: debug
  format: json
server:
  port: 9090
registry:
  paths:
    - ./palette
  pipeline_properties: ./pipeline.yaml
validation:
  cycle_timeout: 500ms
  migrate_on_open: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, ".env")), WithEnvPrefix("PKTEST"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Registry.Paths) != 1 || cfg.Registry.Paths[0] != "./palette" {
		t.Errorf("unexpected registry paths: %v", cfg.Registry.Paths)
	}
	if cfg.Registry.PipelineProperties != "./pipeline.yaml" {
		t.Errorf("unexpected pipeline properties path %q", cfg.Registry.PipelineProperties)
	}
	if cfg.Validation.CycleTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.Validation.CycleTimeout)
	}
	if !cfg.Validation.MigrateOnOpen {
		t.Error("expected migrate_on_open=true")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PKENV_SERVER_PORT", "7070")
	t.Setenv("PKENV_VALIDATION_CYCLE_TIMEOUT", "2s")
	t.Setenv("SERVER_PORT", "1111")

	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")), WithEnvPrefix("PKENV"),
		WithFileSystem(&mockFS{files: map[string]bool{}}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected prefixed env to set port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Validation.CycleTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Validation.CycleTimeout)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithFileSystem(&mockFS{files: map[string]bool{}}), WithEnvPrefix("PKNONE"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "pipelinectl" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Validation.CycleTimeout != DefaultCycleTimeout {
		t.Errorf("expected default cycle timeout, got %v", cfg.Validation.CycleTimeout)
	}
	if cfg.Server.Port == 0 {
		t.Error("expected default server port")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("environment: moon\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(WithConfigFile(path), WithEnvPrefix("PKNONE")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/pipelinectl/config.yml": true,
		"./.env":                       true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("pipelinectl", LoaderConfig{})
	if files.ConfigFile != "./cmd/pipelinectl/config.yml" {
		t.Errorf("expected ./cmd/pipelinectl/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("VALIDATION_CYCLE_TIMEOUT")
	want := map[string]bool{
		"validation_cycle_timeout": false,
		"validation.cycle_timeout": false,
		"validation.cycle.timeout": false,
		"validation_cycle.timeout": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
	if got := envKeyVariants("PORT"); len(got) != 1 || got[0] != "port" {
		t.Errorf("unexpected single-part variants %v", got)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }

func TestOptions(t *testing.T) {
	var lc LoaderConfig
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("pipelinectl_")(&lc)
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config %+v", lc)
	}
	if lc.EnvPrefix != "PIPELINECTL" {
		t.Errorf("expected normalized prefix, got %q", lc.EnvPrefix)
	}
}
