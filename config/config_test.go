package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/surgicalcoder/deploymentharness/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		var cfg ServiceConfig
		cfg.ApplyDefaults()
		if cfg.Name != "harness" {
			t.Errorf("expected 'harness', got %q", cfg.Name)
		}
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.ServiceName != "harness" {
			t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "moon"}, "environment"},
		{"bad log level", ServiceConfig{Name: "svc", Environment: "test"}, "logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.name != "bad log level" {
				tc.cfg.Logging.ApplyDefaults()
			}
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestHarnessConfigDefaultsValidate(t *testing.T) {
	var cfg HarnessConfig
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Runner.GracePeriod != 5*time.Second {
		t.Errorf("grace period = %v", cfg.Runner.GracePeriod)
	}

	cfg.Runner.MaxLineBytes = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "runner") {
		t.Errorf("expected runner error, got %v", err)
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: deploy-harness
environment: staging
logging:
  level: warn
  format: json
runner:
  grace_period: 2s
  max_line_bytes: 4096
  passthrough: true
telemetry:
  tracing:
    enabled: true
    sample_rate: 0.25
`)

	var cfg HarnessConfig
	if err := LoadConfig("harness", &cfg, WithConfigFile(configPath), WithEnvPrefix("HARNESS_TEST_YAML")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "deploy-harness" {
		t.Errorf("expected name 'deploy-harness', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Runner.GracePeriod != 2*time.Second {
		t.Errorf("grace period = %v", cfg.Runner.GracePeriod)
	}
	if cfg.Runner.MaxLineBytes != 4096 || !cfg.Runner.Passthrough {
		t.Errorf("unexpected runner: %+v", cfg.Runner)
	}
	if !cfg.Telemetry.Tracing.Enabled || cfg.Telemetry.Tracing.SampleRate != 0.25 {
		t.Errorf("unexpected tracing: %+v", cfg.Telemetry.Tracing)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg HarnessConfig
	err := LoadConfig("harness", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestLoadConfigNoFiles(t *testing.T) {
	var cfg HarnessConfig
	err := LoadConfig("harness", &cfg, WithFileSystem(&mockFS{}), WithEnvPrefix("HARNESS_TEST_NONE"))
	if err != nil {
		t.Fatalf("expected success with no files, got %v", err)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "runner:\n  grace_period: 2s\nlogging:\n  level: info\n")

	t.Setenv("HARNESS_TEST_ENV_RUNNER_GRACE_PERIOD", "9s")
	t.Setenv("HARNESS_TEST_ENV_LOGGING_LEVEL", "error")

	var cfg HarnessConfig
	if err := LoadConfig("harness", &cfg, WithConfigFile(configPath), WithEnvPrefix("HARNESS_TEST_ENV")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Runner.GracePeriod != 9*time.Second {
		t.Errorf("expected env override 9s, got %v", cfg.Runner.GracePeriod)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env override error, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "HARNESS_TEST_DOTENV_RUNNER_MAX_LINE_BYTES=2048\n")
	t.Cleanup(func() { os.Unsetenv("HARNESS_TEST_DOTENV_RUNNER_MAX_LINE_BYTES") })

	var cfg HarnessConfig
	err := LoadConfig("harness", &cfg,
		WithFileSystem(&envOnlyFS{env: envPath}),
		WithEnvFile(envPath),
		WithEnvPrefix("HARNESS_TEST_DOTENV"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Runner.MaxLineBytes != 2048 {
		t.Errorf("expected 2048 from .env, got %d", cfg.Runner.MaxLineBytes)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("HARNESS_TEST_FLAGS_RUNNER_GRACE_PERIOD", "9s")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Duration("grace-period", 0, "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--grace-period=1s"}); err != nil {
		t.Fatal(err)
	}

	var cfg HarnessConfig
	err := LoadConfig("harness", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("HARNESS_TEST_FLAGS"),
		WithFlags(fs, FlagBindings{
			"grace-period": "runner.grace_period",
			"log-level":    "logging.level",
		}),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Runner.GracePeriod != time.Second {
		t.Errorf("expected flag to win with 1s, got %v", cfg.Runner.GracePeriod)
	}
	if cfg.Logging.Level != "" {
		t.Errorf("unset flag default should stay empty, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigUnknownFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var cfg HarnessConfig
	err := LoadConfig("harness", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("HARNESS_TEST_UNKNOWN"),
		WithFlags(fs, FlagBindings{"nope": "runner.grace_period"}),
	)
	if !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/harness/config.yml": true,
		".env":                     true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("harness", LoaderConfig{})
	if files.ConfigFile != "./cmd/harness/config.yml" {
		t.Errorf("expected config file at ./cmd/harness/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile == "" {
		t.Error("expected env file to be resolved")
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("RUNNER_GRACE_PERIOD")
	want := map[string]bool{"runner.grace_period": false, "runner_grace_period": false}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("single-part key variants = %v", got)
	}
}

func TestDump(t *testing.T) {
	var cfg HarnessConfig
	cfg.ApplyDefaults()

	var buf bytes.Buffer
	if err := Dump(&buf, &cfg); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "grace_period: 5s") {
		t.Errorf("expected human-readable duration, got:\n%s", out)
	}

	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}
	if back["name"] != "harness" {
		t.Errorf("expected inline name at top level, got %v", back["name"])
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

type envOnlyFS struct {
	env string
}

func (e *envOnlyFS) Exists(path string) bool { return path == e.env }
func (e *envOnlyFS) LoadEnv(path string) error {
	return (&RealFileSystem{}).LoadEnv(path)
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("harness_")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected paths: %+v", lc)
	}
	if lc.EnvPrefix != "HARNESS" {
		t.Errorf("expected normalised prefix HARNESS, got %q", lc.EnvPrefix)
	}
}
