package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mickamy/apiwire/config"
)

func writeYAML(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return p
}

func TestLoadAppliesDefaultsWhenNoFileOrEnv(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s default", cfg.Timeout)
	}
	if cfg.SynByte != 0x16 {
		t.Fatalf("syn byte = %#x, want 0x16 default", cfg.SynByte)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "address: 127.0.0.1:9000\ntimeout: 5s\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("address = %q", cfg.Address)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s from yaml", cfg.Timeout)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "address: 127.0.0.1:9000\n")

	t.Setenv("APIWIRE_ADDRESS", "10.0.0.1:9001")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != "10.0.0.1:9001" {
		t.Fatalf("address = %q, want env override to win over yaml", cfg.Address)
	}
}

func TestMissingYAMLFileIsNotAnError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestEnvOverridesMetricsAndInspectorAddr(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "metrics_addr: 127.0.0.1:9100\ninspector_addr: 127.0.0.1:9200\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Fatalf("metrics addr = %q, want yaml value", cfg.MetricsAddr)
	}
	if cfg.InspectorAddr != "127.0.0.1:9200" {
		t.Fatalf("inspector addr = %q, want yaml value", cfg.InspectorAddr)
	}

	t.Setenv("APIWIRE_METRICS_ADDR", "10.0.0.2:9100")
	t.Setenv("APIWIRE_INSPECTOR_ADDR", "10.0.0.2:9200")
	cfg, err = config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsAddr != "10.0.0.2:9100" {
		t.Fatalf("metrics addr = %q, want env override to win over yaml", cfg.MetricsAddr)
	}
	if cfg.InspectorAddr != "10.0.0.2:9200" {
		t.Fatalf("inspector addr = %q, want env override to win over yaml", cfg.InspectorAddr)
	}
}

func TestMetricsAndInspectorAddrDefaultToEmpty(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("metrics addr = %q, want empty default (disabled)", cfg.MetricsAddr)
	}
	if cfg.InspectorAddr != "" {
		t.Fatalf("inspector addr = %q, want empty default (disabled)", cfg.InspectorAddr)
	}
}
