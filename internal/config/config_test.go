package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr :8080, got %q", cfg.ListenAddr)
	}
	if !cfg.OpsAPIEnabled {
		t.Fatalf("expected operations api enabled by default")
	}
	if cfg.OpsDBEnabled {
		t.Fatalf("expected operations db disabled by default")
	}
	if cfg.DrilldownDefaultPageSize != 25 {
		t.Fatalf("expected default page size 25, got %d", cfg.DrilldownDefaultPageSize)
	}
	if cfg.DrilldownMaxPageSize != 200 {
		t.Fatalf("expected max page size 200, got %d", cfg.DrilldownMaxPageSize)
	}
	if cfg.OpsAPITimeout != 10*time.Second {
		t.Fatalf("expected 10s ops api timeout, got %s", cfg.OpsAPITimeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_OPS_API_ENABLED", "false")
	t.Setenv("APP_DRILLDOWN_DEFAULT_PAGE_SIZE", "50")

	cfg := FromEnv()

	if cfg.ListenAddr != ":9999" {
		t.Fatalf("expected overridden listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.OpsAPIEnabled {
		t.Fatalf("expected operations api disabled")
	}
	if cfg.DrilldownDefaultPageSize != 50 {
		t.Fatalf("expected page size 50, got %d", cfg.DrilldownDefaultPageSize)
	}
}

func TestApplyEnvDefaultsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.env")
	content := strings.Join([]string{
		"# comment",
		"",
		"APP_TEST_FILE_KEY=from-file",
		`APP_TEST_QUOTED_KEY="quoted value"`,
		"malformed line without equals",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("APP_TEST_FILE_KEY", "")
	t.Setenv("APP_TEST_QUOTED_KEY", "")

	if err := applyEnvDefaultsFromFile(path); err != nil {
		t.Fatalf("failed to apply env file: %v", err)
	}

	if got := os.Getenv("APP_TEST_FILE_KEY"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
	if got := os.Getenv("APP_TEST_QUOTED_KEY"); got != "quoted value" {
		t.Fatalf("expected quotes stripped, got %q", got)
	}
}

func TestApplyEnvDefaultsFromFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.env")
	if err := os.WriteFile(path, []byte("APP_TEST_SET_KEY=file-value\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("APP_TEST_SET_KEY", "env-value")

	if err := applyEnvDefaultsFromFile(path); err != nil {
		t.Fatalf("failed to apply env file: %v", err)
	}
	if got := os.Getenv("APP_TEST_SET_KEY"); got != "env-value" {
		t.Fatalf("expected environment to win, got %q", got)
	}
}

func TestOpsMySQLDSN(t *testing.T) {
	cfg := Config{
		OpsDBUser:         "itad",
		OpsDBPassword:     "secret",
		OpsDBHost:         "db.internal",
		OpsDBPort:         3307,
		OpsDBName:         "itad_ops",
		OpsDBConnTimeout:  5 * time.Second,
		OpsDBQueryTimeout: 10 * time.Second,
	}

	dsn := cfg.OpsMySQLDSN()

	if !strings.HasPrefix(dsn, "itad:secret@tcp(db.internal:3307)/itad_ops?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("expected parseTime in dsn: %s", dsn)
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Fatalf("expected charset in dsn: %s", dsn)
	}
}
