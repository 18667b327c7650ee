package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the dashboard API service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	OpsAPIEnabled bool
	OpsAPIBaseURL string
	OpsAPIToken   string
	OpsAPITimeout time.Duration

	OpsDBEnabled      bool
	OpsDBHost         string
	OpsDBPort         int
	OpsDBUser         string
	OpsDBPassword     string
	OpsDBName         string
	OpsDBConnTimeout  time.Duration
	OpsDBQueryTimeout time.Duration

	VendorMapSQLitePath string

	DrilldownDefaultPageSize int
	DrilldownMaxPageSize     int
}

// FromEnv loads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()
	loadSecretsDefaultsFromFile()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 20)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,

		OpsAPIEnabled: getEnvBool("APP_OPS_API_ENABLED", true),
		OpsAPIBaseURL: getEnv("APP_OPS_API_BASE_URL", "http://127.0.0.1:9000"),
		OpsAPIToken:   getEnv("APP_OPS_API_TOKEN", ""),
		OpsAPITimeout: time.Duration(getEnvInt("APP_OPS_API_TIMEOUT_SEC", 10)) * time.Second,

		OpsDBEnabled:      getEnvBool("APP_OPS_DB_ENABLED", false),
		OpsDBHost:         getEnv("APP_OPS_DB_HOST", "127.0.0.1"),
		OpsDBPort:         getEnvInt("APP_OPS_DB_PORT", 3306),
		OpsDBUser:         getEnv("APP_OPS_DB_USER", "itad"),
		OpsDBPassword:     getEnv("APP_OPS_DB_PASSWORD", ""),
		OpsDBName:         getEnv("APP_OPS_DB_NAME", "itad_ops"),
		OpsDBConnTimeout:  time.Duration(getEnvInt("APP_OPS_DB_CONN_TIMEOUT_SEC", 5)) * time.Second,
		OpsDBQueryTimeout: time.Duration(getEnvInt("APP_OPS_DB_QUERY_TIMEOUT_SEC", 10)) * time.Second,

		VendorMapSQLitePath: getEnv("APP_VENDOR_MAP_SQLITE_PATH", ""),

		DrilldownDefaultPageSize: getEnvInt("APP_DRILLDOWN_DEFAULT_PAGE_SIZE", 25),
		DrilldownMaxPageSize:     getEnvInt("APP_DRILLDOWN_MAX_PAGE_SIZE", 200),
	}
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./itad-ops-dashboard.env",
		"/etc/default/itad-ops-dashboard",
	}

	for _, candidate := range bootstrapCandidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}
		_ = applyEnvDefaultsFromFile(abs)
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/itad-ops-dashboard/config.env")

	for _, candidate := range candidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}

		if err := applyEnvDefaultsFromFile(abs); err == nil {
			return
		}
	}
}

func loadSecretsDefaultsFromFile() {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "app-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, "/etc/itad-ops-dashboard/secrets.env")
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := applyEnvDefaultsFromFile(candidate); err == nil {
			return
		}
	}
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}

	return scanner.Err()
}

// OpsMySQLDSN returns a mysql driver DSN with safe defaults for TCP access.
func (c Config) OpsMySQLDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("timeout", c.OpsDBConnTimeout.String())
	params.Set("readTimeout", c.OpsDBQueryTimeout.String())
	params.Set("writeTimeout", c.OpsDBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.OpsDBUser, c.OpsDBPassword, c.OpsDBHost, c.OpsDBPort, c.OpsDBName, params.Encode())
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}
