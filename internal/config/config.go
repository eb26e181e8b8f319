package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"rhystmorgan/veContacts/internal/storage"
	"rhystmorgan/veContacts/internal/wallet"
)

const (
	AppDir     = ".veterm"
	ConfigFile = "config.toml"
	LogFile    = "veterm.log"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir      string `toml:"data_dir"`
	StoreBackend string `toml:"store_backend"`

	// Seals contacts.json when set. Ignored by the sqlite backend.
	ContactsPassword string `toml:"contacts_password"`
	WalletPassword   string `toml:"wallet_password"`

	// Locks the wallet again after this long without a key press.
	LockTimeout time.Duration `toml:"lock_timeout"`

	Network    string `toml:"network"`
	WatchStore bool   `toml:"watch_store"`
	AuditDir   string `toml:"audit_dir"`
	Debug      bool   `toml:"debug"`
}

func GetDefaultConfig() *Config {
	dataDir := AppDir
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, AppDir)
	}

	return &Config{
		DataDir:      dataDir,
		StoreBackend: BackendJSON,
		LockTimeout:  5 * time.Minute,
		Network:      "mainnet",
		WatchStore:   true,
	}
}

// DefaultPath returns ~/.veterm/config.toml.
func DefaultPath() string {
	return filepath.Join(GetDefaultConfig().DataDir, ConfigFile)
}

// Load applies, in order: defaults, the TOML file at path (if it exists), then
// VETERM_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	config := GetDefaultConfig()

	if path != "" {
		md, err := toml.DecodeFile(path, config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("unknown keys in config %s: %v", path, undecoded)
			}
		}
	}

	config.applyEnv()
	config.DataDir = expandHome(config.DataDir)
	config.AuditDir = expandHome(config.AuditDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnvOrDefault("VETERM_DATA_DIR", c.DataDir)
	c.StoreBackend = getEnvOrDefault("VETERM_STORE", c.StoreBackend)
	c.ContactsPassword = getEnvOrDefault("VETERM_CONTACTS_PASSWORD", c.ContactsPassword)
	c.WalletPassword = getEnvOrDefault("VETERM_WALLET_PASSWORD", c.WalletPassword)
	c.LockTimeout = parseDurationOrDefault("VETERM_LOCK_TIMEOUT", c.LockTimeout)
	c.Network = getEnvOrDefault("VETERM_NETWORK", c.Network)
	c.WatchStore = parseBoolOrDefault("VETERM_WATCH", c.WatchStore)
	c.AuditDir = getEnvOrDefault("VETERM_AUDIT_DIR", c.AuditDir)
	c.Debug = c.Debug || IsDebugEnabled()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data directory must be set")
	}

	switch c.StoreBackend {
	case BackendJSON, BackendSQLite:
		// Valid backends
	default:
		return fmt.Errorf("invalid store backend: %s (must be '%s' or '%s')", c.StoreBackend, BackendJSON, BackendSQLite)
	}

	switch c.Network {
	case "mainnet", "testnet":
		// Valid networks
	default:
		return fmt.Errorf("invalid network: %s (must be 'mainnet' or 'testnet')", c.Network)
	}

	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive, got: %v", c.LockTimeout)
	}

	if c.WatchStore && c.StoreBackend != BackendJSON {
		return fmt.Errorf("watch_store is only supported by the %s backend", BackendJSON)
	}

	return nil
}

// ContactsPath is the contacts file or database for the configured backend.
func (c *Config) ContactsPath() string {
	if c.StoreBackend == BackendSQLite {
		return filepath.Join(c.DataDir, storage.DatabaseFile)
	}
	return filepath.Join(c.DataDir, storage.ContactsFile)
}

func (c *Config) KeyringPath() string {
	return filepath.Join(c.DataDir, wallet.KeyringFile)
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, LogFile)
}

func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func IsDebugEnabled() bool {
	return os.Getenv("VETERM_DEBUG") == "true" || os.Getenv("VETERM_DEBUG") == "1"
}
