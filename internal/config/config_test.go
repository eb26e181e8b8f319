package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"VETERM_DATA_DIR",
	"VETERM_STORE",
	"VETERM_CONTACTS_PASSWORD",
	"VETERM_WALLET_PASSWORD",
	"VETERM_LOCK_TIMEOUT",
	"VETERM_NETWORK",
	"VETERM_WATCH",
	"VETERM_AUDIT_DIR",
	"VETERM_DEBUG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, config.StoreBackend)
	assert.Equal(t, "mainnet", config.Network)
	assert.True(t, config.WatchStore)
	assert.Equal(t, AppDir, filepath.Base(config.DataDir))
	assert.False(t, config.Debug)
	assert.Equal(t, 5*time.Minute, config.LockTimeout)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := writeConfig(t, `
data_dir = "`+dir+`"
store_backend = "sqlite"
network = "testnet"
watch_store = false
lock_timeout = "90s"
audit_dir = "`+filepath.Join(dir, "audit")+`"
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, config.DataDir)
	assert.Equal(t, BackendSQLite, config.StoreBackend)
	assert.Equal(t, filepath.Join(dir, "contacts.db"), config.ContactsPath())
	assert.Equal(t, "testnet", config.Network)
	assert.Equal(t, 90*time.Second, config.LockTimeout)
	assert.Equal(t, filepath.Join(dir, "audit"), config.AuditDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, `
network = "testnet"
contacts_password = "from-file"
`)

	t.Setenv("VETERM_DATA_DIR", dir)
	t.Setenv("VETERM_NETWORK", "mainnet")
	t.Setenv("VETERM_CONTACTS_PASSWORD", "from-env")
	t.Setenv("VETERM_WATCH", "false")
	t.Setenv("VETERM_DEBUG", "1")
	t.Setenv("VETERM_LOCK_TIMEOUT", "10m")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mainnet", config.Network)
	assert.Equal(t, "from-env", config.ContactsPassword)
	assert.False(t, config.WatchStore)
	assert.True(t, config.Debug)
	assert.Equal(t, 10*time.Minute, config.LockTimeout)
	assert.Equal(t, filepath.Join(dir, "contacts.json"), config.ContactsPath())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `node_url = "http://localhost:8669"`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `network = `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:        "valid json",
			config:      Config{DataDir: "/tmp/x", StoreBackend: BackendJSON, Network: "mainnet", WatchStore: true, LockTimeout: time.Minute},
			expectError: false,
		},
		{
			name:        "valid sqlite",
			config:      Config{DataDir: "/tmp/x", StoreBackend: BackendSQLite, Network: "testnet", LockTimeout: time.Minute},
			expectError: false,
		},
		{
			name:        "empty data dir",
			config:      Config{StoreBackend: BackendJSON, Network: "mainnet"},
			expectError: true,
		},
		{
			name:        "unknown backend",
			config:      Config{DataDir: "/tmp/x", StoreBackend: "redis", Network: "mainnet"},
			expectError: true,
		},
		{
			name:        "invalid network",
			config:      Config{DataDir: "/tmp/x", StoreBackend: BackendJSON, Network: "devnet"},
			expectError: true,
		},
		{
			name:        "zero lock timeout",
			config:      Config{DataDir: "/tmp/x", StoreBackend: BackendJSON, Network: "mainnet"},
			expectError: true,
		},
		{
			name:        "watch with sqlite",
			config:      Config{DataDir: "/tmp/x", StoreBackend: BackendSQLite, Network: "mainnet", WatchStore: true},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	assert.Equal(t, filepath.Join(home, "contacts"), expandHome("~/contacts"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
