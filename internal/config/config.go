// Package config handles the slk global configuration and the persisted
// access token.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/slk/config.yml.
type GlobalConfig struct {
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "slk"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// CredentialsFile holds the persisted access token.
	CredentialsFile = "credentials"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// ConfigError marks a configuration problem (missing credentials, unusable
// config file) so the CLI can exit with its dedicated code.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// ConfigDir returns the slk configuration directory. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/slk.
func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir), nil
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, GlobalConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// LoadClientCredentials resolves the OAuth client id and secret. Env vars
// SLK_CLIENT_ID/SLK_CLIENT_SECRET take precedence over the config file.
func LoadClientCredentials() (clientID, clientSecret string, err error) {
	clientID = os.Getenv("SLK_CLIENT_ID")
	clientSecret = os.Getenv("SLK_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		return clientID, clientSecret, nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", "", &ConfigError{Err: err}
	}
	if clientID == "" {
		clientID = cfg.ClientID
	}
	if clientSecret == "" {
		clientSecret = cfg.ClientSecret
	}
	if clientID == "" || clientSecret == "" {
		return "", "", configErrorf("client_id and client_secret are required; set SLK_CLIENT_ID/SLK_CLIENT_SECRET or add them to %s", globalConfigPathHint())
	}
	return clientID, clientSecret, nil
}

// globalConfigPathHint returns the path the global config is read from, for
// error messages. Falls back to the conventional location when the config
// directory cannot be resolved.
func globalConfigPathHint() string {
	dir, err := ConfigDir()
	if err != nil {
		return "~/.config/slk/" + GlobalConfigFile
	}
	return filepath.Join(dir, GlobalConfigFile)
}
