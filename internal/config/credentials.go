package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadToken reads the persisted access token. A missing credentials file is
// not an error; it returns an empty token.
func LoadToken() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, CredentialsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken persists the access token with owner-only permissions and
// returns the file path.
func SaveToken(token string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, CredentialsFile)
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	// WriteFile does not change the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return "", fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return path, nil
}

// ResolveToken returns the access token from the SLACK_TOKEN environment
// variable, falling back to the persisted credentials file.
func ResolveToken() (string, error) {
	if token := os.Getenv("SLACK_TOKEN"); token != "" {
		return token, nil
	}
	token, err := LoadToken()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", configErrorf("no Slack token found. Set SLACK_TOKEN or run: slk login")
	}
	return token, nil
}
