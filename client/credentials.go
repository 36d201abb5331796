package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/ayoisaiah/studyblocks/internal/osutil"
)

// Credentials is the login state saved between commands.
type Credentials struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Username  string `json:"username"`
}

// SaveCredentials writes c to path, readable only by the current user.
func SaveCredentials(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return err
	}

	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o600)
}

// LoadCredentials reads the credentials saved at path. It returns
// ErrUnauthorized when none are saved.
func LoadCredentials(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrUnauthorized
	}

	if err != nil {
		return nil, err
	}

	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Token == "" {
		return nil, ErrUnauthorized
	}

	return &c, nil
}

// DeleteCredentials removes the credentials saved at path.
func DeleteCredentials(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// FromCredentials returns a client authenticated with c. An empty server URL
// in c falls back to serverURL.
func FromCredentials(c *Credentials, serverURL string, opts ...Option) *Client {
	if c.ServerURL != "" {
		serverURL = c.ServerURL
	}

	return New(serverURL, append([]Option{WithToken(c.Token)}, opts...)...)
}
