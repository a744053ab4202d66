package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CredentialStore keeps the bearer token on disk between runs
type CredentialStore struct {
	path string
}

type credentialFile struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// NewCredentialStore stores the credential at path
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the credential file location
func (cs *CredentialStore) Path() string {
	return cs.path
}

// Load returns the saved token, or "" when none is saved.
func (cs *CredentialStore) Load() (string, error) {
	data, err := os.ReadFile(cs.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	var f credentialFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return f.Token, nil
}

// Save writes token with owner-only permissions.
func (cs *CredentialStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(cs.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(credentialFile{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return os.WriteFile(cs.path, data, 0600)
}

// Clear removes the saved token.
func (cs *CredentialStore) Clear() error {
	err := os.Remove(cs.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
