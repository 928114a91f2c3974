package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"
)

// Store persists the configuration
type Store interface {
	Load() (*Config, error)
	Save(config *Config) error
}

// FileStore keeps the configuration in .autogit.yml in a repository root
type FileStore struct {
	path string
}

// NewFileStore returns a store for the configuration file of repoRoot
func NewFileStore(repoRoot string) *FileStore {
	return &FileStore{path: filepath.Join(repoRoot, ConfigFileName)}
}

// Path returns the configuration file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the configuration file, returning the default configuration
// when it does not exist
func (s *FileStore) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Save validates and writes the configuration file
func (s *FileStore) Save(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(s.path, data, configFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MemoryStore keeps the configuration in memory as encoded YAML,
// so loaded values never alias saved ones
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty store that loads the default configuration
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return Default(), nil
	}
	return Parse(s.data)
}

func (s *MemoryStore) Save(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}
