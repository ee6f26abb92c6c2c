package storage

import (
	"alistlauncher/models"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// ConfigName is the file name of the launcher record in the home directory
	ConfigName = "alist_launcher_config.json"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "ALIST_LAUNCHER_CONFIG"
)

// ErrStalePath means the stored executable no longer exists
var ErrStalePath = errors.New("configured executable does not exist")

// Manager handles persistence of the launcher config
type Manager struct {
	configPath string
	log        zerolog.Logger
}

// NewManager creates a storage manager for the per-user config file
func NewManager(log zerolog.Logger) *Manager {
	return NewManagerAt(DefaultPath(), log)
}

// NewManagerAt creates a storage manager for an explicit file
func NewManagerAt(path string, log zerolog.Logger) *Manager {
	return &Manager{
		configPath: path,
		log:        log.With().Str("component", "storage").Logger(),
	}
}

// DefaultPath returns the config location, honouring EnvConfigPath
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ConfigName)
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the config. A missing file yields nil, nil. A record whose
// executable has disappeared is deleted and also yields nil, nil.
func (m *Manager) Load() (*models.Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Debug().Str("path", m.configPath).Msg("config file does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", m.configPath, err)
	}
	cfg.Path = cleanPath(cfg.Path)

	if err := checkExecutable(cfg.Path); err != nil {
		m.log.Warn().Err(err).Str("executable", cfg.Path).Msg("dropping stale config")
		if rmErr := m.Remove(); rmErr != nil {
			m.log.Error().Err(rmErr).Msg("failed to delete stale config")
		}
		return nil, nil
	}

	m.log.Debug().Str("executable", cfg.Path).Int("port", cfg.Port).Msg("config loaded")
	return &cfg, nil
}

// Save writes {path, port}, storing the absolute executable path.
// The port is validated before anything touches the disk.
func (m *Manager) Save(path string, port int) error {
	_, err := m.SaveConfig(path, port)
	return err
}

// SaveConfig is Save returning the record that was written
func (m *Manager) SaveConfig(path string, port int) (*models.Config, error) {
	if err := models.ValidatePort(port); err != nil {
		return nil, err
	}

	path = cleanPath(path)
	if path == "" || path == "." {
		return nil, errors.New("executable path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	cfg := &models.Config{Path: absPath, Port: port}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(m.configPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	m.log.Info().Str("executable", cfg.Path).Int("port", cfg.Port).Msg("config saved")
	return cfg, nil
}

// Remove deletes the config file. A missing file is not an error.
func (m *Manager) Remove() error {
	err := os.Remove(m.configPath)
	if err == nil {
		m.log.Info().Str("path", m.configPath).Msg("config removed")
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("delete config: %w", err)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrStalePath, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrStalePath, path)
	}
	return nil
}

// writeFileAtomic writes through a temp file in the same directory so a
// crash never leaves a truncated config behind
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// cleanPath cleans and normalizes a file path
func cleanPath(path string) string {
	// Remove surrounding quotes
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if path == "" {
		return ""
	}

	return filepath.Clean(path)
}
