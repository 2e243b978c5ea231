package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CLIConfig is the front-end's configuration file. Unlike the daemon, which
// is configured through the environment, the CLI keeps a small YAML file so
// the server address survives between invocations.
type CLIConfig struct {
	// ServerURL is the daemon's base URL.
	ServerURL string `yaml:"server_url"`

	// Timeout bounds each backend request.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultCLIConfig returns an in-memory default configuration.
func DefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		ServerURL: "http://127.0.0.1:8377",
		Timeout:   10 * time.Second,
	}
}

// Normalize fills in missing values with defaults so partially filled
// configs still behave correctly.
func (c *CLIConfig) Normalize() {
	if c.ServerURL == "" {
		c.ServerURL = "http://127.0.0.1:8377"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// DefaultCLIConfigPath returns the per-user config file location.
func DefaultCLIConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blocky", "config.yaml"), nil
}

// LoadCLI loads the CLI configuration from the given YAML path. On first
// run (file absent) a default config is written and returned.
func LoadCLI(path string) (*CLIConfig, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultCLIConfig()
			if err := SaveCLI(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// SaveCLI writes the configuration atomically (temp file + rename) with
// 0600 permissions.
func SaveCLI(path string, cfg *CLIConfig) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".blocky-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
