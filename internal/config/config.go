package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File represents the top-level YAML configuration file.
type File struct {
	Version  int      `yaml:"version"`
	Settings Settings `yaml:"settings"`
}

// Settings contains server settings.
type Settings struct {
	ListenAddr  string `yaml:"listen_addr,omitempty"`
	RootDir     string `yaml:"root_dir,omitempty"`
	SecretsFile string `yaml:"secrets_file,omitempty"`
}

// Config is the runtime configuration for envgate.
type Config struct {
	Path        string
	ListenAddr  string
	RootDir     string
	SecretsFile string
}

// Load reads a YAML config file and produces a runtime Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", f.Version)
	}
	return fromFile(&f), nil
}

func fromFile(f *File) *Config {
	cfg := DefaultConfig()
	if f.Settings.ListenAddr != "" {
		cfg.ListenAddr = f.Settings.ListenAddr
	}
	if f.Settings.RootDir != "" {
		cfg.RootDir = expandHome(f.Settings.RootDir)
	}
	if f.Settings.SecretsFile != "" {
		cfg.SecretsFile = expandHome(f.Settings.SecretsFile)
	}
	return cfg
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  DefaultListenAddr,
		RootDir:     DefaultRootDir,
		SecretsFile: DefaultSecretsFile,
	}
}

// Override replaces non-empty fields from the command line.
func (c *Config) Override(listenAddr, rootDir, secretsFile string) {
	if listenAddr != "" {
		c.ListenAddr = listenAddr
	}
	if rootDir != "" {
		c.RootDir = expandHome(rootDir)
	}
	if secretsFile != "" {
		c.SecretsFile = expandHome(secretsFile)
	}
}

// MarshalYAML serializes the effective config for display/export.
func (c *Config) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(&File{
		Version: 1,
		Settings: Settings{
			ListenAddr:  c.ListenAddr,
			RootDir:     c.RootDir,
			SecretsFile: c.SecretsFile,
		},
	})
}
