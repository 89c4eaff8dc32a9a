package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskmaster.db"
)

type Config struct {
	DBPath       string `toml:"db_path"`
	ExportDir    string `toml:"export_dir"`
	HistoryLimit int    `toml:"history_limit"` // undoable transitions kept, 0 = unbounded
}

// ResolveConfigPath returns the config file location under the user config
// directory, falling back to the working directory when it is unknown.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "taskmaster", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing a default file first when
// none exists.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath(),
		ExportDir:    ".",
		HistoryLimit: 100,
	}
}

func defaultDBPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(dir, ".local", "share", "taskmaster", DefaultDBName)
}
