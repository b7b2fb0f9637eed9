package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	ModeRemote = "remote"
	ModeLocal  = "local"

	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"

	DefaultAPIURL     = "http://localhost:5000"
	DefaultAddr       = ":5000"
	DefaultCORSOrigin = "http://localhost:3000"
	DefaultDatabase   = "taskmanager"
)

type Config struct {
	Mode   string       `yaml:"mode,omitempty"`
	APIURL string       `yaml:"api_url,omitempty"`
	Debug  bool         `yaml:"debug,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	Store  StoreConfig  `yaml:"store,omitempty"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr,omitempty"`
	CORSOrigin string `yaml:"cors_origin,omitempty"`
}

// StoreConfig selects the persistence backend. DSN is a directory for the
// file driver, a database/sql DSN for sqlite and mysql, and a connection
// URI for mongo.
type StoreConfig struct {
	Driver   string `yaml:"driver,omitempty"`
	DSN      string `yaml:"dsn,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// Load reads dataDir/config.yaml, applies TASKMANAGER_* environment
// overrides and fills defaults. A missing file is not an error.
func Load(dataDir string) (*Config, error) {
	cfg, err := Read(dataDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults(dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read returns the saved configuration without environment overrides or
// defaults, as Save would write it back.
func Read(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from TASKMANAGER_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"TASKMANAGER_MODE", &c.Mode},
		{"TASKMANAGER_API_URL", &c.APIURL},
		{"TASKMANAGER_ADDR", &c.Server.Addr},
		{"TASKMANAGER_CORS_ORIGIN", &c.Server.CORSOrigin},
		{"TASKMANAGER_STORE_DRIVER", &c.Store.Driver},
		{"TASKMANAGER_STORE_DSN", &c.Store.DSN},
		{"TASKMANAGER_STORE_DATABASE", &c.Store.Database},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}
	if v, ok := lookup("TASKMANAGER_DEBUG"); ok && v != "" {
		debug, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("parsing TASKMANAGER_DEBUG: %w", err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) ApplyDefaults(dataDir string) {
	if c.Mode == "" {
		c.Mode = ModeRemote
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = DefaultCORSOrigin
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverFile
	}
	if c.Store.DSN == "" {
		switch c.Store.Driver {
		case DriverFile:
			c.Store.DSN = filepath.Join(dataDir, "tasks")
		case DriverSQLite:
			c.Store.DSN = filepath.Join(dataDir, "tasks.db")
		case DriverMySQL:
			c.Store.DSN = "root:root@tcp(127.0.0.1:3306)/taskmanager?parseTime=true"
		case DriverMongo:
			c.Store.DSN = "mongodb://127.0.0.1:27017"
		}
	}
	if c.Store.Database == "" {
		c.Store.Database = DefaultDatabase
	}
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRemote, ModeLocal:
	default:
		return fmt.Errorf("invalid mode %q: must be remote or local", c.Mode)
	}
	switch c.Store.Driver {
	case DriverFile, DriverSQLite, DriverMySQL, DriverMongo:
	default:
		return fmt.Errorf("invalid store driver %q: must be one of file, sqlite, mysql, mongo", c.Store.Driver)
	}
	return nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, "config.yaml")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
