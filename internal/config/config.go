package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultBackendURI     = "http://localhost:5000"
	DefaultChannelPath    = "/socket.io/"
	DefaultRequestTimeout = 15 * time.Second
	DefaultLogLevel       = "info"

	// EnvPrefix namespaces environment overrides (WPP_BACKEND_URI, ...).
	EnvPrefix = "WPP"
)

var validate = validator.New()

// Config is the file at ~/.wpp-client/config.toml.
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles,omitempty"`
}

// Profile holds the settings of one backend connection.
type Profile struct {
	BackendURI     string        `toml:"backend_uri,omitempty" validate:"required,url"`
	ChannelPath    string        `toml:"channel_path,omitempty" validate:"required,startswith=/"`
	RequestTimeout time.Duration `toml:"request_timeout,omitempty" validate:"gt=0"`
	LogLevel       string        `toml:"log_level,omitempty" validate:"oneof=debug info warn error"`
}

// env mirrors Profile for environment overrides. With the WPP prefix a key
// such as WPP_BACKEND_URI falls back to BACKEND_URI when unset.
type env struct {
	BackendURI     string        `envconfig:"BACKEND_URI"`
	ChannelPath    string        `envconfig:"CHANNEL_PATH"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
}

// Defaults returns the built-in profile settings.
func Defaults() Profile {
	return Profile{
		BackendURI:     DefaultBackendURI,
		ChannelPath:    DefaultChannelPath,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads config from the given path. A missing file is an error.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty config.
func LoadOrEmpty(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Starter returns the config written by "wppctl config init".
func Starter(profile string) *Config {
	return &Config{
		DefaultProfile: profile,
		Profiles:       map[string]Profile{profile: Defaults()},
	}
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Resolve merges defaults, the named profile from cfg, and the
// environment, in that order, and validates the result. cfg may be nil.
func Resolve(cfg *Config, name string) (Profile, error) {
	p := Defaults()
	if cfg != nil {
		if fp, ok := cfg.Profiles[name]; ok {
			p = merge(p, fp)
		}
	}

	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return Profile{}, fmt.Errorf("config: environment: %w", err)
	}
	p = merge(p, Profile(e))

	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("config: profile %q: %w", name, err)
	}
	return p, nil
}

// Validate checks the field rules declared on Profile.
func (p Profile) Validate() error {
	return validate.Struct(p)
}

// merge overlays the non-zero fields of over onto base.
func merge(base, over Profile) Profile {
	if over.BackendURI != "" {
		base.BackendURI = over.BackendURI
	}
	if over.ChannelPath != "" {
		base.ChannelPath = over.ChannelPath
	}
	if over.RequestTimeout != 0 {
		base.RequestTimeout = over.RequestTimeout
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	return base
}
