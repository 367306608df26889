// Package config loads the getmytext configuration file and applies
// environment overrides on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvHome     = "GETMYTEXT_HOME"
	EnvServer   = "GETMYTEXT_SERVER"
	EnvLogLevel = "GETMYTEXT_LOG_LEVEL"

	fileName = "config.yaml"
)

const defaultConfigYAML = `# getmytext configuration

server:
  # Base URL of the companion server the editor saves to.
  url: http://127.0.0.1:19998

autosave:
  # How often the editor compares its content with the last saved copy.
  interval: 1s
  # How long the "Saved" indicator stays up after the latest save.
  indicator_decay: 1s
  request_timeout: 10s

log:
  # debug | info | warn | error
  level: info

serve:
  addr: 0.0.0.0:19998
  # Relative paths are resolved against the config home.
  db: content.db
  main_text: main.txt
  # Files served under /meta/, e.g. meta/bg.png as the page background.
  meta_dir: meta
  # text | markdown
  render: text
`

type ServerConfig struct {
	URL string `yaml:"url"`
}

type AutosaveConfig struct {
	Interval       time.Duration `yaml:"interval"`
	IndicatorDecay time.Duration `yaml:"indicator_decay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ServeConfig struct {
	Addr     string `yaml:"addr"`
	DB       string `yaml:"db"`
	MainText string `yaml:"main_text"`
	MetaDir  string `yaml:"meta_dir"`
	Render   string `yaml:"render"`
}

// Config models <home>/config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Log      LogConfig      `yaml:"log"`
	Serve    ServeConfig    `yaml:"serve"`

	// Home is the directory the config was loaded from. Not serialized.
	Home string `yaml:"-"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{URL: "http://127.0.0.1:19998"},
		Autosave: AutosaveConfig{
			Interval:       time.Second,
			IndicatorDecay: time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Serve: ServeConfig{
			Addr:     "0.0.0.0:19998",
			DB:       "content.db",
			MainText: "main.txt",
			MetaDir:  "meta",
			Render:   "text",
		},
	}
}

// HomeDir returns $GETMYTEXT_HOME, or ~/.getmytext.
func HomeDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvHome)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".getmytext"), nil
}

// Path returns the config file location. An explicit path wins.
func Path(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName), nil
}

// Load reads the config file at path (or the default location), applies
// environment overrides and validates the result. A missing file yields the
// defaults.
func Load(explicit string) (Config, error) {
	cfg := Default()
	path, err := Path(explicit)
	if err != nil {
		return Config{}, err
	}
	cfg.Home = filepath.Dir(path)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		c.Server.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.url must be an absolute http(s) URL, got %q", c.Server.URL)
	}
	if c.Autosave.Interval <= 0 {
		return errors.New("autosave.interval must be positive")
	}
	if c.Autosave.IndicatorDecay <= 0 {
		return errors.New("autosave.indicator_decay must be positive")
	}
	if c.Autosave.RequestTimeout <= 0 {
		return errors.New("autosave.request_timeout must be positive")
	}
	switch strings.ToLower(c.Serve.Render) {
	case "text", "markdown":
	default:
		return fmt.Errorf("serve.render must be text or markdown, got %q", c.Serve.Render)
	}
	return nil
}

// Resolve makes p absolute relative to the config home.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Home == "" {
		return p
	}
	return filepath.Join(c.Home, p)
}

func (c Config) LogsDir() string {
	return filepath.Join(c.Home, "logs")
}

// Init writes the commented default config to path unless a file is already
// there. It reports whether a file was written.
func Init(explicit string) (string, bool, error) {
	path, err := Path(explicit)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Marshal renders the effective config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
