package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/pulseboard/internal/validator"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources       Sources       `yaml:"sources"`
	HTTP          HTTP          `yaml:"http"`
	Cache         Cache         `yaml:"cache"`
	Results       Results       `yaml:"results"`
	Summarization Summarization `yaml:"summarization"`
	Server        Server        `yaml:"server"`
	Logging       Logging       `yaml:"logging"`
}

type Sources struct {
	Reddit     Toggle    `yaml:"reddit"`
	HackerNews Toggle    `yaml:"hackernews"`
	Lobsters   Toggle    `yaml:"lobsters"`
	Microblog  Microblog `yaml:"microblog"`
	News       News      `yaml:"news"`
}

type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

type Microblog struct {
	Enabled bool     `yaml:"enabled"`
	Mirrors []string `yaml:"mirrors" validate:"dive,url"`
}

type News struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	Region   string `yaml:"region"`
}

type HTTP struct {
	Timeout           time.Duration `yaml:"timeout" validate:"min=1s,max=30s"`
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
}

type Cache struct {
	TTL         time.Duration `yaml:"ttl" validate:"min=1m,max=10m"`
	TrendingTTL time.Duration `yaml:"trending_ttl" validate:"min=1m"`
	Coalesce    bool          `yaml:"coalesce"`
	LoadTimeout time.Duration `yaml:"load_timeout" validate:"gte=0s"`
}

type Results struct {
	MaxDiscussions int `yaml:"max_discussions" validate:"gt=0"`
	MaxNews        int `yaml:"max_news" validate:"gt=0"`
}

type Summarization struct {
	Provider     string        `yaml:"provider" validate:"oneof=none ollama openai gemini"`
	Model        string        `yaml:"model"`
	OllamaURL    string        `yaml:"ollama_url"`
	OpenAIModel  string        `yaml:"openai_model"`
	APIKeyEnv    string        `yaml:"api_key_env"`
	GeminiModel  string        `yaml:"gemini_model"`
	GeminiKeyEnv string        `yaml:"gemini_key_env"`
	MaxTokens    int           `yaml:"max_tokens" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Server struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

type Logging struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// ConfigDir returns the XDG config directory for pulseboard.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "pulseboard")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > $XDG_CONFIG_HOME/pulseboard/config.yaml > ./config.yaml.
// An empty path with a nil error means no file exists and defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// parse parses YAML bytes into a Config on top of the embedded defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(DefaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
