package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TelegramConfig struct {
	Token      string `yaml:"token"`
	WebhookURL string `yaml:"webhook_url"`
	ListenAddr string `yaml:"listen_addr"`
}

type EngineConfig struct {
	MaxRows           int     `yaml:"max_rows"`
	CandidateLimit    int     `yaml:"candidate_limit"`
	MinSimilarity     float64 `yaml:"min_similarity"`
	SessionTTLMinutes int     `yaml:"session_ttl_minutes"`
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Engine   EngineConfig   `yaml:"engine"`
}

const (
	defaultMaxRows        = 200000
	defaultCandidateLimit = 40
	defaultSessionTTLMin  = 30
	defaultListenAddr     = ":10000"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default returns the configuration used when no config file is present;
// secrets still come from the environment.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Engine.MaxRows == 0 {
		c.Engine.MaxRows = defaultMaxRows
	}
	if c.Engine.CandidateLimit == 0 {
		c.Engine.CandidateLimit = defaultCandidateLimit
	}
	if c.Engine.SessionTTLMinutes == 0 {
		c.Engine.SessionTTLMinutes = defaultSessionTTLMin
	}
	if c.Telegram.ListenAddr == "" {
		c.Telegram.ListenAddr = defaultListenAddr
	}
}

// applyEnv lets deployment environments override file values, the way the
// hosting platform injects TOKEN and the public URL.
func (c *Config) applyEnv() {
	if v := os.Getenv("TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.Telegram.WebhookURL = v
	}
	if v := os.Getenv("RENDER_EXTERNAL_URL"); v != "" && c.Telegram.WebhookURL == "" {
		c.Telegram.WebhookURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Telegram.ListenAddr = ":" + v
	}
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Engine.SessionTTLMinutes) * time.Minute
}
