package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// DatabaseConfig holds Postgres connection settings for the permission store.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RedisConfig holds connection settings for the Redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// SessionConfig selects the session store backend and dialogue lifetime.
type SessionConfig struct {
	// Backend is either "memory" or "redis".
	Backend string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	// TTL bounds how long an abandoned dialogue stays alive.
	TTL time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
}

// AuthConfig carries per-level registration passwords.
// An empty password disables registration at that level.
type AuthConfig struct {
	UserPassword  string `yaml:"user_password" envconfig:"AUTH_USER_PASSWORD"`
	ModPassword   string `yaml:"mod_password" envconfig:"AUTH_MOD_PASSWORD"`
	AdminPassword string `yaml:"admin_password" envconfig:"AUTH_ADMIN_PASSWORD"`
}

// ServiceConfig declares one media automation backend the bot fronts.
type ServiceConfig struct {
	// Name is the session-key namespace, unique across services.
	Name string `yaml:"name"`
	// Type is one of "sonarr", "radarr", "bazarr".
	Type string `yaml:"type"`
	// Commands are the chat commands (without slash) answered by this service.
	Commands []string `yaml:"commands"`
	APIHost  string   `yaml:"api_host"`
	APIKey   string   `yaml:"api_key"`
	// Addons names other configured services that contribute item actions.
	Addons []string `yaml:"addons"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// SessionBackendMemory keeps dialogues in process memory.
	SessionBackendMemory = "memory"
	// SessionBackendRedis keeps dialogues in Redis with TTL.
	SessionBackendRedis = "redis"
)

// DefaultSessionTTL bounds abandoned dialogues when session.ttl is unset.
const DefaultSessionTTL = 4 * time.Hour

// RateLimitConfig holds settings for per-user rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Services  []ServiceConfig `yaml:"services"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	sb := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if sb == "" {
		sb = SessionBackendMemory
	}
	switch sb {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", cfg.Session.Backend)
	}
	cfg.Session.Backend = sb
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}

	if len(cfg.Services) == 0 {
		return fmt.Errorf("at least one service must be configured")
	}
	seenNames := make(map[string]struct{}, len(cfg.Services))
	seenCommands := make(map[string]string)
	for i := range cfg.Services {
		svc := &cfg.Services[i]
		svc.Name = strings.ToLower(strings.TrimSpace(svc.Name))
		svc.Type = strings.ToLower(strings.TrimSpace(svc.Type))
		if svc.Name == "" {
			return fmt.Errorf("services[%d].name is required", i)
		}
		if _, dup := seenNames[svc.Name]; dup {
			return fmt.Errorf("duplicate service name %q", svc.Name)
		}
		seenNames[svc.Name] = struct{}{}
		switch svc.Type {
		case "sonarr", "radarr", "bazarr":
		default:
			return fmt.Errorf("services[%d].type %q; allowed: sonarr, radarr, bazarr", i, svc.Type)
		}
		if strings.TrimSpace(svc.APIHost) == "" {
			return fmt.Errorf("services[%d].api_host is required", i)
		}
		if strings.TrimSpace(svc.APIKey) == "" {
			return fmt.Errorf("services[%d].api_key is required", i)
		}
		for j, cmd := range svc.Commands {
			cmd = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cmd), "/"))
			if cmd == "" {
				return fmt.Errorf("services[%d].commands[%d] is empty", i, j)
			}
			if owner, dup := seenCommands[cmd]; dup {
				return fmt.Errorf("command %q declared by both %q and %q", cmd, owner, svc.Name)
			}
			seenCommands[cmd] = svc.Name
			svc.Commands[j] = cmd
		}
	}
	for i, svc := range cfg.Services {
		for _, addon := range svc.Addons {
			if _, ok := seenNames[strings.ToLower(strings.TrimSpace(addon))]; !ok {
				return fmt.Errorf("services[%d] references unknown addon %q", i, addon)
			}
		}
	}

	return nil
}

// Service returns the configuration block for a named service.
func (c *Config) Service(name string) (ServiceConfig, bool) {
	for _, svc := range c.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceConfig{}, false
}
