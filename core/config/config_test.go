package config

import (
	"strings"
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Services: []ServiceConfig{
			{Name: "sonarr", Type: "sonarr", Commands: []string{"series"}, APIHost: "http://sonarr:8989", APIKey: "k"},
			{Name: "bazarr", Type: "bazarr", APIHost: "http://bazarr:6767", APIKey: "k"},
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Session.Backend != SessionBackendMemory {
		t.Fatalf("session backend = %q, expected memory", cfg.Session.Backend)
	}
	if cfg.Session.TTL != DefaultSessionTTL {
		t.Fatalf("session ttl = %v, expected %v", cfg.Session.TTL, DefaultSessionTTL)
	}
}

func TestNormalizeRejectsDuplicateCommand(t *testing.T) {
	cfg := baseConfig()
	cfg.Services[1].Commands = []string{"series"}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "declared by both") {
		t.Fatalf("expected duplicate command error, got %v", err)
	}
}

func TestNormalizeRejectsUnknownAddon(t *testing.T) {
	cfg := baseConfig()
	cfg.Services[0].Addons = []string{"opensubtitles"}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown addon") {
		t.Fatalf("expected unknown addon error, got %v", err)
	}
}

func TestNormalizeRedisBackendRequiresAddr(t *testing.T) {
	cfg := baseConfig()
	cfg.Session.Backend = "redis"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for redis backend without addr")
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Session.TTL = 30 * time.Minute
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("ttl overwritten: %v", cfg.Session.TTL)
	}
}

func TestNormalizeStripsCommandSlash(t *testing.T) {
	cfg := baseConfig()
	cfg.Services[0].Commands = []string{"/Series"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Services[0].Commands[0] != "series" {
		t.Fatalf("command = %q, expected series", cfg.Services[0].Commands[0])
	}
}
