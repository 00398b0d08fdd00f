package config

import "testing"

func baseConfig() *Config {
	return &Config{
		Telegram:   TelegramConfig{Token: "123:abc"},
		Generation: GenerationConfig{APIKey: "sk-test"},
		Media:      MediaConfig{ProjectID: "proj"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Generation.Model != "gpt-3.5-turbo" {
		t.Errorf("generation model = %q", cfg.Generation.Model)
	}
	if cfg.Media.LanguageCode != "es" {
		t.Errorf("media language = %q", cfg.Media.LanguageCode)
	}
}

func TestNormalizeRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }},
		{"missing generation key", func(c *Config) { c.Generation.APIKey = "" }},
		{"missing media project", func(c *Config) { c.Media.ProjectID = "" }},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }},
		{"bad exclude update", func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"inline"} }},
	}
	for _, tc := range cases {
		cfg := baseConfig()
		tc.mutate(cfg)
		if err := Normalize(cfg); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := baseConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}
