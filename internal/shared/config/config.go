package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const DefaultClassifierURL = "https://test-hub.kys.gay/api/moderate_words/analyze"

type Config struct {
	TelegramBotToken string `koanf:"telegram_bot_token"`
	TelegramAPIURL   string `koanf:"telegram_api_url"`
	APIURLBase       string `koanf:"api_url_base"`
	APIKey           string `koanf:"api_key"`
	SettingsPath     string `koanf:"settings_path"`
	HTTPPort         string `koanf:"http_port"`
	LogFile          string `koanf:"log_file"`
	LogLevel         string `koanf:"log_level"`
	CooldownCapacity int    `koanf:"cooldown_capacity"`
	AuditBufferSize  int    `koanf:"audit_buffer_size"`
	BotWorkers       int    `koanf:"bot_workers"`
	AppEnv           AppEnv `koanf:"app_env"`
}

// Load reads config.{yaml,yml,json,toml} from the working directory when
// present and then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(".")
}

func LoadFrom(dir string) (*Config, error) {
	k := koanf.New(".")

	configFiles := lo.Map([]string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}, func(name string, _ int) string {
		return filepath.Join(dir, name)
	})

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// TELEGRAM_BOT_TOKEN -> telegram_bot_token, API_KEY -> api_key
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	setDefault(k, "telegram_api_url", "https://api.telegram.org")
	setDefault(k, "api_url_base", DefaultClassifierURL)
	setDefault(k, "settings_path", "bot_config.json")
	setDefault(k, "http_port", "8080")
	setDefault(k, "log_file", "moderation_bot.log")
	setDefault(k, "log_level", "info")
	setDefault(k, "cooldown_capacity", 100000)
	setDefault(k, "audit_buffer_size", 200)
	setDefault(k, "bot_workers", 8)
	setDefault(k, "app_env", "production")

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if env, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = env
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	return &cfg, nil
}

func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
