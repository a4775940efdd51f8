package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds server configuration loaded from environment/config file
type Config struct {
	Port          string `mapstructure:"port"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	RedisURI      string `mapstructure:"redis_uri"`
	ATSWebhookURL string `mapstructure:"ats_webhook_url"`
	LogJSON       bool   `mapstructure:"log_json"`
	Debug         bool   `mapstructure:"debug"`
}

// Load reads configuration from environment variables (and an optional
// voicescreen.yaml in the working directory), with sane defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "voicescreen")
	v.SetDefault("redis_uri", "localhost:6379")
	v.SetDefault("ats_webhook_url", "http://localhost:8080/mock-ats/webhook")
	v.SetDefault("log_json", false)
	v.SetDefault("debug", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("voicescreen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Tolerate redis:// prefixed addresses
	cfg.RedisURI = strings.TrimPrefix(cfg.RedisURI, "redis://")

	return &cfg, nil
}
