package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Bot      BotConfig      `mapstructure:"bot"`
	Words    WordsConfig    `mapstructure:"words"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	// PublicURL is the externally reachable base URL; the webhook is
	// registered under it.
	PublicURL      string `mapstructure:"public_url"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	// Webhook traffic allowed per user within the throttle window.
	ThrottleWindowSec int `mapstructure:"throttle_window_sec"`
	ThrottleLimit     int `mapstructure:"throttle_limit"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	// WebhookSecret is the unguessable path component of the webhook URL.
	WebhookSecret string `mapstructure:"webhook_secret"`
	// APISecretToken is checked against X-Telegram-Bot-Api-Secret-Token.
	APISecretToken string `mapstructure:"api_secret_token"`
	// WebAppURL is the public URL of the drawing mini app.
	WebAppURL string `mapstructure:"web_app_url"`
	APIBase   string `mapstructure:"api_base"`
}

type WordsConfig struct {
	DefaultLocale string            `mapstructure:"default_locale"`
	DefaultWord   string            `mapstructure:"default_word"`
	Files         map[string]string `mapstructure:"files"` // locale -> path
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.throttle_window_sec", 10)
	viper.SetDefault("server.throttle_limit", 7)
	viper.SetDefault("bot.api_base", "https://api.telegram.org")
	viper.SetDefault("words.default_locale", "en")
	viper.SetDefault("words.default_word", "word")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
