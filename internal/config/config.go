package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port int
	}
	Database struct {
		Path string
	}
	Scheduler struct {
		Interval   time.Duration
		JobTimeout time.Duration
		Workers    int
	}
	Email struct {
		SMTPHost string
		SMTPPort int
		From     string
		Password string
	}
	Slack struct {
		Token         string
		Channel       string
		AlertCooldown time.Duration
	}
	Auth struct {
		JWTSecret string
	}
}

// Load reads config.yaml from the working directory, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "data/farmpulse.db")
	viper.SetDefault("scheduler.interval", time.Minute)
	viper.SetDefault("scheduler.jobtimeout", 45*time.Second)
	viper.SetDefault("scheduler.workers", 4)
	viper.SetDefault("slack.alertcooldown", 30*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
