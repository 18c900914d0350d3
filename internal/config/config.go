package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr          string `mapstructure:"ADDR"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`
	BaseURL       string `mapstructure:"BASE_URL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	SendgridKey   string `mapstructure:"SENDGRID_API_KEY"`
	FromEmail     string `mapstructure:"FROM_EMAIL"`
	FromName      string `mapstructure:"FROM_NAME"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	TemplatesDir  string `mapstructure:"TEMPLATES_DIR"`
}

func Load() *Config {
	// Local dev convenience; absent .env is fine.
	_ = godotenv.Load()

	viper.SetDefault("ADDR", ":8080")
	viper.SetDefault("DATABASE_PATH", "encore.db")
	viper.SetDefault("BASE_URL", "http://127.0.0.1:8080")
	viper.SetDefault("FROM_EMAIL", "registrations@littlenotes.org")
	viper.SetDefault("FROM_NAME", "Little Notes Music")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TEMPLATES_DIR", "templates")

	viper.BindEnv("ADDR")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("BASE_URL")
	viper.BindEnv("ADMIN_PASSWORD")
	viper.BindEnv("SENDGRID_API_KEY")
	viper.BindEnv("FROM_EMAIL")
	viper.BindEnv("FROM_NAME")
	viper.BindEnv("LOG_LEVEL")
	viper.BindEnv("TEMPLATES_DIR")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("unable to decode config: %v", err)
	}

	return &cfg
}
