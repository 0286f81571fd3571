package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		SecretKey    string
		RollbarToken string

		AdminSessionTTL   time.Duration
		StudentSessionTTL time.Duration

		Server   ServerConfig
		Storage  StorageConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host string
		Port int
	}

	// StorageConfig selects the key-value backend holding the persisted slots.
	StorageConfig struct {
		Backend string // file (default) | inmem | redis | postgres
		DataDir string // file backend only
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       int
		DisableTLS bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the app Config from defaults, an optional
// config/.env.<env> file and `<ENV>_`-prefixed environment variables.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Shule")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "2c%$nh=lai)t3l!7dmbe(w+vxq#_8z5&ygk^0fu*osr@9jp4c6")
	conf.SetDefault("adminSessionTTL", 24*time.Hour)
	conf.SetDefault("studentSessionTTL", 8*time.Hour)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("storageBackend", "file")
	conf.SetDefault("storageDataDir", filepath.Join(Getwd(), "data"))
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "shule")
	conf.SetDefault("databasePort", 5432)
	conf.SetDefault("redisAddr", "localhost:6379")

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:           conf.GetString("appName"),
		Env:               env,
		Debug:             conf.GetBool("debug"),
		TestMode:          testMode,
		Build:             conf.GetString("build"),
		SecretKey:         conf.GetString("secretKey"),
		RollbarToken:      conf.GetString("rollbarToken"),
		AdminSessionTTL:   conf.GetDuration("adminSessionTTL"),
		StudentSessionTTL: conf.GetDuration("studentSessionTTL"),
		Server: ServerConfig{
			Host: conf.GetString("serverHost"),
			Port: conf.GetInt("serverPort"),
		},
		Storage: StorageConfig{
			Backend: conf.GetString("storageBackend"),
			DataDir: conf.GetString("storageDataDir"),
		},
		Database: DatabaseConfig{
			Engine:     conf.GetString("databaseEngine"),
			Name:       conf.GetString("databaseName"),
			User:       conf.GetString("databaseUser"),
			Password:   conf.GetString("databasePassword"),
			Host:       conf.GetString("databaseHost"),
			Port:       conf.GetInt("databasePort"),
			DisableTLS: conf.GetBool("databaseDisableTLS"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("redisAddr"),
			Password: conf.GetString("redisPassword"),
			DB:       conf.GetInt("redisDB"),
		},
	}
}
