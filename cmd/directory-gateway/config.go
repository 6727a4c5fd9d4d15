package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EternisAI/user-directory/internal/api/http"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/positions"
	"github.com/EternisAI/user-directory/internal/users"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TOKEN_STORE_MEMORY = "memory"
	TOKEN_STORE_FILE   = "file"
	TOKEN_STORE_REDIS  = "redis"
)

type Config struct {
	Log       LogConfig
	Http      http.Config
	Api       directory.Config
	Users     users.Config
	Positions positions.Config
	Token     TokenConfig
	Redis     RedisConfig
}

type TokenConfig struct {
	Store string        `mapstructure:"store" validate:"oneof=memory file redis"`
	File  string        `mapstructure:"file" validate:"required_if=Store file"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

var config Config

func setDefaults() {
	viper.SetDefault("log.level", LOG_LEVEL_INFO)
	viper.SetDefault("log.format", LOG_FORMAT_TEXT)
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("api.base_url", directory.DefaultBaseURL)
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("users.page_size", users.DefaultPageSize)
	viper.SetDefault("positions.cache_ttl", positions.DefaultTTL)
	viper.SetDefault("token.store", TOKEN_STORE_MEMORY)
	viper.SetDefault("token.file", ".directory/token.yaml")
	viper.SetDefault("token.ttl", 40*time.Minute)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.key", "user-directory:token")
}

func InitConfig() {
	var err error

	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/directory-gateway")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(err)
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(err)
	}

	if err := validator.New().Struct(config); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	initLogger(config.Log)

	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
