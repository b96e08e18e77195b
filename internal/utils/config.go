package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort  string
	CORSOrigin  string
	StoreDriver string
	Mongo       MongoConfig
	Logging     LoggingConfig
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

// Store driver selection. The memory driver keeps everything in process and is
// meant for local development and tests.
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

func LoadConfig() (*Config, error) {
	logging := LoggingConfig{
		Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
		Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
		EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
		ServiceName:  envOrDefault("SERVICE_NAME", "mini-chat-server"),
	}

	cfg := &Config{
		ServerPort:  envOrDefault("PORT", "3000"),
		CORSOrigin:  envOrDefault("CORS_ORIGIN", "http://localhost:4200"),
		StoreDriver: strings.ToLower(envOrDefault("STORE_DRIVER", StoreDriverMongo)),
		Mongo: MongoConfig{
			URI:            envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database:       envOrDefault("MONGO_DATABASE", "minichat"),
			ConnectTimeout: parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Logging: logging,
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}
