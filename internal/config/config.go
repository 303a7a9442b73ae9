package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int

	// CommerceAPIURL is the base of the remote commerce REST API,
	// trailing slash included.
	CommerceAPIURL string

	JWTSecret []byte

	StorageBackend string
	DatabaseDSN    string
	RedisURL       string
	RedisPrefix    string

	KafkaBrokers []string
	CartTopic    string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),

		CommerceAPIURL: os.Getenv("COMMERCE_API_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		StorageBackend: EnvDefault("STORAGE_BACKEND", "sql"),
		DatabaseDSN:    EnvDefault("DATABASE_DSN", "storefront.db"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisPrefix:    EnvDefault("REDIS_PREFIX", "storefront:"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		CartTopic:    EnvDefault("CART_TOPIC", "cart_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "product"),

		LogLevel: os.Getenv("LOG_LEVEL"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
