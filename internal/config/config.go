package config

import (
	"os"
	"strings"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	// Currency is the default checkout currency when the request omits one.
	Currency string
	// RedisAddr switches the checkout claim lock to Redis when set.
	RedisAddr string
	// KafkaBrokers enables OrderCreated publication when non-empty.
	KafkaBrokers []string
	OrderTopic   string
}

func Load() Config {
	return Config{
		Addr:         getenv("STOREFRONT_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		Currency:     getenv("CHECKOUT_CURRENCY", "THB"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		OrderTopic:   getenv("ORDER_TOPIC", "order.created"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
