package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel string
	// LogFormat is "json" or "text".
	LogFormat string
	SeedFile  string
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Engine    EngineConfig
}

// PostgresConfig selects the durable entity store. An empty URL keeps the
// in-memory store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the cross-process contract locker.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables publishing of lifecycle events.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// EngineConfig tunes the transaction dispatcher.
type EngineConfig struct {
	// TxTimeout bounds one store commit, not lock waiting.
	TxTimeout time.Duration
	// LockLease is the redis lock TTL; it only matters if a holder crashes.
	LockLease time.Duration
	// LockRetry is the polling interval while waiting on a redis lock.
	LockRetry time.Duration
	// BatchConcurrency caps the number of contracts processed in parallel
	// by a batch submission.
	BatchConcurrency int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:      getEnv("COLDCHAIN_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		SeedFile:  os.Getenv("SEED_FILE"),
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:    getEnv("KAFKA_TOPIC", "coldchain.lifecycle"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "coldchain-engine"),
		},
		Engine: EngineConfig{
			TxTimeout:        getEnvDuration("TX_TIMEOUT", 5*time.Second),
			LockLease:        getEnvDuration("LOCK_LEASE", 30*time.Second),
			LockRetry:        getEnvDuration("LOCK_RETRY", 25*time.Millisecond),
			BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 8),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
