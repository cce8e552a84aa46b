package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	defaultListenAddr     = "0.0.0.0:8080"
	defaultWorkers        = 1
	defaultReadBufferSize = 1024
	defaultRedisTTL       = 5 * time.Minute
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	DatabaseURL    string
	MySQL          *mysql.Config
	ListenAddr     string
	GRPCAddr       string
	RedisAddr      string
	RedisTTL       time.Duration
	Workers        int
	ReadBufferSize int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.Getenv)
}

func FromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getenv("DATABASE_URL"),
		ListenAddr:     getenv("LISTEN_ADDR"),
		GRPCAddr:       getenv("GRPC_ADDR"),
		RedisAddr:      getenv("REDIS_ADDR"),
		RedisTTL:       defaultRedisTTL,
		Workers:        defaultWorkers,
		ReadBufferSize: defaultReadBufferSize,
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	mysqlCfg, err := mysql.ParseDSN(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	cfg.MySQL = mysqlCfg

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if v := getenv("REDIS_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_TTL: %w", err)
		}
		cfg.RedisTTL = ttl
	}

	if cfg.Workers, err = positiveInt(getenv, "WORKERS", defaultWorkers); err != nil {
		return nil, err
	}
	if cfg.ReadBufferSize, err = positiveInt(getenv, "READ_BUFFER_SIZE", defaultReadBufferSize); err != nil {
		return nil, err
	}

	return cfg, nil
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
