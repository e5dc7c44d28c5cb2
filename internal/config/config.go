package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	RedisAddress          string
	RedisPassword         string
	RedisDB               int
	KafkaBrokers          []string
	KafkaTopic            string
	LicenseServiceAddress string
	LicenseRetryAttempts  int
	JWTSecret             string
	AuthStrategy          string
	TokenTTL              time.Duration
	OrderTTL              time.Duration
	ExpirySweepInterval   time.Duration
	ExpiryBatchSize       int
	WorkerPoolSize        int
	ShutdownTimeout       time.Duration
	LogLevel              string
	AuthRateLimit         float64
	AuthRateBurst         int
	Bank                  BankConfig
	AdminEmail            string
	AdminPassword         string
}

// BankConfig describes the beneficiary account quoted to customers.
type BankConfig struct {
	Name          string
	Code          string
	AccountNumber string
	AccountName   string
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultAuthStrategy        = "jwt"
	defaultKafkaTopic          = "veo3.orders"
	defaultLicenseRetries      = 3
	defaultTokenTTL            = 24 * time.Hour
	defaultOrderTTL            = 24 * time.Hour
	defaultExpirySweepInterval = time.Minute
	defaultExpiryBatchSize     = 50
	defaultWorkerPoolSize      = 2
	defaultShutdownTimeout     = 10 * time.Second
	defaultLogLevel            = "info"
	defaultAuthRateLimit       = 5
	defaultAuthRateBurst       = 10
	defaultBankName            = "MB Bank"
	defaultBankCode            = "MB"
	defaultBankAccountNumber   = "0987654321"
	defaultBankAccountName     = "CONG TY VEO3 AI"
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		RedisAddress:          getString(lookup, "REDIS_ADDRESS", ""),
		RedisPassword:         getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:               getInt(lookup, "REDIS_DB", 0),
		KafkaTopic:            getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		LicenseServiceAddress: getString(lookup, "LICENSE_SERVICE_ADDRESS", ""),
		LicenseRetryAttempts:  getInt(lookup, "LICENSE_RETRY_ATTEMPTS", defaultLicenseRetries),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		AuthStrategy:          getString(lookup, "AUTH_STRATEGY", defaultAuthStrategy),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		OrderTTL:              getDuration(lookup, "ORDER_TTL", defaultOrderTTL),
		ExpirySweepInterval:   getDuration(lookup, "EXPIRY_SWEEP_INTERVAL", defaultExpirySweepInterval),
		ExpiryBatchSize:       getInt(lookup, "EXPIRY_BATCH_SIZE", defaultExpiryBatchSize),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
		AuthRateLimit:         getFloat(lookup, "AUTH_RATE_LIMIT", defaultAuthRateLimit),
		AuthRateBurst:         getInt(lookup, "AUTH_RATE_BURST", defaultAuthRateBurst),
		Bank: BankConfig{
			Name:          getString(lookup, "BANK_NAME", defaultBankName),
			Code:          getString(lookup, "BANK_CODE", defaultBankCode),
			AccountNumber: getString(lookup, "BANK_ACCOUNT_NUMBER", defaultBankAccountNumber),
			AccountName:   getString(lookup, "BANK_ACCOUNT_NAME", defaultBankAccountName),
		},
		AdminEmail:    getString(lookup, "ADMIN_EMAIL", ""),
		AdminPassword: getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("veo3store", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		kafkaBrokers       = getString(lookup, "KAFKA_BROKERS", "")
		orderTTLStr        = cfg.OrderTTL.String()
		sweepIntervalStr   = cfg.ExpirySweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for the session registry")
	fs.StringVar(&kafkaBrokers, "kafka", kafkaBrokers, "Comma separated Kafka brokers for order events")
	fs.StringVar(&cfg.LicenseServiceAddress, "l", cfg.LicenseServiceAddress, "License issuance service base URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.AuthStrategy, "auth-strategy", cfg.AuthStrategy, "Token strategy: jwt or hmac")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent expiry workers")
	fs.StringVar(&orderTTLStr, "order-ttl", orderTTLStr, "Payment window of a new order")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.ExpiryBatchSize, "sweep-batch", cfg.ExpiryBatchSize, "Maximum orders per expiry sweep")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OrderTTL, err = time.ParseDuration(orderTTLStr); err != nil {
		return nil, fmt.Errorf("invalid order ttl: %w", err)
	}

	if cfg.ExpirySweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.KafkaBrokers = splitList(kafkaBrokers)
	cfg.AuthStrategy = strings.ToLower(strings.TrimSpace(cfg.AuthStrategy))

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ExpiryBatchSize <= 0 {
		cfg.ExpiryBatchSize = defaultExpiryBatchSize
	}

	if cfg.LicenseRetryAttempts <= 0 {
		cfg.LicenseRetryAttempts = defaultLicenseRetries
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.OrderTTL <= 0 {
		cfg.OrderTTL = defaultOrderTTL
	}

	if cfg.ExpirySweepInterval <= 0 {
		cfg.ExpirySweepInterval = defaultExpirySweepInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = defaultAuthRateLimit
	}

	if cfg.AuthRateBurst <= 0 {
		cfg.AuthRateBurst = defaultAuthRateBurst
	}

	if cfg.AuthStrategy != "jwt" && cfg.AuthStrategy != "hmac" {
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.AuthStrategy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("redis address must be provided")
	}

	if cfg.LicenseServiceAddress == "" {
		return nil, fmt.Errorf("license service address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
