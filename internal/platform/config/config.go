package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	EncryptionKey  string
	AdminAPIToken  string
	FrontendURL    string
	TrustedProxies []string
	SeedAnchors    bool

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	KYC       KYCConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// KYCConfig holds the verification pipeline timings.
type KYCConfig struct {
	StartDelay   time.Duration
	ProcessDelay time.Duration
	PollInterval time.Duration
	StuckAfter   time.Duration
	SweepEvery   time.Duration
}

// RateLimitConfig holds per-minute request limits per client IP. Zero
// disables the limit for that class.
type RateLimitConfig struct {
	SubmitPerMinute int
	VerifyPerMinute int
	ReadPerMinute   int
}

const (
	defaultAddr        = ":3001"
	defaultFrontendURL = "http://localhost:3000"
	defaultAuditTopic  = "spectra.audit"
)

// FromEnv builds the config from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	dur := func(key string, def time.Duration) time.Duration {
		d, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	num := func(key string, def int) int {
		n, err := intEnv(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := Server{
		Addr:           stringEnv("SPECTRA_ADDR", defaultAddr),
		Environment:    stringEnv("ENVIRONMENT", "development"),
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		EncryptionKey:  os.Getenv("ENCRYPTION_KEY"),
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		FrontendURL:    stringEnv("FRONTEND_URL", defaultFrontendURL),
		TrustedProxies: listEnv("TRUSTED_PROXIES"),
		SeedAnchors:    stringEnv("SEED_DEMO_ANCHORS", "true") == "true",
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    num("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    num("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: dur("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: stringEnv("AUDIT_TOPIC", defaultAuditTopic),
		},
		KYC: KYCConfig{
			StartDelay:   dur("KYC_VERIFICATION_START_DELAY", 2*time.Second),
			ProcessDelay: dur("KYC_VERIFICATION_PROCESS_DELAY", 3*time.Second),
			PollInterval: dur("KYC_WORKER_POLL_INTERVAL", 250*time.Millisecond),
			StuckAfter:   dur("KYC_STUCK_AFTER", 2*time.Minute),
			SweepEvery:   dur("KYC_SWEEP_INTERVAL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			SubmitPerMinute: num("RATE_LIMIT_SUBMIT_PER_MINUTE", 10),
			VerifyPerMinute: num("RATE_LIMIT_VERIFY_PER_MINUTE", 60),
			ReadPerMinute:   num("RATE_LIMIT_READ_PER_MINUTE", 300),
		},
	}
	if cfg.KYC.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("KYC_WORKER_POLL_INTERVAL must be positive"))
	}
	if minStuck := cfg.KYC.StartDelay + cfg.KYC.ProcessDelay + cfg.KYC.PollInterval; cfg.KYC.StuckAfter <= minStuck {
		errs = append(errs, fmt.Errorf("KYC_STUCK_AFTER (%s) must exceed start delay + process delay + poll interval (%s)", cfg.KYC.StuckAfter, minStuck))
	}
	if cfg.IsProduction() {
		if cfg.EncryptionKey == "" {
			errs = append(errs, fmt.Errorf("ENCRYPTION_KEY is required in production"))
		}
		if cfg.AdminAPIToken == "" {
			errs = append(errs, fmt.Errorf("ADMIN_API_TOKEN is required in production"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is "production".
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// EnsureAdminToken fills an empty admin token from generate outside
// production and reports whether it did.
func (s *Server) EnsureAdminToken(generate func() (string, error)) (bool, error) {
	if s.AdminAPIToken != "" {
		return false, nil
	}
	if s.IsProduction() {
		return false, fmt.Errorf("ADMIN_API_TOKEN is required in production")
	}
	token, err := generate()
	if err != nil {
		return false, fmt.Errorf("generate admin token: %w", err)
	}
	s.AdminAPIToken = token
	return true, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

func listEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
