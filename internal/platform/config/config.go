package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "proofwall/pkg/platform/strings"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration and the settings of every collaborator.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       slog.Level
	StoreBackend   string
	TrustedProxies []netip.Prefix

	// RequestTimeout bounds non-upload requests; ShutdownTimeout bounds graceful drain.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Prover     ProverConfig
	Pricing    PricingConfig
	Identity   IdentityConfig
	Settlement SettlementConfig
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

// KafkaConfig enables grant fan-out when Brokers is set.
type KafkaConfig struct {
	Brokers     string
	GrantsTopic string
	Acks        string
}

type ProverConfig struct {
	URL          string
	Timeout      time.Duration
	PollInterval time.Duration
}

// PricingConfig holds the three tier prices and the settlement network name.
type PricingConfig struct {
	Journalist string
	Premium    string
	Public     string
	Network    string
}

type IdentityConfig struct {
	AllowedIssuers []string
	JWKSURL        string
	MessagePrefix  string
	CacheSize      int
	CacheTTL       time.Duration
}

// DefaultPayAsset is USDC on Celo Alfajores.
const DefaultPayAsset = "0x2F25deB3848C207fc8E0c34035B3Ba7fC157602B"

// SettlementConfig enables the x402 facilitator adapter when FacilitatorURL is set.
type SettlementConfig struct {
	ReceiverWallet string
	FacilitatorURL string
	// Asset is the token contract payments are made in; AssetDecimals converts
	// dollar prices to its atomic units.
	Asset         string
	AssetDecimals int
	MaxTimeout    time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed values are reported instead of silently defaulted.
func FromEnv() (Server, error) {
	var errs []string
	durationEnv := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, raw))
			return def
		}
		return d
	}
	intEnv := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid positive integer %q", key, raw))
			return def
		}
		return n
	}

	cfg := Server{
		Addr:            envOr("PROOFWALL_ADDR", ":3001"),
		Environment:     envOr("PROOFWALL_ENV", "dev"),
		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", BackendMemory)),
		RequestTimeout:  durationEnv("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intEnv("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intEnv("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationEnv("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     os.Getenv("KAFKA_BROKERS"),
			GrantsTopic: envOr("KAFKA_GRANTS_TOPIC", "proofwall.access-grants"),
			Acks:        envOr("KAFKA_ACKS", "all"),
		},
		Prover: ProverConfig{
			URL:          os.Getenv("PROVER_URL"),
			Timeout:      durationEnv("PROOF_TIMEOUT", 60*time.Second),
			PollInterval: durationEnv("PROOF_POLL_INTERVAL", 2*time.Second),
		},
		Pricing: PricingConfig{
			Journalist: envOr("PRICE_JOURNALIST", "$1.00"),
			Premium:    envOr("PRICE_PREMIUM", "$2.50"),
			Public:     envOr("PRICE_PUBLIC", "$5.00"),
			Network:    envOr("PAY_NETWORK", "celo-alfajores"),
		},
		Identity: IdentityConfig{
			AllowedIssuers: pstrings.SplitList(os.Getenv("ALLOWED_ISSUERS")),
			JWKSURL:        os.Getenv("CREDENTIAL_JWKS_URL"),
			MessagePrefix:  envOr("SIGNING_MESSAGE_PREFIX", "prove_self:"),
			CacheSize:      intEnv("CREDENTIAL_CACHE_SIZE", 1024),
			CacheTTL:       durationEnv("CREDENTIAL_CACHE_TTL", 5*time.Minute),
		},
		Settlement: SettlementConfig{
			ReceiverWallet: os.Getenv("RECEIVER_WALLET"),
			FacilitatorURL: os.Getenv("FACILITATOR_URL"),
			Asset:          envOr("PAY_ASSET", DefaultPayAsset),
			AssetDecimals:  intEnv("PAY_ASSET_DECIMALS", 6),
			MaxTimeout:     durationEnv("PAY_MAX_TIMEOUT", 60*time.Second),
		},
	}

	level, err := parseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.LogLevel = level

	for _, raw := range pstrings.SplitList(os.Getenv("TRUSTED_PROXIES")) {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES: invalid prefix %q", raw))
			continue
		}
		cfg.TrustedProxies = append(cfg.TrustedProxies, prefix)
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.Database.URL == "" {
			errs = append(errs, "STORE_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendRedis:
		if cfg.Redis.URL == "" {
			errs = append(errs, "STORE_BACKEND=redis requires REDIS_URL")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend))
	}

	if cfg.Settlement.FacilitatorURL != "" && cfg.Settlement.ReceiverWallet == "" {
		errs = append(errs, "FACILITATOR_URL requires RECEIVER_WALLET")
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// IsDev reports whether the server runs in a local development environment.
func (s Server) IsDev() bool {
	return s.Environment == "dev" || s.Environment == "local"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: invalid level %q", raw)
	}
	return level, nil
}
