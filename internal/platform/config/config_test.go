package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal(":3001", cfg.Addr)
	s.Equal(BackendMemory, cfg.StoreBackend)
	s.Equal(slog.LevelInfo, cfg.LogLevel)
	s.Equal("$1.00", cfg.Pricing.Journalist)
	s.Equal("$2.50", cfg.Pricing.Premium)
	s.Equal("$5.00", cfg.Pricing.Public)
	s.Equal("celo-alfajores", cfg.Pricing.Network)
	s.Equal(60*time.Second, cfg.Prover.Timeout)
	s.Equal(2*time.Second, cfg.Prover.PollInterval)
	s.Equal(30*time.Second, cfg.RequestTimeout)
	s.Equal(10*time.Second, cfg.ShutdownTimeout)
	s.Equal("prove_self:", cfg.Identity.MessagePrefix)
	s.Equal(1024, cfg.Identity.CacheSize)
	s.Equal("proofwall.access-grants", cfg.Kafka.GrantsTopic)
	s.Empty(cfg.Identity.AllowedIssuers)
	s.Equal(DefaultPayAsset, cfg.Settlement.Asset)
	s.Equal(6, cfg.Settlement.AssetDecimals)
	s.Equal(60*time.Second, cfg.Settlement.MaxTimeout)
	s.True(cfg.IsDev())
}

func (s *ConfigSuite) TestOverrides() {
	s.T().Setenv("PROOFWALL_ADDR", ":9000")
	s.T().Setenv("PROOFWALL_ENV", "production")
	s.T().Setenv("LOG_LEVEL", "debug")
	s.T().Setenv("PROOF_TIMEOUT", "5s")
	s.T().Setenv("ALLOWED_ISSUERS", " did:ethr:0xabc , did:web:issuer.example ,")
	s.T().Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	s.T().Setenv("STORE_BACKEND", "Postgres")
	s.T().Setenv("DATABASE_URL", "postgres://localhost/proofwall")

	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal(":9000", cfg.Addr)
	s.False(cfg.IsDev())
	s.Equal(slog.LevelDebug, cfg.LogLevel)
	s.Equal(5*time.Second, cfg.Prover.Timeout)
	s.Equal([]string{"did:ethr:0xabc", "did:web:issuer.example"}, cfg.Identity.AllowedIssuers)
	s.Len(cfg.TrustedProxies, 1)
	s.Equal(BackendPostgres, cfg.StoreBackend)
}

func (s *ConfigSuite) TestInvalidValues() {
	s.Run("bad duration", func() {
		s.T().Setenv("PROOF_TIMEOUT", "soon")
		_, err := FromEnv()
		s.ErrorContains(err, "PROOF_TIMEOUT")
	})

	s.Run("postgres without url", func() {
		s.T().Setenv("STORE_BACKEND", "postgres")
		s.T().Setenv("DATABASE_URL", "")
		_, err := FromEnv()
		s.ErrorContains(err, "DATABASE_URL")
	})

	s.Run("unknown backend", func() {
		s.T().Setenv("STORE_BACKEND", "etcd")
		_, err := FromEnv()
		s.ErrorContains(err, "unknown backend")
	})

	s.Run("facilitator without wallet", func() {
		s.T().Setenv("STORE_BACKEND", "memory")
		s.T().Setenv("FACILITATOR_URL", "http://facilitator")
		_, err := FromEnv()
		s.ErrorContains(err, "RECEIVER_WALLET")
	})
}
