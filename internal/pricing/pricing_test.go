package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"proofwall/internal/platform/config"
	"proofwall/pkg/domain"
)

type PricingSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestPricingSuite(t *testing.T) {
	suite.Run(t, new(PricingSuite))
}

func (s *PricingSuite) SetupTest() {
	r, err := New(config.PricingConfig{
		Journalist: "$1.00",
		Premium:    "$2.50",
		Public:     "$5.00",
		Network:    "celo-alfajores",
	})
	s.Require().NoError(err)
	s.resolver = r
}

func (s *PricingSuite) TestResolve() {
	s.Run("journalist", func() {
		tier := s.resolver.Resolve(domain.RoleJournalist)
		s.Equal(TierJournalist, tier.Name)
		s.Equal("$1.00", tier.Price)
		s.Equal("celo-alfajores", tier.Network)
	})

	s.Run("premium", func() {
		tier := s.resolver.Resolve(domain.RolePremium)
		s.Equal(TierPremium, tier.Name)
		s.Equal("$2.50", tier.Price)
	})

	s.Run("absent and unknown roles price as public", func() {
		s.Equal(s.resolver.Public(), s.resolver.Resolve(domain.RoleNone))
		s.Equal(s.resolver.Public(), s.resolver.Resolve(domain.Role("admin")))
		s.Equal("$5.00", s.resolver.Public().Price)
	})
}

func (s *PricingSuite) TestPayEndpoint() {
	id := domain.ContentID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	s.Equal("/pay/journalist/11111111-1111-1111-1111-111111111111", s.resolver.Resolve(domain.RoleJournalist).PayEndpoint(id))
	s.Equal("/pay/discount/11111111-1111-1111-1111-111111111111", s.resolver.Resolve(domain.RolePremium).PayEndpoint(id))
	s.Equal("/pay/full/11111111-1111-1111-1111-111111111111", s.resolver.Public().PayEndpoint(id))
}

func (s *PricingSuite) TestForSegment() {
	tier, ok := s.resolver.ForSegment("discount")
	s.True(ok)
	s.Equal(TierPremium, tier.Name)

	_, ok = s.resolver.ForSegment("free")
	s.False(ok)
	s.Len(s.resolver.All(), 3)
}

func (s *PricingSuite) TestNewRejectsBadConfig() {
	_, err := New(config.PricingConfig{Journalist: "1.00", Premium: "$2.50", Public: "$5.00", Network: "n"})
	s.ErrorContains(err, "must start with $")

	_, err = New(config.PricingConfig{Journalist: "$1.00", Premium: "$0", Public: "$5.00", Network: "n"})
	s.ErrorContains(err, "positive")

	_, err = New(config.PricingConfig{Journalist: "$1.00", Premium: "$2.50", Public: "$5.00"})
	s.ErrorContains(err, "network")
}
