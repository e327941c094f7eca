// Package pricing maps resolved access roles onto configured price tiers.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"proofwall/internal/platform/config"
	"proofwall/pkg/domain"
)

// TierName identifies a price bracket.
type TierName string

const (
	TierJournalist TierName = "journalist"
	TierPremium    TierName = "premium"
	TierPublic     TierName = "public"
)

// Tier is an immutable price bracket. PaySegment is the path element of the
// tier's pay route, e.g. "full" in /pay/full/{id}.
type Tier struct {
	Name       TierName
	Price      string
	Network    string
	PaySegment string
}

// PayEndpoint returns the pay route a challenged caller must use for this tier.
func (t Tier) PayEndpoint(id domain.ContentID) string {
	return "/pay/" + t.PaySegment + "/" + id.String()
}

// Resolver selects tiers. It holds no mutable state.
type Resolver struct {
	journalist Tier
	premium    Tier
	public     Tier
}

// New validates the configured prices and builds a Resolver.
func New(cfg config.PricingConfig) (*Resolver, error) {
	for name, price := range map[TierName]string{
		TierJournalist: cfg.Journalist,
		TierPremium:    cfg.Premium,
		TierPublic:     cfg.Public,
	} {
		if err := validatePrice(price); err != nil {
			return nil, fmt.Errorf("%s tier: %w", name, err)
		}
	}
	if strings.TrimSpace(cfg.Network) == "" {
		return nil, fmt.Errorf("payment network is required")
	}

	return &Resolver{
		journalist: Tier{Name: TierJournalist, Price: cfg.Journalist, Network: cfg.Network, PaySegment: "journalist"},
		premium:    Tier{Name: TierPremium, Price: cfg.Premium, Network: cfg.Network, PaySegment: "discount"},
		public:     Tier{Name: TierPublic, Price: cfg.Public, Network: cfg.Network, PaySegment: "full"},
	}, nil
}

// Resolve maps a role to its tier. Unknown or absent roles get the public tier.
func (r *Resolver) Resolve(role domain.Role) Tier {
	switch role {
	case domain.RoleJournalist:
		return r.journalist
	case domain.RolePremium:
		return r.premium
	default:
		return r.public
	}
}

// Public returns the least-trusted tier.
func (r *Resolver) Public() Tier {
	return r.public
}

// ForSegment finds the tier bound to a pay route segment.
func (r *Resolver) ForSegment(segment string) (Tier, bool) {
	for _, t := range r.All() {
		if t.PaySegment == segment {
			return t, true
		}
	}
	return Tier{}, false
}

// All returns every tier, cheapest first.
func (r *Resolver) All() []Tier {
	return []Tier{r.journalist, r.premium, r.public}
}

// validatePrice accepts dollar amounts such as "$1.00" or "$5".
func validatePrice(price string) error {
	amount, ok := strings.CutPrefix(price, "$")
	if !ok {
		return fmt.Errorf("price %q must start with $", price)
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("price %q must be a positive amount", price)
	}
	return nil
}
