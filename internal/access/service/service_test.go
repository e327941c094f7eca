package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"proofwall/internal/access/models"
	"proofwall/internal/access/service/mocks"
	contentmodels "proofwall/internal/content/models"
	"proofwall/internal/identity"
	ledgermodels "proofwall/internal/ledger/models"
	"proofwall/internal/platform/config"
	"proofwall/internal/pricing"
	"proofwall/internal/settlement"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	registry *mocks.MockRegistry
	verifier *mocks.MockIdentityVerifier
	ledger   *mocks.MockLedger
	tiers    *pricing.Resolver
	service  *Service
	id       domain.ContentID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = mocks.NewMockRegistry(s.ctrl)
	s.verifier = mocks.NewMockIdentityVerifier(s.ctrl)
	s.ledger = mocks.NewMockLedger(s.ctrl)

	tiers, err := pricing.New(config.PricingConfig{
		Journalist: "$1.00",
		Premium:    "$2.50",
		Public:     "$5.00",
		Network:    "celo-alfajores",
	})
	s.Require().NoError(err)
	s.tiers = tiers

	s.service = NewService(s.registry, s.verifier, s.ledger, s.tiers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.id = domain.NewContentID()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) record(verified bool) *contentmodels.Record {
	return &contentmodels.Record{
		ID:          s.id,
		Reference:   "doc-1",
		ContentHash: "0xabc",
		ProofJobID:  "job-1",
		Verified:    verified,
	}
}

func (s *ServiceSuite) expectRecord(verified bool) {
	s.registry.EXPECT().Get(gomock.Any(), s.id).Return(s.record(verified), nil)
}

func assertion() *identity.Assertion {
	return &identity.Assertion{DID: "did:ethr:0xabc", Nonce: "n-1", Signature: "0xsig", CredentialToken: "vc"}
}

func (s *ServiceSuite) TestRequestAccessLookup() {
	s.Run("unknown content", func() {
		s.registry.EXPECT().Get(gomock.Any(), s.id).Return(nil, dErrors.New(dErrors.CodeNotFound, "content not found"))

		_, err := s.service.RequestAccess(context.Background(), s.id, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unverified content ignores identity", func() {
		s.expectRecord(false)

		_, err := s.service.RequestAccess(context.Background(), s.id, assertion())
		s.True(dErrors.HasCode(err, dErrors.CodeContentUnverified))
	})
}

func (s *ServiceSuite) TestRequestAccessPublic() {
	publicPayment := models.Payment{
		Price:       "$5.00",
		Network:     "celo-alfajores",
		PayEndpoint: "/pay/full/" + s.id.String(),
	}

	s.Run("no identity", func() {
		s.expectRecord(true)

		c, err := s.service.RequestAccess(context.Background(), s.id, nil)
		s.Require().NoError(err)
		s.Equal(models.ErrorPaymentRequired, c.Error)
		s.Equal(publicPayment, c.Payment)
		s.Equal(pricing.TierPublic, c.Tier)
		s.Empty(c.Role)
		s.Empty(c.Detail)
	})

	s.Run("rejected identity carries the reason", func() {
		s.expectRecord(true)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(identity.Resolved{Reason: identity.ReasonSigMismatch})

		c, err := s.service.RequestAccess(context.Background(), s.id, assertion())
		s.Require().NoError(err)
		s.Equal(models.ErrorUnverifiedID, c.Error)
		s.Equal("sig_mismatch", c.Detail)
		s.Equal(publicPayment, c.Payment)
	})

	s.Run("untrusted issuer is priced as public", func() {
		s.expectRecord(true)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(identity.Resolved{OK: true, Role: domain.RoleJournalist, Issuer: "did:ethr:0xrogue", IssuerAllowed: false})

		c, err := s.service.RequestAccess(context.Background(), s.id, assertion())
		s.Require().NoError(err)
		s.Equal(models.DetailIssuerNotAllowed, c.Detail)
		s.Empty(c.Role)
		s.Equal(publicPayment, c.Payment)
	})

	s.Run("valid credential without a role", func() {
		s.expectRecord(true)
		s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(identity.Resolved{OK: true, Role: domain.RoleNone, IssuerAllowed: true})

		c, err := s.service.RequestAccess(context.Background(), s.id, assertion())
		s.Require().NoError(err)
		s.Equal(models.ErrorPaymentRequired, c.Error)
		s.Equal(publicPayment, c.Payment)
		s.Empty(c.Role)
	})
}

func (s *ServiceSuite) TestRequestAccessDiscounted() {
	cases := []struct {
		role     domain.Role
		price    string
		endpoint string
	}{
		{domain.RoleJournalist, "$1.00", "/pay/journalist/"},
		{domain.RolePremium, "$2.50", "/pay/discount/"},
	}
	for _, tc := range cases {
		s.Run(string(tc.role), func() {
			s.expectRecord(true)
			s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
				Return(identity.Resolved{OK: true, Role: tc.role, IssuerAllowed: true})

			c, err := s.service.RequestAccess(context.Background(), s.id, assertion())
			s.Require().NoError(err)
			s.Equal(string(tc.role), c.Role)
			s.Equal(tc.price, c.Payment.Price)
			s.Equal(tc.endpoint+s.id.String(), c.Payment.PayEndpoint)
			s.Contains(c.Message, "discounted price")
		})
	}
}

func (s *ServiceSuite) TestCompleteDelivery() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	tier := s.tiers.Resolve(domain.RoleJournalist)

	s.Run("appends a grant and returns the reference", func() {
		s.expectRecord(true)
		s.ledger.EXPECT().Append(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g *ledgermodels.Grant) error {
				s.Equal(s.id, g.ContentID)
				s.Equal("0xabc", g.Payer)
				s.Equal("0xtx", g.Receipt)
				s.Equal("x402", g.Method)
				s.Equal("journalist", g.Tier)
				s.Equal("$1.00", g.Price)
				s.Equal(now, g.Timestamp)
				return nil
			})

		d, err := s.service.CompleteDelivery(ctx, s.id, tier, settlement.Claim{Payer: "0xabc", Receipt: "0xtx", Method: "x402"})
		s.Require().NoError(err)
		s.Equal(&models.Delivery{
			Reference:  "doc-1",
			Provenance: models.Provenance{ContentHash: "0xabc"},
			Access:     "paid",
			Price:      "$1.00",
		}, d)
	})

	s.Run("empty claim records an unknown payer", func() {
		s.expectRecord(true)
		s.ledger.EXPECT().Append(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g *ledgermodels.Grant) error {
				s.Equal(ledgermodels.UnknownPayer, g.Payer)
				s.Equal(ledgermodels.MethodX402, g.Method)
				return nil
			})

		_, err := s.service.CompleteDelivery(ctx, s.id, tier, settlement.Claim{})
		s.Require().NoError(err)
	})

	s.Run("unverified content is not delivered", func() {
		s.expectRecord(false)

		_, err := s.service.CompleteDelivery(ctx, s.id, tier, settlement.Claim{Payer: "0xabc"})
		s.True(dErrors.HasCode(err, dErrors.CodeContentUnverified))
	})

	s.Run("ledger failure surfaces", func() {
		s.expectRecord(true)
		s.ledger.EXPECT().Append(gomock.Any(), gomock.Any()).
			Return(dErrors.Wrap(errors.New("redis down"), dErrors.CodeInternal, "failed to append grant"))

		_, err := s.service.CompleteDelivery(ctx, s.id, tier, settlement.Claim{Payer: "0xabc"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestCheckPayable() {
	s.expectRecord(true)
	s.NoError(s.service.CheckPayable(context.Background(), s.id))

	s.expectRecord(false)
	s.True(dErrors.HasCode(s.service.CheckPayable(context.Background(), s.id), dErrors.CodeContentUnverified))
}

func (s *ServiceSuite) TestAudit() {
	s.Run("returns record and grants", func() {
		s.expectRecord(true)
		grants := []ledgermodels.Grant{{ContentID: s.id, Payer: "0xabc"}}
		s.ledger.EXPECT().ListFor(gomock.Any(), s.id).Return(grants, nil)

		record, got, err := s.service.Audit(context.Background(), s.id)
		s.Require().NoError(err)
		s.Equal("doc-1", record.Reference)
		s.Equal(grants, got)
	})

	s.Run("unverified content is still auditable", func() {
		s.expectRecord(false)
		s.ledger.EXPECT().ListFor(gomock.Any(), s.id).Return([]ledgermodels.Grant{}, nil)

		_, got, err := s.service.Audit(context.Background(), s.id)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("unknown content", func() {
		s.registry.EXPECT().Get(gomock.Any(), s.id).Return(nil, dErrors.New(dErrors.CodeNotFound, "content not found"))

		_, _, err := s.service.Audit(context.Background(), s.id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
