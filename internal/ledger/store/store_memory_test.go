package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"proofwall/internal/ledger/store"
	"proofwall/pkg/domain"
)

type InMemoryStoreSuite struct {
	contractSuite
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = store.NewInMemory()
}

func (s *InMemoryStoreSuite) TestListIsACopy() {
	ctx := context.Background()
	g := s.grant(domain.NewContentID(), "payer")
	s.Require().NoError(s.store.Append(ctx, g))

	first, err := s.store.ListFor(ctx, g.ContentID)
	s.Require().NoError(err)
	first[0].Payer = "tampered"

	second, err := s.store.ListFor(ctx, g.ContentID)
	s.Require().NoError(err)
	s.Equal("payer", second[0].Payer)
}
