package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"proofwall/internal/ledger/models"
	"proofwall/internal/ledger/store"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
	"proofwall/pkg/testutil"
)

// contractSuite is run against every ledger backend.
type contractSuite struct {
	suite.Suite
	store store.Store
}

func (s *contractSuite) grant(contentID domain.ContentID, payer string) *models.Grant {
	g, err := models.NewGrant(models.GrantParams{
		ContentID: contentID,
		Payer:     payer,
		Tier:      "public",
		Price:     "$5.00",
		Receipt:   "receipt-" + payer,
		Client:    "curl/8.4",
	}, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return g
}

func (s *contractSuite) TestEmptyLedger() {
	grants, err := s.store.ListFor(context.Background(), domain.NewContentID())
	s.Require().NoError(err)
	s.NotNil(grants)
	s.Empty(grants)
}

func (s *contractSuite) TestAppendPreservesOrder() {
	ctx := context.Background()
	contentID := domain.NewContentID()
	other := domain.NewContentID()

	for i := range 5 {
		s.Require().NoError(s.store.Append(ctx, s.grant(contentID, fmt.Sprintf("payer-%d", i))))
	}
	s.Require().NoError(s.store.Append(ctx, s.grant(other, "someone-else")))

	grants, err := s.store.ListFor(ctx, contentID)
	s.Require().NoError(err)
	s.Require().Len(grants, 5)
	for i, g := range grants {
		s.Equal(fmt.Sprintf("payer-%d", i), g.Payer)
		s.Equal(contentID, g.ContentID)
		s.Equal("x402", g.Method)
		s.Equal("$5.00", g.Price)
		s.Equal("curl/8.4", g.Client)
	}
}

func (s *contractSuite) TestRoundTripsFields() {
	ctx := context.Background()
	g := s.grant(domain.NewContentID(), "0xPayer")
	s.Require().NoError(s.store.Append(ctx, g))

	grants, err := s.store.ListFor(ctx, g.ContentID)
	s.Require().NoError(err)
	s.Require().Len(grants, 1)
	s.Equal(g.ID, grants[0].ID)
	s.Equal(g.Receipt, grants[0].Receipt)
	s.True(g.Timestamp.Equal(grants[0].Timestamp))
}

func (s *contractSuite) TestDuplicateGrantID() {
	ctx := context.Background()
	g := s.grant(domain.NewContentID(), "payer")
	s.Require().NoError(s.store.Append(ctx, g))

	s.ErrorIs(s.store.Append(ctx, g), sentinel.ErrConflict)

	grants, err := s.store.ListFor(ctx, g.ContentID)
	s.Require().NoError(err)
	s.Len(grants, 1)
}

func (s *contractSuite) TestConcurrentAppendsAreNotLost() {
	contentID := domain.NewContentID()

	result := testutil.RunConcurrent(20, func(i int) error {
		return s.store.Append(context.Background(), s.grant(contentID, fmt.Sprintf("payer-%d", i)))
	})

	s.Equal(int32(20), result.Successes)
	grants, err := s.store.ListFor(context.Background(), contentID)
	s.Require().NoError(err)
	s.Len(grants, 20)
}
