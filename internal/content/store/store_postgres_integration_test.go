//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"proofwall/internal/content/store"
	"proofwall/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) TestVerifiedFlagAndTimestampStayConsistent() {
	ctx := context.Background()
	r := s.newRecord()

	_, err := s.postgres.DB.ExecContext(ctx, `UPDATE contents SET verified = true WHERE id = $1`, r.ID.String())
	s.Error(err, "check constraint must reject verified without verified_at")
}
