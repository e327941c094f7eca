package store_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/suite"

	"proofwall/internal/content/models"
	"proofwall/internal/content/store"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
	"proofwall/pkg/testutil"
)

// contractSuite is run against every Store backend.
type contractSuite struct {
	suite.Suite
	store store.Store
}

func (s *contractSuite) newRecord() *models.Record {
	r, err := models.NewRecord("doc-1", "0xabc", "job-1", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), r))
	return r
}

func (s *contractSuite) TestCreateAndFind() {
	r := s.newRecord()

	got, err := s.store.FindByID(context.Background(), r.ID)

	s.Require().NoError(err)
	s.Equal(r.ID, got.ID)
	s.Equal("doc-1", got.Reference)
	s.Equal("0xabc", got.ContentHash)
	s.Equal("job-1", got.ProofJobID)
	s.False(got.Verified)
	s.Nil(got.VerifiedAt)
	s.True(r.CreatedAt.Equal(got.CreatedAt))
}

func (s *contractSuite) TestCreateDuplicate() {
	r := s.newRecord()
	s.ErrorIs(s.store.Create(context.Background(), r), sentinel.ErrConflict)
}

func (s *contractSuite) TestUnknownID() {
	ctx := context.Background()
	_, err := s.store.FindByID(ctx, domain.NewContentID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.MarkVerified(ctx, domain.NewContentID(), json.RawMessage(`{}`), time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestMarkVerifiedOnce() {
	ctx := context.Background()
	r := s.newRecord()
	at := time.Now().UTC().Truncate(time.Microsecond)

	updated, err := s.store.MarkVerified(ctx, r.ID, json.RawMessage(`{"status":"completed","journal":{"contentHash":"0xABC"}}`), at)
	s.Require().NoError(err)
	s.True(updated.Verified)
	s.Require().NotNil(updated.VerifiedAt)
	s.True(at.Equal(*updated.VerifiedAt))

	_, err = s.store.MarkVerified(ctx, r.ID, json.RawMessage(`{"status":"other"}`), at.Add(time.Minute))
	s.ErrorIs(err, sentinel.ErrInvalidState)

	got, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.True(got.Verified)
	s.JSONEq(`{"status":"completed","journal":{"contentHash":"0xABC"}}`, string(got.VerifierResult))
}

func (s *contractSuite) TestConcurrentMarkVerified() {
	r := s.newRecord()

	result := testutil.RunConcurrent(10, func(int) error {
		_, err := s.store.MarkVerified(context.Background(), r.ID, json.RawMessage(`{}`), time.Now())
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.InvalidStates)
	s.Zero(result.Errors)
}

func (s *contractSuite) TestReturnedRecordsAreCopies() {
	ctx := context.Background()
	r := s.newRecord()

	got, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	got.Verified = true
	got.Reference = "tampered"

	again, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.False(again.Verified)
	s.Equal("doc-1", again.Reference)
}
