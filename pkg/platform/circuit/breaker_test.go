package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
	now     time.Time
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.breaker = New("kafka",
		WithFailureThreshold(2),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *BreakerSuite) TestOpensAfterThreshold() {
	s.False(s.breaker.RecordFailure().Opened)
	s.True(s.breaker.Allow())

	change := s.breaker.RecordFailure()
	s.True(change.Opened)
	s.True(s.breaker.IsOpen())
	s.Equal("open", s.breaker.State().String())
	s.False(s.breaker.Allow())
}

func (s *BreakerSuite) TestSuccessResetsFailureCount() {
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()
	s.False(s.breaker.RecordFailure().Opened)
	s.False(s.breaker.IsOpen())
}

func (s *BreakerSuite) TestProbeAfterCooldown() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.Require().True(s.breaker.IsOpen())

	s.now = s.now.Add(11 * time.Second)
	s.True(s.breaker.Allow(), "first call after cooldown is a probe")
	s.False(s.breaker.Allow(), "only one probe per window")

	s.True(s.breaker.RecordSuccess().Closed)
	s.Equal(StateClosed, s.breaker.State())
	s.True(s.breaker.Allow())
}

func (s *BreakerSuite) TestFailedProbeRestartsCooldown() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()

	s.now = s.now.Add(11 * time.Second)
	s.Require().True(s.breaker.Allow())
	s.breaker.RecordFailure()

	s.now = s.now.Add(5 * time.Second)
	s.False(s.breaker.Allow())
}

func (s *BreakerSuite) TestDefaults() {
	b := New("ledger-publisher")
	s.Equal("ledger-publisher", b.Name())
	for range defaultFailureThreshold - 1 {
		s.False(b.RecordFailure().Opened)
	}
	s.True(b.RecordFailure().Opened)
	s.False(b.Allow())
}
