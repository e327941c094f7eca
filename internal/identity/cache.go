package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingVerifier memoizes successful credential validations keyed by token digest.
// Entries never outlive the credential's own expiry. Failures are not cached.
type CachingVerifier struct {
	next    CredentialVerifier
	cache   *expirable.LRU[string, *Credential]
	metrics *Metrics
	now     func() time.Time
}

// NewCachingVerifier wraps next with an LRU of size entries that expire after ttl.
func NewCachingVerifier(next CredentialVerifier, size int, ttl time.Duration, metrics *Metrics) *CachingVerifier {
	return &CachingVerifier{
		next:    next,
		cache:   expirable.NewLRU[string, *Credential](size, nil, ttl),
		metrics: metrics,
		now:     time.Now,
	}
}

func (c *CachingVerifier) Verify(ctx context.Context, token string) (*Credential, error) {
	key := tokenDigest(token)

	if cred, ok := c.cache.Get(key); ok {
		if cred.ExpiresAt.IsZero() || c.now().Before(cred.ExpiresAt) {
			c.metrics.IncCacheHit()
			return cred, nil
		}
		c.cache.Remove(key)
	}
	c.metrics.IncCacheMiss()

	cred, err := c.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cred)
	return cred, nil
}

// Len returns the number of cached credentials.
func (c *CachingVerifier) Len() int {
	return c.cache.Len()
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
