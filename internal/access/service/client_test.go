package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeClient(t *testing.T) {
	t.Run("empty agent", func(t *testing.T) {
		assert.Empty(t, describeClient("  "))
	})

	t.Run("desktop browser", func(t *testing.T) {
		got := describeClient("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Contains(t, got, "Chrome on ")
	})

	t.Run("crawler", func(t *testing.T) {
		got := describeClient("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.Contains(t, got, "bot ")
	})
}
