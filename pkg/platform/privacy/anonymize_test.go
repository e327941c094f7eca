package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"":                            "unknown",
		"unknown":                     "unknown",
		"not-an-ip":                   "invalid",
		"192.168.1.47":                "192.168.1.0",
		"::ffff:10.0.0.9":             "10.0.0.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:0db8:85a3::",
	}
	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), "input %q", in)
	}
}
