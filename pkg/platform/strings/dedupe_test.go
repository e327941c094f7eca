package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DedupeAndTrim([]string{" a ", "b", "a", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"did:web:a", "did:web:b"}, SplitList("did:web:a, did:web:b ,did:web:a"))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
}
