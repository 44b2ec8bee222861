package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomAlphabetString(t *testing.T) {
	s := RandomAlphabetString(TestDBNameCharLength)
	assert.Len(t, s, TestDBNameCharLength)
	assert.Regexp(t, "^[a-z]+$", s)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
}
