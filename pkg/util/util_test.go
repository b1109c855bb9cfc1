package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDiv(t *testing.T) {
	assert.InDelta(t, 2.0, SafeDiv(4, 2), 1e-9)
	assert.Equal(t, 0.0, SafeDiv(4, 0))
	assert.Equal(t, 0.0, SafeDiv(4, 1e-13))
	assert.InDelta(t, -2.0, SafeDiv(4, -2), 1e-9)
}

func TestMax(t *testing.T) {
	assert.Equal(t, 3.0, Max(3, 2))
	assert.Equal(t, 3.0, Max(2, 3))
}

