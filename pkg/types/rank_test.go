package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_IsShared(t *testing.T) {
	assert.True(t, Shared.IsShared())
	assert.False(t, Rank(0).IsShared())
	assert.False(t, Rank(3).IsShared())
}

func TestRank_Index(t *testing.T) {
	idx, ok := Rank(5).Index()
	assert.True(t, ok)
	assert.Equal(t, 5, idx)

	_, ok = Shared.Index()
	assert.False(t, ok)
}

func TestRank_InRange(t *testing.T) {
	cases := []struct {
		name   string
		r      Rank
		nprocs int
		want   bool
	}{
		{"zero in range", Rank(0), 4, true},
		{"last in range", Rank(3), 4, true},
		{"at bound out", Rank(4), 4, false},
		{"negative non-shared", Rank(-2), 4, false},
		{"shared always in range", Shared, 4, true},
		{"shared with zero procs", Shared, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.r.InRange(tc.nprocs))
		})
	}
}

func TestRank_String(t *testing.T) {
	assert.Equal(t, "shared", Shared.String())
	assert.Equal(t, "7", Rank(7).String())
}
