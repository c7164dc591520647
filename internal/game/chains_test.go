package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticChainsSample(t *testing.T) {
	src, err := LoadSeedChains()
	require.NoError(t, err)
	total := src.Len()
	require.Greater(t, total, 2)

	chains, err := src.Sample(t.Context(), total-2, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, chains, total-2)

	seen := make(map[int64]bool)
	for _, cw := range chains {
		assert.NotContains(t, []int64{1, 2}, cw.WordID)
		assert.False(t, seen[cw.WordID], "duplicate chain %d", cw.WordID)
		seen[cw.WordID] = true
		require.NotEmpty(t, cw.Links)
		for i := 1; i < len(cw.Links); i++ {
			assert.GreaterOrEqual(t, cw.Links[i-1].Score, cw.Links[i].Score, "links of %q are ordered by score", cw.FirstChain)
		}
	}

	_, err = src.Sample(t.Context(), total-1, []int64{1, 2})
	assert.ErrorIs(t, err, ErrNotEnoughWords)
}
