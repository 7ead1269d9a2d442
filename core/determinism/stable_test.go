package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashJSONIgnoresMapInsertionOrder(t *testing.T) {
	a := map[string]int{}
	a["window"] = 1
	a["carpet"] = 2

	b := map[string]int{}
	b["carpet"] = 2
	b["window"] = 1

	ha, err := HashJSON(a)
	require.NoError(t, err)
	hb, err := HashJSON(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.False(t, ha.IsZero())
}

func TestContentHashTextRoundTrip(t *testing.T) {
	h := ComputeHash([]byte("pricing"))
	text, err := h.MarshalText()
	require.NoError(t, err)

	var back ContentHash
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, h, back)
	assert.Len(t, h.Short(), 12)
}

func TestRangeMapSortedStopsEarly(t *testing.T) {
	var seen []string
	RangeMapSorted(map[string]bool{"c": true, "a": true, "b": true}, func(k string, _ bool) bool {
		seen = append(seen, k)
		return k != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}
