package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMergesQuantities(t *testing.T) {
	c := New()
	require.NoError(t, c.Add("7", 2))
	require.NoError(t, c.Add("7", 3))
	require.NoError(t, c.Add("9", 1))

	snap := c.Snapshot()
	assert.Equal(t, 5, snap["7"])
	assert.Equal(t, 1, snap["9"])
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 6, c.Count())
}

func TestAddRejectsInvalidInput(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.Add("7", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("7", -4), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("", 1), ErrInvalidProduct)
	assert.True(t, c.Snapshot().Empty())

	require.NoError(t, c.Add("7", MaxLineQuantity))
	assert.ErrorIs(t, c.Add("7", 1), ErrInvalidQuantity)
	assert.Equal(t, MaxLineQuantity, c.Snapshot()["7"])
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New()
	require.NoError(t, c.Add("1", 1))
	snap := c.Snapshot()
	snap["1"] = 100
	snap["2"] = 1
	assert.Equal(t, 1, c.Snapshot()["1"])
	assert.Equal(t, 1, c.Len())
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add("1", 1))
	c.Clear()
	assert.True(t, c.Snapshot().Empty())
	require.NoError(t, c.Add("1", 2))
	assert.Equal(t, 2, c.Snapshot()["1"])
}

func TestFromSnapshotDropsBadEntries(t *testing.T) {
	c := FromSnapshot(Snapshot{"1": 2, "2": 0, "3": -1, "": 4})
	assert.Equal(t, Snapshot{"1": 2}, c.Snapshot())
}

func TestEntriesSorted(t *testing.T) {
	s := Snapshot{"9": 1, "10": 2, "7": 3}
	assert.Equal(t, []Entry{{"10", 2}, {"7", 3}, {"9", 1}}, s.Entries())
}
