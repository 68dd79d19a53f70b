package byterun

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFindExactStart(t *testing.T) {
	runs := []Run{
		{Start: 0, End: 10, Owner: Owner{Name: "a"}},
		{Start: 10, End: 11, Owner: Owner{Name: "b"}},
		{Start: 40, End: 100, Owner: Owner{Name: "c"}},
		{Start: 100, End: 4096, Owner: Owner{Name: "d"}},
		{Start: 5000, End: 5001, Owner: Owner{Name: "e"}},
		{Start: 9000, End: 12000, Owner: Owner{Name: "f"}},
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]Run, len(runs))
		copy(shuffled, runs)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		idx := NewIndex()
		for _, r := range shuffled {
			idx.Add(int64(r.Start), int64(r.End-r.Start), r.Owner)
		}
		for _, r := range runs {
			got, ok := idx.Find(r.Start)
			require.True(t, ok, "run starting at %d not found", r.Start)
			assert.Equal(t, r, got)
		}
	}
}

func TestIndexFindContainment(t *testing.T) {
	idx := NewIndex()
	idx.Add(100, 50, Owner{Name: "A"})

	got, ok := idx.Find(120)
	require.True(t, ok)
	assert.Equal(t, "A", got.Owner.Name)

	got, ok = idx.Find(149)
	require.True(t, ok)
	assert.Equal(t, "A", got.Owner.Name)

	_, ok = idx.Find(150)
	assert.False(t, ok, "one past the end must not match")

	_, ok = idx.Find(99)
	assert.False(t, ok, "before the first run must not match")

	idx.Add(150, 10, Owner{Name: "B"})
	got, ok = idx.Find(150)
	require.True(t, ok)
	assert.Equal(t, "B", got.Owner.Name)
}

func TestIndexFindGap(t *testing.T) {
	idx := NewIndex()
	idx.Add(0, 10, Owner{Name: "first"})
	idx.Add(20, 10, Owner{Name: "second"})

	_, ok := idx.Find(15)
	assert.False(t, ok)
	_, ok = idx.Find(1 << 40)
	assert.False(t, ok)
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex()
	for _, pos := range []uint64{0, 1, 1 << 63} {
		_, ok := idx.Find(pos)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, idx.Len())
}

func TestIndexAddIgnoresInvalid(t *testing.T) {
	idx := NewIndex()
	idx.Add(-1, 10, Owner{Name: "neg"})
	idx.Add(10, 0, Owner{Name: "empty"})
	idx.Add(10, -5, Owner{Name: "negative length"})
	assert.Equal(t, 0, idx.Len())
}

func TestIndexTieKeepsInsertionOrder(t *testing.T) {
	idx := NewIndex()
	idx.Add(50, 10, Owner{Name: "z"})
	idx.Add(0, 10, Owner{Name: "first"})
	idx.Add(0, 100, Owner{Name: "second"})

	got, ok := idx.Find(0)
	require.True(t, ok)
	assert.Equal(t, "first", got.Owner.Name)
}

func TestIndexResortsAfterAdd(t *testing.T) {
	idx := NewIndex()
	idx.Add(100, 10, Owner{Name: "late"})
	_, ok := idx.Find(5)
	assert.False(t, ok)

	idx.Add(0, 10, Owner{Name: "early"})
	got, ok := idx.Find(5)
	require.True(t, ok)
	assert.Equal(t, "early", got.Owner.Name)
	assert.Equal(t, uint64(0), idx.Runs()[0].Start)
}
