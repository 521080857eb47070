package exchange

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/rendezvous"
)

// fanInPerm maps local [30 10 20] against incoming [20 10 10 30]
func fanInPerm(t *testing.T) *rendezvous.CSR {
	t.Helper()
	perm, err := rendezvous.BuildPermutation(
		[]rendezvous.GID{30, 10, 20},
		[]rendezvous.GID{20, 10, 10, 30},
	)
	require.NoError(t, err)
	return perm
}

func TestScatterToSlots(t *testing.T) {
	perm := fanInPerm(t)
	incoming := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	testCases := []struct {
		name     string
		reduce   Reduce
		expected []float64
	}{
		{"sum", ReduceSum, []float64{7, 8, 8, 10, 1, 2}},
		{"max", ReduceMax, []float64{7, 8, 5, 6, 1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slots, err := ScatterToSlots(perm, incoming, 2, tc.reduce)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, slots)
		})
	}
}

func TestScatterEmptySlot(t *testing.T) {
	perm, err := rendezvous.BuildPermutation([]rendezvous.GID{5, 6, 7}, []rendezvous.GID{7})
	require.NoError(t, err)
	slots, err := ScatterToSlots(perm, []float64{-3}, 1, ReduceMax)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, -3}, slots)
}

func TestGatherFromSlots(t *testing.T) {
	perm := fanInPerm(t)
	out, err := GatherFromSlots(perm, []float64{100, 200, 300}, 1)
	require.NoError(t, err)
	// incoming [20 10 10 30] -> slots [2 1 1 0]
	assert.Equal(t, []float64{300, 200, 200, 100}, out)
}

func TestAccumulateMatchesScatter(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	local := make([]rendezvous.GID, 200)
	for k, p := range rng.Perm(len(local)) {
		local[k] = rendezvous.GID(p * 3)
	}
	incoming := make([]rendezvous.GID, 500)
	values := make([]float64, len(incoming))
	for i := range incoming {
		incoming[i] = local[rng.IntN(len(local))]
		values[i] = rng.Float64()
	}
	perm, err := rendezvous.BuildPermutation(local, incoming)
	require.NoError(t, err)

	scattered, err := ScatterToSlots(perm, values, 1, ReduceSum)
	require.NoError(t, err)
	accumulated, err := Accumulate(perm, values)
	require.NoError(t, err)
	assert.InDeltaSlice(t, scattered, accumulated, 1e-12)
}

func TestAccumulateNoEntries(t *testing.T) {
	perm, err := rendezvous.BuildPermutation([]rendezvous.GID{1, 2}, nil)
	require.NoError(t, err)
	slots, err := Accumulate(perm, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, slots)
}

func TestCarve(t *testing.T) {
	out := &rendezvous.OutMsg{Dest: []int{0, 3}, Offset: []int64{0, 4, 9}}
	buf := make([]float64, 18)
	for i := range buf {
		buf[i] = float64(i)
	}
	segs, err := Carve(out, buf, 2)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 0, segs[0].Dest)
	assert.Equal(t, buf[:8], segs[0].Data)
	assert.Equal(t, 3, segs[1].Dest)
	assert.Equal(t, buf[8:], segs[1].Data)
	assert.Equal(t, 10, cap(segs[1].Data))
}

func TestBufferErrors(t *testing.T) {
	perm := fanInPerm(t)
	out := &rendezvous.OutMsg{Dest: []int{0}, Offset: []int64{0, 4}}

	_, err := ScatterToSlots(perm, make([]float64, 5), 1, ReduceSum)
	assert.Error(t, err)
	_, err = ScatterToSlots(perm, make([]float64, 4), 0, ReduceSum)
	assert.Error(t, err)
	_, err = ScatterToSlots(perm, make([]float64, 4), 1, Reduce(9))
	assert.ErrorContains(t, err, "Reduce(9)")
	_, err = GatherFromSlots(perm, make([]float64, 2), 1)
	assert.Error(t, err)
	_, err = Accumulate(perm, make([]float64, 3))
	assert.Error(t, err)
	_, err = Carve(out, make([]float64, 7), 2)
	assert.Error(t, err)
	_, err = Carve(&rendezvous.OutMsg{Dest: []int{1, 0}, Offset: []int64{0, 1, 2}}, make([]float64, 2), 1)
	assert.Error(t, err)
}
