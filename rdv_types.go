package rendezvous

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// GID is a global identifier shared across partitions.
type GID int64

// CSR maps each local slot k to the incoming indices
// Values[Offsets[k]:Offsets[k+1]].
type CSR struct {
	Offsets []int // [numSlots+1] exclusive prefix sum of slot degrees
	Values  []int // [numMatches] indices into the incoming identifier list
}

// NumSlots returns the number of local slots covered by the structure.
func (c *CSR) NumSlots() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

// NumMatches returns the total number of incoming entries.
func (c *CSR) NumMatches() int {
	return len(c.Values)
}

// Degree returns the number of incoming entries destined for slot k.
func (c *CSR) Degree(k int) int {
	return c.Offsets[k+1] - c.Offsets[k]
}

// Bucket returns the incoming indices for slot k. The slice aliases Values.
func (c *CSR) Bucket(k int) []int {
	return c.Values[c.Offsets[k]:c.Offsets[k+1]]
}

// Validate checks the structural invariants against an incoming list of
// numIncoming entries.
func (c *CSR) Validate(numIncoming int) error {
	if len(c.Offsets) == 0 {
		return fmt.Errorf("offsets: empty, expected at least one entry")
	}
	if c.Offsets[0] != 0 {
		return fmt.Errorf("offsets[0] = %d, expected 0", c.Offsets[0])
	}
	for k := 1; k < len(c.Offsets); k++ {
		if c.Offsets[k] < c.Offsets[k-1] {
			return fmt.Errorf("offsets[%d] = %d is below offsets[%d] = %d",
				k, c.Offsets[k], k-1, c.Offsets[k-1])
		}
	}
	if last := c.Offsets[len(c.Offsets)-1]; last != len(c.Values) {
		return fmt.Errorf("offsets[%d] = %d, expected len(values) = %d",
			len(c.Offsets)-1, last, len(c.Values))
	}
	if len(c.Values) != numIncoming {
		return fmt.Errorf("values: %d entries, expected %d incoming", len(c.Values), numIncoming)
	}
	seen := make([]bool, numIncoming)
	for j, v := range c.Values {
		if v < 0 || v >= numIncoming {
			return fmt.Errorf("values[%d] = %d out of range [0,%d)", j, v, numIncoming)
		}
		if seen[v] {
			return fmt.Errorf("values[%d] = %d appears more than once", j, v)
		}
		seen[v] = true
	}
	return nil
}

// Matrix returns the permutation as a sparse NumSlots x numIncoming matrix
// with a one at (k, i) for every incoming index i in bucket k. Multiplying it
// by a vector over the incoming list sums fan-in contributions per slot.
// Returns nil when either dimension is zero.
func (c *CSR) Matrix(numIncoming int) *sparse.CSR {
	rows := c.NumSlots()
	if rows == 0 || numIncoming == 0 {
		return nil
	}
	ia := make([]int, len(c.Offsets))
	copy(ia, c.Offsets)
	ja := make([]int, len(c.Values))
	copy(ja, c.Values)
	data := make([]float64, len(c.Values))
	for i := range data {
		data[i] = 1
	}
	return sparse.NewCSR(rows, numIncoming, ia, ja, data)
}

// InMessageLayout is the aggregated description of the messages arriving on
// every destination rank.
type InMessageLayout struct {
	// SrcRanks[g*numRanks+rank] is the start, within rank's incoming
	// buffer, of the entries sent by group g.
	SrcRanks []int64
	// Offset[rank] is the cumulative entry count of all ranks before rank;
	// len(Offset) == numRanks+1.
	Offset []int64
}

// OutMsg describes how one contiguous buffer is split by destination group:
// entries Offset[i]:Offset[i+1] go to Dest[i].
type OutMsg struct {
	Dest   []int
	Offset []int64
}

// Width returns the number of entries addressed to Dest[i].
func (o *OutMsg) Width(i int) int64 {
	return o.Offset[i+1] - o.Offset[i]
}

// Total returns the number of entries covered by all destinations.
func (o *OutMsg) Total() int64 {
	if len(o.Offset) == 0 {
		return 0
	}
	return o.Offset[len(o.Offset)-1]
}

// Validate checks that Dest is strictly ascending and Offset is a
// non-decreasing prefix sum of length len(Dest)+1 starting at zero.
func (o *OutMsg) Validate() error {
	if len(o.Offset) != len(o.Dest)+1 {
		return fmt.Errorf("offset: %d entries, expected %d", len(o.Offset), len(o.Dest)+1)
	}
	if o.Offset[0] != 0 {
		return fmt.Errorf("offset[0] = %d, expected 0", o.Offset[0])
	}
	for i := 1; i < len(o.Dest); i++ {
		if o.Dest[i] <= o.Dest[i-1] {
			return fmt.Errorf("dest[%d] = %d not above dest[%d] = %d", i, o.Dest[i], i-1, o.Dest[i-1])
		}
	}
	for i := 1; i < len(o.Offset); i++ {
		if o.Offset[i] < o.Offset[i-1] {
			return fmt.Errorf("offset[%d] = %d is below offset[%d] = %d", i, o.Offset[i], i-1, o.Offset[i-1])
		}
	}
	return nil
}
