package exchange

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/rendezvous"
)

// Reduce selects how fan-in entries sharing a slot are combined
type Reduce int

const (
	ReduceSum Reduce = iota
	ReduceMax
)

func (r Reduce) String() string {
	switch r {
	case ReduceSum:
		return "sum"
	case ReduceMax:
		return "max"
	}
	return fmt.Sprintf("Reduce(%d)", int(r))
}

// ScatterToSlots combines the ncomp values of every incoming entry into the
// local slot the permutation assigns it to. Slots without entries stay zero.
func ScatterToSlots(perm *rendezvous.CSR, incoming []float64, ncomp int, reduce Reduce) ([]float64, error) {
	if ncomp <= 0 {
		return nil, fmt.Errorf("scatter: %d components per entry", ncomp)
	}
	if len(incoming) != perm.NumMatches()*ncomp {
		return nil, fmt.Errorf("scatter: incoming buffer has %d values, expected %d entries x %d components",
			len(incoming), perm.NumMatches(), ncomp)
	}
	if reduce != ReduceSum && reduce != ReduceMax {
		return nil, fmt.Errorf("scatter: unknown reduction %v", reduce)
	}

	slots := make([]float64, perm.NumSlots()*ncomp)
	for k := 0; k < perm.NumSlots(); k++ {
		dst := slots[k*ncomp : (k+1)*ncomp]
		for n, i := range perm.Bucket(k) {
			src := incoming[i*ncomp : (i+1)*ncomp]
			for c := range dst {
				switch {
				case n == 0:
					dst[c] = src[c]
				case reduce == ReduceSum:
					dst[c] += src[c]
				default:
					dst[c] = math.Max(dst[c], src[c])
				}
			}
		}
	}
	return slots, nil
}

// GatherFromSlots builds a buffer in incoming order in which every entry
// carries the values of the slot it belongs to
func GatherFromSlots(perm *rendezvous.CSR, slots []float64, ncomp int) ([]float64, error) {
	if ncomp <= 0 {
		return nil, fmt.Errorf("gather: %d components per entry", ncomp)
	}
	if len(slots) != perm.NumSlots()*ncomp {
		return nil, fmt.Errorf("gather: slot buffer has %d values, expected %d slots x %d components",
			len(slots), perm.NumSlots(), ncomp)
	}

	out := make([]float64, perm.NumMatches()*ncomp)
	for k := 0; k < perm.NumSlots(); k++ {
		src := slots[k*ncomp : (k+1)*ncomp]
		for _, i := range perm.Bucket(k) {
			copy(out[i*ncomp:(i+1)*ncomp], src)
		}
	}
	return out, nil
}

// Accumulate sums scalar incoming contributions per slot by multiplying the
// sparse permutation matrix with the incoming vector
func Accumulate(perm *rendezvous.CSR, incoming []float64) ([]float64, error) {
	if len(incoming) != perm.NumMatches() {
		return nil, fmt.Errorf("accumulate: incoming vector has %d values, expected %d",
			len(incoming), perm.NumMatches())
	}
	slots := make([]float64, perm.NumSlots())
	m := perm.Matrix(len(incoming))
	if m == nil {
		return slots, nil
	}

	var y mat.VecDense
	y.MulVec(m, mat.NewVecDense(len(incoming), incoming))
	for k := range slots {
		slots[k] = y.AtVec(k)
	}
	return slots, nil
}

// Segment is the part of a forward buffer addressed to one destination
type Segment struct {
	Dest int
	Data []float64
}

// Carve splits buf, holding ncomp values per entry, into one segment per
// destination of out. Segments alias buf.
func Carve(out *rendezvous.OutMsg, buf []float64, ncomp int) ([]Segment, error) {
	if ncomp <= 0 {
		return nil, fmt.Errorf("carve: %d components per entry", ncomp)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("carve: %w", err)
	}
	if int64(len(buf)) != out.Total()*int64(ncomp) {
		return nil, fmt.Errorf("carve: buffer has %d values, layout covers %d entries x %d components",
			len(buf), out.Total(), ncomp)
	}

	segs := make([]Segment, len(out.Dest))
	for i, dest := range out.Dest {
		lo, hi := out.Offset[i]*int64(ncomp), out.Offset[i+1]*int64(ncomp)
		segs[i] = Segment{Dest: dest, Data: buf[lo:hi:hi]}
	}
	return segs, nil
}
