package exchange

import (
	"fmt"

	"github.com/notargets/rendezvous"
)

// Partition assigns identifiers to ranks. Owned[r] is the local identifier
// set of rank r in storage slot order. An identifier may be owned by several
// ranks but at most once per rank.
type Partition struct {
	NumRanks int
	Owned    [][]rendezvous.GID // [rank][slot]
}

// Validate checks the rank count and that no rank owns an identifier twice
func (p *Partition) Validate() error {
	if p.NumRanks <= 0 {
		return fmt.Errorf("partition has %d ranks", p.NumRanks)
	}
	if len(p.Owned) != p.NumRanks {
		return fmt.Errorf("partition lists %d ranks, expected %d", len(p.Owned), p.NumRanks)
	}
	for r, ids := range p.Owned {
		seen := make(map[rendezvous.GID]int, len(ids))
		for k, gid := range ids {
			if first, ok := seen[gid]; ok {
				return fmt.Errorf("rank %d: %w", r, &rendezvous.DuplicateIDError{
					GID: gid, FirstSlot: first, SecondSlot: k})
			}
			seen[gid] = k
		}
	}
	return nil
}

// TotalOwned returns the number of (rank, identifier) pairs
func (p *Partition) TotalOwned() int {
	total := 0
	for _, ids := range p.Owned {
		total += len(ids)
	}
	return total
}

// GridTopology is a structured grid of Nx x Ny vertices. Element (i, j)
// spans vertices i..i+1 in x and j..j+1 in y.
type GridTopology struct {
	Nx, Ny int
}

// NumVertices returns the number of grid vertices
func (g GridTopology) NumVertices() int {
	return g.Nx * g.Ny
}

// GID returns the global identifier of vertex (i, j)
func (g GridTopology) GID(i, j int) rendezvous.GID {
	return rendezvous.GID(j*g.Nx + i)
}

// PartitionColumns splits the element columns into nRanks contiguous blocks.
// Vertices on a block boundary belong to both neighboring ranks.
func (g GridTopology) PartitionColumns(nRanks int) (*Partition, error) {
	return g.partition(nRanks, true)
}

// PartitionRows splits the element rows into nRanks contiguous blocks.
func (g GridTopology) PartitionRows(nRanks int) (*Partition, error) {
	return g.partition(nRanks, false)
}

func (g GridTopology) partition(nRanks int, byColumn bool) (*Partition, error) {
	if g.Nx < 2 || g.Ny < 2 {
		return nil, fmt.Errorf("grid %dx%d has no elements", g.Nx, g.Ny)
	}
	nElem, other := g.Nx-1, g.Ny
	axis := "column"
	if !byColumn {
		nElem, other = g.Ny-1, g.Nx
		axis = "row"
	}
	if nRanks <= 0 || nRanks > nElem {
		return nil, fmt.Errorf("cannot split %d element %ss across %d ranks", nElem, axis, nRanks)
	}

	p := &Partition{NumRanks: nRanks, Owned: make([][]rendezvous.GID, nRanks)}
	for r := 0; r < nRanks; r++ {
		lo, hi := blockRange(nElem, nRanks, r)
		ids := make([]rendezvous.GID, 0, (hi-lo+1)*other)
		// Walk the split axis backwards so slot order differs from GID order
		for a := hi; a >= lo; a-- {
			for b := 0; b < other; b++ {
				if byColumn {
					ids = append(ids, g.GID(a, b))
				} else {
					ids = append(ids, g.GID(b, a))
				}
			}
		}
		p.Owned[r] = ids
	}
	return p, nil
}

// blockRange returns the element range [lo, hi) of block p when n elements
// are split into parts nearly equal blocks
func blockRange(n, parts, p int) (lo, hi int) {
	base, rem := n/parts, n%parts
	lo = p*base + min(p, rem)
	hi = lo + base
	if p < rem {
		hi++
	}
	return lo, hi
}
