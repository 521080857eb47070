package rendezvous

import "strconv"

type layoutConfig struct {
	senderGroups int // 0 accepts any count
}

// LayoutOption configures BuildOutLayout.
type LayoutOption func(*layoutConfig)

// WithSenderGroups requires the descriptor to describe exactly n sender
// groups. Any other count returns an *UnsupportedTopologyError.
func WithSenderGroups(n int) LayoutOption {
	return func(c *layoutConfig) {
		c.senderGroups = n
	}
}

// SenderDegrees returns, for each sender group, the number of entries rank
// receives from it. The last group's degree is the residual of the rank's
// total after the explicit differences of the leading groups.
func SenderDegrees(layout InMessageLayout, rank, numRanks int) ([]int64, error) {
	if numRanks <= 0 {
		return nil, &LayoutError{Array: "numRanks", Index: -1, Expected: "> 0",
			Actual: int64(numRanks), Reason: "no destination ranks"}
	}
	if rank < 0 || rank >= numRanks {
		return nil, &LayoutError{Array: "rank", Index: -1, Expected: "in [0," + strconv.Itoa(numRanks) + ")",
			Actual: int64(rank), Reason: "rank out of range"}
	}
	if len(layout.Offset) != numRanks+1 {
		return nil, &LayoutError{Array: "offset", Index: -1, Expected: "length " + strconv.Itoa(numRanks+1),
			Actual: int64(len(layout.Offset)), Reason: "length does not match rank count"}
	}
	if rem := len(layout.SrcRanks) % numRanks; rem != 0 {
		return nil, &LayoutError{Array: "srcRanks", Index: -1, Expected: "length divisible by " + strconv.Itoa(numRanks),
			Actual: int64(len(layout.SrcRanks)), Reason: "indivisible length"}
	}
	groups := len(layout.SrcRanks) / numRanks
	if groups == 0 {
		return nil, &LayoutError{Array: "srcRanks", Index: -1, Expected: "at least one sender group",
			Actual: 0, Reason: "no sender groups"}
	}
	// Group 0 starts the buffer, otherwise the degrees cannot sum to the total
	if first := layout.SrcRanks[rank]; first != 0 {
		return nil, &LayoutError{Array: "srcRanks", Index: rank, Expected: "0",
			Actual: first, Reason: "inconsistent degree sum"}
	}

	deg := make([]int64, groups)
	for g := 0; g < groups-1; g++ {
		deg[g] = layout.SrcRanks[(g+1)*numRanks+rank] - layout.SrcRanks[g*numRanks+rank]
		if deg[g] < 0 {
			return nil, &LayoutError{Array: "srcRanks", Index: (g+1)*numRanks + rank,
				Expected: ">= " + strconv.FormatInt(layout.SrcRanks[g*numRanks+rank], 10),
				Actual:   layout.SrcRanks[(g+1)*numRanks+rank], Reason: "negative degree for sender group " + strconv.Itoa(g)}
		}
	}
	total := layout.Offset[rank+1] - layout.Offset[rank]
	last := (groups-1)*numRanks + rank
	deg[groups-1] = total - layout.SrcRanks[last]
	if deg[groups-1] < 0 {
		return nil, &LayoutError{Array: "srcRanks", Index: last,
			Expected: "<= " + strconv.FormatInt(total, 10) + " (offset[" + strconv.Itoa(rank+1) + "]-offset[" + strconv.Itoa(rank) + "])",
			Actual:   layout.SrcRanks[last], Reason: "negative degree for sender group " + strconv.Itoa(groups-1)}
	}
	return deg, nil
}

// BuildOutLayout derives the destinations and offsets used by rank to
// forward its contiguous incoming buffer back to the sender groups. Groups
// that sent nothing are omitted.
func BuildOutLayout(layout InMessageLayout, rank, numRanks int, opts ...LayoutOption) (*OutMsg, error) {
	var cfg layoutConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if numRanks > 0 && len(layout.SrcRanks)%numRanks == 0 && cfg.senderGroups > 0 {
		if groups := len(layout.SrcRanks) / numRanks; groups > 0 && groups != cfg.senderGroups {
			return nil, &UnsupportedTopologyError{SenderGroups: groups, Required: cfg.senderGroups}
		}
	}

	deg, err := SenderDegrees(layout, rank, numRanks)
	if err != nil {
		return nil, err
	}

	out := &OutMsg{}
	var sum int64
	for g, d := range deg {
		if d > 0 {
			out.Dest = append(out.Dest, g)
			out.Offset = append(out.Offset, sum)
			sum += d
		}
	}
	out.Offset = append(out.Offset, sum)
	return out, nil
}
