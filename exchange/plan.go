package exchange

import (
	"fmt"

	"github.com/notargets/rendezvous"
)

// Plan is the message pattern between a sending and a receiving partition,
// as the transport layer would deliver it
type Plan struct {
	Senders   int
	Receivers int

	// Send info: what each sender puts on the wire for each receiver
	Sends     [][][]rendezvous.GID // [sender][receiver][]ids
	SendSlots [][][]int            // [sender][receiver][]sender local slots
	SenderLen []int                // [sender] local slot count

	// Receive info: each receiver's buffer is the concatenation of the
	// senders' messages in sender order
	Incoming [][]rendezvous.GID // [receiver][]ids
	Layout   rendezvous.InMessageLayout
}

// BuildPlan routes every identifier of every sender to each receiver owning
// it. Identifiers without a receiving owner are an error.
func BuildPlan(senders, receivers *Partition) (*Plan, error) {
	if err := senders.Validate(); err != nil {
		return nil, fmt.Errorf("sender partition: %w", err)
	}
	if err := receivers.Validate(); err != nil {
		return nil, fmt.Errorf("receiver partition: %w", err)
	}

	nS, nR := senders.NumRanks, receivers.NumRanks
	owners := make(map[rendezvous.GID][]int, receivers.TotalOwned())
	for r, ids := range receivers.Owned {
		for _, gid := range ids {
			owners[gid] = append(owners[gid], r)
		}
	}

	plan := &Plan{
		Senders:   nS,
		Receivers: nR,
		Sends:     make([][][]rendezvous.GID, nS),
		SendSlots: make([][][]int, nS),
		SenderLen: make([]int, nS),
		Incoming:  make([][]rendezvous.GID, nR),
	}

	// Single pass through all sender slots
	for s, ids := range senders.Owned {
		plan.Sends[s] = make([][]rendezvous.GID, nR)
		plan.SendSlots[s] = make([][]int, nR)
		plan.SenderLen[s] = len(ids)
		for k, gid := range ids {
			rs, ok := owners[gid]
			if !ok {
				return nil, fmt.Errorf("sender %d slot %d: identifier %d has no receiving owner", s, k, gid)
			}
			for _, r := range rs {
				plan.Sends[s][r] = append(plan.Sends[s][r], gid)
				plan.SendSlots[s][r] = append(plan.SendSlots[s][r], k)
			}
		}
	}

	// Aggregate the layout: per receiver, the running start of each sender
	plan.Layout = rendezvous.InMessageLayout{
		SrcRanks: make([]int64, nS*nR),
		Offset:   make([]int64, nR+1),
	}
	for r := 0; r < nR; r++ {
		var start int64
		for s := 0; s < nS; s++ {
			plan.Layout.SrcRanks[s*nR+r] = start
			start += int64(len(plan.Sends[s][r]))
			plan.Incoming[r] = append(plan.Incoming[r], plan.Sends[s][r]...)
		}
		plan.Layout.Offset[r+1] = plan.Layout.Offset[r] + start
	}
	return plan, nil
}

// SendCount returns the number of identifiers sender s sends to receiver r
func (p *Plan) SendCount(s, r int) int {
	return len(p.Sends[s][r])
}

// TotalEntries returns the number of identifiers on the wire
func (p *Plan) TotalEntries() int64 {
	return p.Layout.Offset[p.Receivers]
}
