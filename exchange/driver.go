package exchange

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/rendezvous"
)

// Exchanger drives one synchronization step between a sending and a
// receiving partition. Every receiving rank is evaluated concurrently and
// only touches its own inputs.
type Exchanger struct {
	logger       *zap.Logger
	cache        *PermutationCache
	senderGroups int
	components   int
}

// Option configures an Exchanger
type Option func(*Exchanger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

// WithCache reuses permutations across calls to Prepare
func WithCache(cache *PermutationCache) Option {
	return func(e *Exchanger) {
		e.cache = cache
	}
}

// WithSenderGroups rejects layouts that do not describe exactly n sender
// groups
func WithSenderGroups(n int) Option {
	return func(e *Exchanger) {
		e.senderGroups = n
	}
}

// WithComponents sets the number of field values carried per identifier
func WithComponents(n int) Option {
	return func(e *Exchanger) {
		e.components = n
	}
}

// NewExchanger returns an Exchanger with the given options applied
func NewExchanger(opts ...Option) *Exchanger {
	e := &Exchanger{
		logger:     zap.NewNop(),
		components: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RankRouting is the routing metadata of one receiving rank
type RankRouting struct {
	Rank int
	Perm *rendezvous.CSR    // local slot -> incoming entries
	Out  *rendezvous.OutMsg // reply buffer -> sender groups
}

// Prepare computes the permutation and the outgoing layout of every
// receiving rank. The first failing rank aborts the step.
func (e *Exchanger) Prepare(ctx context.Context, receivers *Partition, plan *Plan) ([]RankRouting, error) {
	if receivers.NumRanks != plan.Receivers || len(receivers.Owned) != plan.Receivers {
		return nil, fmt.Errorf("receiver partition has %d ranks, plan expects %d",
			receivers.NumRanks, plan.Receivers)
	}

	var layoutOpts []rendezvous.LayoutOption
	if e.senderGroups > 0 {
		layoutOpts = append(layoutOpts, rendezvous.WithSenderGroups(e.senderGroups))
	}

	routing := make([]RankRouting, plan.Receivers)
	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < plan.Receivers; r++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perm, err := e.permutation(receivers.Owned[r], plan.Incoming[r])
			if err != nil {
				e.logger.Error("permutation failed", zap.Int("rank", r), zap.Error(err))
				return fmt.Errorf("rank %d: %w", r, err)
			}
			out, err := rendezvous.BuildOutLayout(plan.Layout, r, plan.Receivers, layoutOpts...)
			if err != nil {
				e.logger.Error("outgoing layout failed", zap.Int("rank", r), zap.Error(err))
				return fmt.Errorf("rank %d: %w", r, err)
			}
			routing[r] = RankRouting{Rank: r, Perm: perm, Out: out}
			e.logger.Debug("rank routing ready",
				zap.Int("rank", r),
				zap.Int("slots", perm.NumSlots()),
				zap.Int("matches", perm.NumMatches()),
				zap.Ints("dest", out.Dest),
				zap.Int64s("offset", out.Offset),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return routing, nil
}

func (e *Exchanger) permutation(localIDs, incomingIDs []rendezvous.GID) (*rendezvous.CSR, error) {
	if e.cache != nil {
		return e.cache.Get(localIDs, incomingIDs)
	}
	return rendezvous.BuildPermutation(localIDs, incomingIDs)
}

// Result holds the outcome of one round trip
type Result struct {
	Slots   [][]float64   // [receiver] values reduced per local slot
	Replies [][][]float64 // [sender][receiver] reply in the order the sender packed it
}

// Execute sends every sender's field, scatters it into the receivers' local
// slots with a sum, gathers the reduced values back in arrival order and
// forwards each sender the sub-range of the reply addressed to it.
// fields[s] holds the sender's values in slot order.
func (e *Exchanger) Execute(ctx context.Context, plan *Plan, routing []RankRouting, fields [][]float64) (*Result, error) {
	ncomp := e.components
	if len(routing) != plan.Receivers {
		return nil, fmt.Errorf("routing covers %d receivers, plan has %d", len(routing), plan.Receivers)
	}
	for r, rr := range routing {
		if rr.Rank != r || rr.Perm == nil || rr.Out == nil {
			return nil, fmt.Errorf("routing entry %d is not prepared for rank %d", r, r)
		}
	}
	if len(fields) != plan.Senders {
		return nil, fmt.Errorf("%d sender fields, plan has %d senders", len(fields), plan.Senders)
	}
	for s, f := range fields {
		if len(f) != plan.SenderLen[s]*ncomp {
			return nil, fmt.Errorf("sender %d field has %d values, expected %d slots x %d components",
				s, len(f), plan.SenderLen[s], ncomp)
		}
	}

	res := &Result{
		Slots:   make([][]float64, plan.Receivers),
		Replies: make([][][]float64, plan.Senders),
	}
	for s := range res.Replies {
		res.Replies[s] = make([][]float64, plan.Receivers)
	}

	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < plan.Receivers; r++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.executeRank(plan, routing[r], fields, res)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("exchange complete",
		zap.Int("senders", plan.Senders),
		zap.Int("receivers", plan.Receivers),
		zap.Int64("entries", plan.TotalEntries()),
		zap.Int("components", ncomp),
	)
	return res, nil
}

// executeRank writes only res.Slots[r] and res.Replies[*][r]
func (e *Exchanger) executeRank(plan *Plan, rr RankRouting, fields [][]float64, res *Result) error {
	ncomp := e.components
	r := rr.Rank

	// Transport: concatenate the packed messages in sender order
	incoming := make([]float64, 0, len(plan.Incoming[r])*ncomp)
	for s := 0; s < plan.Senders; s++ {
		for _, k := range plan.SendSlots[s][r] {
			incoming = append(incoming, fields[s][k*ncomp:(k+1)*ncomp]...)
		}
	}

	slots, err := ScatterToSlots(rr.Perm, incoming, ncomp, ReduceSum)
	if err != nil {
		return fmt.Errorf("rank %d: %w", r, err)
	}
	res.Slots[r] = slots

	reply, err := GatherFromSlots(rr.Perm, slots, ncomp)
	if err != nil {
		return fmt.Errorf("rank %d: %w", r, err)
	}
	segs, err := Carve(rr.Out, reply, ncomp)
	if err != nil {
		return fmt.Errorf("rank %d: %w", r, err)
	}
	for _, seg := range segs {
		if seg.Dest < 0 || seg.Dest >= plan.Senders {
			return fmt.Errorf("rank %d: reply addressed to sender group %d of %d", r, seg.Dest, plan.Senders)
		}
		if want := plan.SendCount(seg.Dest, r) * ncomp; len(seg.Data) != want {
			return fmt.Errorf("rank %d: %w: reply to sender %d has %d values, sender sent %d",
				r, rendezvous.ErrIntegrity, seg.Dest, len(seg.Data), want)
		}
		res.Replies[seg.Dest][r] = seg.Data
	}
	e.logger.Debug("rank exchanged",
		zap.Int("rank", r),
		zap.Int("entries", rr.Perm.NumMatches()),
		zap.Int("segments", len(segs)),
	)
	return nil
}
