package exchange

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerateExchangeReport creates a summary of the routing of every
// receiving rank
func GenerateExchangeReport(plan *Plan, routing []RankRouting) string {
	report := "=== Rendezvous Exchange Report ===\n"
	report += fmt.Sprintf("Plan: %d senders, %d receivers, %d entries\n\n",
		plan.Senders, plan.Receivers, plan.TotalEntries())

	incoming := make([]float64, len(routing))
	totalShared := 0
	maxFanIn := 0

	for i, rr := range routing {
		shared, rankMax := 0, 0
		for k := 0; k < rr.Perm.NumSlots(); k++ {
			d := rr.Perm.Degree(k)
			if d > 1 {
				shared++
			}
			rankMax = max(rankMax, d)
		}
		incoming[i] = float64(rr.Perm.NumMatches())
		totalShared += shared
		maxFanIn = max(maxFanIn, rankMax)

		report += fmt.Sprintf("Rank %d:\n", rr.Rank)
		report += fmt.Sprintf("  Local slots: %d\n", rr.Perm.NumSlots())
		report += fmt.Sprintf("  Incoming entries: %d\n", rr.Perm.NumMatches())
		report += fmt.Sprintf("  Shared slots: %d (max fan-in %d)\n", shared, rankMax)
		if len(rr.Out.Dest) > 0 {
			report += "  Reply to: "
			for j, g := range rr.Out.Dest {
				report += fmt.Sprintf("G%d(%d) ", g, rr.Out.Width(j))
			}
			report += "\n"
		}
		report += "\n"
	}

	report += "Summary:\n"
	report += fmt.Sprintf("  Total shared slots: %d\n", totalShared)
	report += fmt.Sprintf("  Max fan-in: %d\n", maxFanIn)
	if len(incoming) > 0 {
		mean, std := stat.MeanStdDev(incoming, nil)
		report += fmt.Sprintf("  Incoming per rank: mean %.2f, stddev %.2f, max %.0f\n",
			mean, std, floats.Max(incoming))
		if mean > 0 {
			report += fmt.Sprintf("  Imbalance: %.3f\n", floats.Max(incoming)/mean)
		}
	}
	return report
}
