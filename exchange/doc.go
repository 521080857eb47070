// Package exchange drives the rendezvous routing kernels across a pair of
// partitions held in one process. It stands in for the mesh and transport
// collaborators: Partition and GridTopology produce identifier sets, BuildPlan
// produces the incoming lists and the aggregated layout the transport would
// deliver, and Exchanger computes and exercises the routing of every
// receiving rank.
package exchange
