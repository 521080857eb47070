// Package rendezvous computes the routing metadata used when a rendezvous
// partition and an application partition of the same global identifier set
// exchange data during a coupling handshake.
//
// Two kernels are provided. BuildPermutation matches an incoming identifier
// list against the local identifier set and returns a CSR structure mapping
// every local slot to the incoming entries destined for it. BuildOutLayout
// reduces an aggregated incoming message layout to the (dest, offset) pair
// needed to forward one contiguous buffer to each sending group.
//
// Basic usage:
//
//	perm, err := rendezvous.BuildPermutation(localIDs, incomingIDs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for k := 0; k < perm.NumSlots(); k++ {
//	    for _, i := range perm.Bucket(k) {
//	        // incoming entry i belongs to local slot k
//	    }
//	}
//
// Both kernels are pure: inputs are never mutated and every result is freshly
// allocated. Violated invariants are reported as typed errors, see
// ErrIntegrity, ErrMalformedLayout and ErrUnsupported.
package rendezvous
