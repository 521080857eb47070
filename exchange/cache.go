package exchange

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/notargets/rendezvous"
)

// PermutationCache memoizes permutations across synchronization steps while
// the identifier sets of both partitions stay the same. Cached structures
// are shared and must be treated as read-only.
type PermutationCache struct {
	entries *lru.Cache[[32]byte, *rendezvous.CSR]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewPermutationCache returns a cache holding up to size permutations
func NewPermutationCache(size int) (*PermutationCache, error) {
	entries, err := lru.New[[32]byte, *rendezvous.CSR](size)
	if err != nil {
		return nil, fmt.Errorf("permutation cache: %w", err)
	}
	return &PermutationCache{entries: entries}, nil
}

// Get returns the permutation for the two identifier lists, building and
// storing it on a miss. Build errors are not cached.
func (c *PermutationCache) Get(localIDs, incomingIDs []rendezvous.GID) (*rendezvous.CSR, error) {
	key := permutationKey(localIDs, incomingIDs)
	if perm, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return perm, nil
	}
	c.misses.Add(1)
	perm, err := rendezvous.BuildPermutation(localIDs, incomingIDs)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, perm)
	return perm, nil
}

// Len returns the number of cached permutations
func (c *PermutationCache) Len() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counts
func (c *PermutationCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// permutationKey hashes both lists with their lengths so that moving an
// identifier from one list to the other changes the key
func permutationKey(localIDs, incomingIDs []rendezvous.GID) [32]byte {
	buf := make([]byte, 0, 8*(len(localIDs)+len(incomingIDs)+2))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(localIDs)))
	for _, gid := range localIDs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(gid))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(incomingIDs)))
	for _, gid := range incomingIDs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(gid))
	}
	return blake3.Sum256(buf)
}
