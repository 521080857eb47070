package rendezvous

// BuildPermutation matches incomingIDs against localIDs and returns the CSR
// structure whose bucket k lists every index i with incomingIDs[i] ==
// localIDs[k]. Within a bucket indices are ascending.
//
// localIDs must not contain duplicates and every incoming identifier must be
// present in localIDs; violations return a *DuplicateIDError or an
// *UnmatchedIDError respectively. Neither input is modified.
func BuildPermutation(localIDs, incomingIDs []GID) (*CSR, error) {
	iLocal := sortIndexes(localIDs)
	for j := 1; j < len(iLocal); j++ {
		if localIDs[iLocal[j]] == localIDs[iLocal[j-1]] {
			return nil, &DuplicateIDError{
				GID:        localIDs[iLocal[j]],
				FirstSlot:  iLocal[j-1],
				SecondSlot: iLocal[j],
			}
		}
	}
	iIn := sortIndexes(incomingIDs)

	// Count the incoming entries owned by each slot
	perm := &CSR{Offsets: make([]int, len(localIDs)+1)}
	err := mergeWalk(localIDs, incomingIDs, iLocal, iIn, func(slot, _ int) {
		perm.Offsets[slot]++
	})
	if err != nil {
		return nil, err
	}

	// Exclusive scan turns counts into bucket starts; the trailing entry
	// becomes the total
	sum := 0
	for k, count := range perm.Offsets {
		perm.Offsets[k] = sum
		sum += count
	}

	perm.Values = make([]int, perm.Offsets[len(localIDs)])
	fill := make([]int, len(localIDs))
	err = mergeWalk(localIDs, incomingIDs, iLocal, iIn, func(slot, in int) {
		perm.Values[perm.Offsets[slot]+fill[slot]] = in
		fill[slot]++
	})
	if err != nil {
		return nil, err
	}
	return perm, nil
}

// mergeWalk visits incoming entries in ascending identifier order together
// with the local slot holding the same identifier.
func mergeWalk(localIDs, incomingIDs []GID, iLocal, iIn []int, visit func(slot, in int)) error {
	j := 0
	for _, in := range iIn {
		gid := incomingIDs[in]
		for j < len(iLocal) && localIDs[iLocal[j]] < gid {
			j++
		}
		if j == len(iLocal) || localIDs[iLocal[j]] != gid {
			return &UnmatchedIDError{GID: gid, IncomingIndex: in}
		}
		visit(iLocal[j], in)
	}
	return nil
}

// sortIndexes returns the stable ascending sort permutation of ids.
//
// Uses an 8-bit LSD radix sort over the sign-flipped keys, skipping passes
// where every key shares the same byte. Short inputs use insertion sort.
func sortIndexes(ids []GID) []int {
	n := len(ids)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if n <= 64 {
		insertionSortIndexes(ids, idx)
		return idx
	}

	scratch := make([]int, n)
	src, dst := idx, scratch
	for shift := uint(0); shift < 64; shift += 8 {
		if radixPass(ids, src, dst, shift) {
			src, dst = dst, src
		}
	}
	return src
}

// radixPass distributes src into dst by the key byte at shift. It returns
// false, leaving dst untouched, when all keys share that byte.
func radixPass(ids []GID, src, dst []int, shift uint) bool {
	var counts [256]int
	for _, i := range src {
		counts[keyByte(ids[i], shift)]++
	}
	if counts[keyByte(ids[src[0]], shift)] == len(src) {
		return false
	}

	total := 0
	for b := range counts {
		count := counts[b]
		counts[b] = total
		total += count
	}

	for _, i := range src {
		b := keyByte(ids[i], shift)
		dst[counts[b]] = i
		counts[b]++
	}
	return true
}

// keyByte flips the sign bit so that unsigned byte order matches signed
// identifier order.
func keyByte(gid GID, shift uint) uint8 {
	return uint8((uint64(gid) ^ (1 << 63)) >> shift)
}

func insertionSortIndexes(ids []GID, idx []int) {
	for i := 1; i < len(idx); i++ {
		cur := idx[i]
		j := i - 1
		for j >= 0 && ids[idx[j]] > ids[cur] {
			idx[j+1] = idx[j]
			j--
		}
		idx[j+1] = cur
	}
}
