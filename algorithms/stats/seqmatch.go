package stats

// MatchingBlock describes a maximal run of identical elements shared by two
// sequences: a[AStart:AStart+Length] == b[BStart:BStart+Length].
type MatchingBlock struct {
	AStart int
	BStart int
	Length int
}

// SequenceRatio measures the similarity of two sequences as
// 2*M / (len(a)+len(b)), where M is the total length of all matching blocks.
// The result is in [0, 1]. Two empty sequences are identical (ratio 1).
func SequenceRatio[T comparable](a, b []T) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	matched := 0
	for _, block := range MatchingBlocks(a, b) {
		matched += block.Length
	}

	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// MatchingBlocks finds all maximal matching blocks between two sequences.
// Blocks are discovered by repeatedly locating the longest common contiguous
// block (ties broken toward the earliest position in a, then in b) and
// recursing into the unmatched regions on either side. Blocks are returned
// ordered by position.
func MatchingBlocks[T comparable](a, b []T) []MatchingBlock {
	// Index element positions in b for O(1) candidate lookup
	b2j := make(map[T][]int, len(b))
	for j, elem := range b {
		b2j[elem] = append(b2j[elem], j)
	}

	type span struct {
		aLo, aHi int
		bLo, bHi int
	}

	var blocks []MatchingBlock
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		best := findLongestMatch(a, b2j, s.aLo, s.aHi, s.bLo, s.bHi)
		if best.Length == 0 {
			continue
		}

		blocks = append(blocks, best)

		if s.aLo < best.AStart && s.bLo < best.BStart {
			queue = append(queue, span{s.aLo, best.AStart, s.bLo, best.BStart})
		}
		if best.AStart+best.Length < s.aHi && best.BStart+best.Length < s.bHi {
			queue = append(queue, span{best.AStart + best.Length, s.aHi, best.BStart + best.Length, s.bHi})
		}
	}

	sortBlocks(blocks)
	return blocks
}

// findLongestMatch locates the longest block where a[aLo:aHi] and b[bLo:bHi]
// share a contiguous run. Of equally long runs it prefers the one starting
// earliest in a, then earliest in b.
func findLongestMatch[T comparable](a []T, b2j map[T][]int, aLo, aHi, bLo, bHi int) MatchingBlock {
	best := MatchingBlock{AStart: aLo, BStart: bLo, Length: 0}

	// j2len[j] holds the length of the longest run ending at a[i-1], b[j-1]
	j2len := make(map[int]int)

	for i := aLo; i < aHi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < bLo {
				continue
			}
			if j >= bHi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.Length {
				best = MatchingBlock{AStart: i - k + 1, BStart: j - k + 1, Length: k}
			}
		}
		j2len = newJ2len
	}

	return best
}

// sortBlocks orders blocks by AStart, then BStart. Insertion sort keeps it
// allocation-free; block counts are small in practice.
func sortBlocks(blocks []MatchingBlock) {
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0; j-- {
			prev, cur := blocks[j-1], blocks[j]
			if cur.AStart < prev.AStart || (cur.AStart == prev.AStart && cur.BStart < prev.BStart) {
				blocks[j-1], blocks[j] = cur, prev
			} else {
				break
			}
		}
	}
}
