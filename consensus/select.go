package consensus

import (
	"github.com/nknorg/powledger/block"
)

// Candidate is the chain one peer answered with.
type Candidate struct {
	Peer   string
	Length uint64 // length the peer reported
	Chain  []*block.Block
	Valid  bool
	Err    error // set when the peer could not be fetched
}

// SelectLongest walks candidates in order and returns the one a node with
// localLength blocks should adopt, or nil. A candidate beats the best so far
// only if its reported length is strictly greater, it matches the number of
// blocks actually sent and the chain is valid. On equal length the earlier
// candidate wins.
func SelectLongest(localLength uint64, candidates []*Candidate) *Candidate {
	var best *Candidate
	maxLength := localLength
	for _, c := range candidates {
		if c == nil || c.Err != nil {
			continue
		}
		if c.Length > maxLength && c.Length == uint64(len(c.Chain)) && c.Valid {
			maxLength = c.Length
			best = c
		}
	}
	return best
}
