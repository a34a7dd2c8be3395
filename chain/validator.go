package chain

import (
	"errors"
	"fmt"

	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/pow"
)

var (
	ErrEmptyChain       = errors.New("chain has no blocks")
	ErrNilBlock         = errors.New("chain has a nil block")
	ErrPrevHashMismatch = errors.New("previous hash mismatch")
)

// ValidateChain returns the first violation of hash linkage or proof of work
// found walking from the second block on. Only those two rules are checked.
func ValidateChain(blocks []*block.Block) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}
	for i, b := range blocks {
		if b == nil {
			return fmt.Errorf("%w at position %d", ErrNilBlock, i)
		}
	}

	lastBlock := blocks[0]
	for i := 1; i < len(blocks); i++ {
		b := blocks[i]
		lastHash := lastBlock.Hash()
		if b.PreviousHash != lastHash {
			return fmt.Errorf("%w at position %d: have %s, expect %s", ErrPrevHashMismatch, i, b.PreviousHash, lastHash)
		}
		if !pow.ValidProof(lastBlock.Proof, b.Proof, lastHash) {
			return fmt.Errorf("%w at position %d: proof %d", ErrInvalidProof, i, b.Proof)
		}
		lastBlock = b
	}

	return nil
}

func IsValid(blocks []*block.Block) bool {
	return ValidateChain(blocks) == nil
}
