package chain

import (
	"context"

	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/pow"
	"github.com/nknorg/powledger/transaction"
	"github.com/nknorg/powledger/util/log"
)

// Mine searches a proof for the next block without holding the lock, then
// forges the block with a reward to rewardAddress as its last txn. If the head
// changes during the search the round is abandoned and retried against the new
// head, at most maxMiningAttempts times.
func (l *Ledger) Mine(ctx context.Context, rewardAddress string) (*block.Block, error) {
	for attempt := 1; attempt <= l.maxMiningAttempts; attempt++ {
		l.mu.RLock()
		lastProof := l.head.Proof
		lastHash := l.headHash
		headChanged := l.headChanged
		l.mu.RUnlock()

		proof, err := mineUntilChanged(ctx, headChanged, lastProof, lastHash)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debugf("Head changed while mining on %s, attempt %d", lastHash, attempt)
			continue
		}

		l.mu.Lock()
		if l.headHash != lastHash {
			l.mu.Unlock()
			log.Debugf("Head changed before forging on %s, attempt %d", lastHash, attempt)
			continue
		}
		b, err := l.forgeBlock(proof, lastHash, transaction.NewCoinbase(rewardAddress, l.blockReward))
		l.mu.Unlock()
		return b, err
	}

	log.Warningf("Mining gave up after %d attempts", l.maxMiningAttempts)
	return nil, ErrStaleWork
}

// mineUntilChanged runs the proof search until it succeeds, ctx is done or
// headChanged is closed.
func mineUntilChanged(ctx context.Context, headChanged <-chan struct{}, lastProof uint64, lastHash string) (uint64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-headChanged:
			cancel()
		case <-ctx.Done():
		}
	}()

	return pow.MineContext(ctx, lastProof, lastHash)
}

// SubmitExternalWork forges the next block with a proof found elsewhere. The
// proof is only accepted for claimedIndex equal to the current length, the
// value handed out by Work. Otherwise nothing happens and ok is false.
func (l *Ledger) SubmitExternalWork(claimedIndex, proof uint64, rewardAddress string) (*block.Block, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if claimedIndex != l.store.Height() {
		log.Debugf("Ignore work for index %d, current index is %d", claimedIndex, l.store.Height())
		return nil, false, nil
	}

	if !pow.ValidProof(l.head.Proof, proof, l.headHash) {
		return nil, false, ErrInvalidProof
	}

	b, err := l.forgeBlock(proof, l.headHash, transaction.NewCoinbase(rewardAddress, l.blockReward))
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
