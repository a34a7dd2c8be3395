package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/pow"
	"github.com/nknorg/powledger/transaction"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	l, err := NewLedger(config.DefaultConfiguration())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func mineBlocks(t *testing.T, l *Ledger, n int) {
	for i := 0; i < n; i++ {
		_, err := l.Mine(context.Background(), "miner")
		require.NoError(t, err)
	}
}

func getChain(t *testing.T, l *Ledger) []*block.Block {
	blocks, err := l.Chain()
	require.NoError(t, err)
	return blocks
}

// go test -v -run=TestGenesis
func TestGenesis(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, uint64(1), l.Length())

	blocks := getChain(t, l)
	require.Len(t, blocks, 1)
	g := blocks[0]
	require.Equal(t, uint64(1), g.Index)
	require.Equal(t, block.GenesisPreviousHash, g.PreviousHash)
	require.Equal(t, uint64(block.GenesisProof), g.Proof)
	require.Empty(t, g.Transactions)
	require.True(t, IsValid(blocks))
}

// go test -v -run=TestAddTransaction
func TestAddTransaction(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, uint64(2), l.AddTransaction("alice", "bob", 5))
	require.Equal(t, uint64(2), l.AddTransaction("bob", "carol", 2.5))
	require.Len(t, l.PendingTransactions(), 2)

	mineBlocks(t, l, 1)
	require.Empty(t, l.PendingTransactions())
	require.Equal(t, uint64(3), l.AddTransaction("carol", "alice", 1))
}

// go test -v -run=TestForgeBlock
func TestForgeBlock(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction("alice", "bob", 5)

	prevLength := l.Length()
	last := l.LastBlock()
	proof := pow.Mine(last.Proof, last.Hash())

	b, err := l.ForgeBlock(proof, last.Hash())
	require.NoError(t, err)
	require.Equal(t, prevLength+1, b.Index)
	require.Equal(t, prevLength+1, l.Length())
	require.Equal(t, last.Hash(), b.PreviousHash)
	require.Len(t, b.Transactions, 1)
	require.Empty(t, l.PendingTransactions())
	require.Equal(t, b.Hash(), l.LastBlock().Hash())
	require.True(t, IsValid(getChain(t, l)))
}

// go test -v -run=TestMineRewardIsLast
func TestMineRewardIsLast(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction("alice", "bob", 5)
	l.AddTransaction("bob", "carol", 2)

	b, err := l.Mine(context.Background(), "node-1")
	require.NoError(t, err)
	require.Equal(t, uint64(2), b.Index)
	require.Len(t, b.Transactions, 3)
	require.Equal(t, "alice", b.Transactions[0].Sender)
	require.Equal(t, "bob", b.Transactions[1].Sender)

	reward := b.Transactions[2]
	require.Equal(t, transaction.CoinbaseSender, reward.Sender)
	require.Equal(t, "node-1", reward.Recipient)
	require.Equal(t, config.DefaultConfiguration().BlockReward, reward.Amount)

	coinbases := 0
	for _, txn := range b.Transactions {
		if txn.IsCoinbase() {
			coinbases++
		}
	}
	require.Equal(t, 1, coinbases)

	mineBlocks(t, l, 2)
	require.Equal(t, uint64(4), l.Length())
	require.True(t, IsValid(getChain(t, l)))
}

// go test -v -run=TestMineCancelled
func TestMineCancelled(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction("alice", "bob", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Mine(ctx, "miner")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, uint64(1), l.Length())
	require.Len(t, l.PendingTransactions(), 1)
}

// go test -v -run=TestConcurrentMining
func TestConcurrentMining(t *testing.T) {
	l := newTestLedger(t)

	const miners = 4
	var wg sync.WaitGroup
	var mu sync.Mutex
	forged := 0
	var errs []error
	for i := 0; i < miners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				l.AddTransaction("alice", "bob", 1)
				_, err := l.Mine(context.Background(), "miner")
				mu.Lock()
				if err == nil {
					forged++
				} else if !errors.Is(err, ErrStaleWork) {
					errs = append(errs, err)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Greater(t, forged, 0)
	blocks := getChain(t, l)
	require.Equal(t, uint64(forged+1), l.Length())
	require.NoError(t, ValidateChain(blocks))
	for i, b := range blocks {
		require.Equal(t, uint64(i+1), b.Index)
	}
}

// go test -v -run=TestSubmitExternalWork
func TestSubmitExternalWork(t *testing.T) {
	l := newTestLedger(t)
	work := l.Work()
	require.Equal(t, uint64(1), work.Index)
	require.Equal(t, l.LastBlock().Hash(), work.Hash)
	require.Equal(t, uint64(block.GenesisProof), work.Proof)

	proof := pow.Mine(work.Proof, work.Hash)

	// wrong index is a no-op
	b, ok, err := l.SubmitExternalWork(work.Index+1, proof, "remote")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, b)
	require.Equal(t, uint64(1), l.Length())

	// right index, bad proof
	bad := proof + 1
	for pow.ValidProof(work.Proof, bad, work.Hash) {
		bad++
	}
	_, ok, err = l.SubmitExternalWork(work.Index, bad, "remote")
	require.ErrorIs(t, err, ErrInvalidProof)
	require.False(t, ok)
	require.Equal(t, uint64(1), l.Length())

	l.AddTransaction("alice", "bob", 5)
	b, ok, err = l.SubmitExternalWork(work.Index, proof, "remote")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), b.Index)
	require.Len(t, b.Transactions, 2)
	require.Equal(t, "remote", b.Transactions[1].Recipient)
	require.True(t, b.Transactions[1].IsCoinbase())
	require.True(t, IsValid(getChain(t, l)))

	// the same work again is now stale
	_, ok, err = l.SubmitExternalWork(work.Index, proof, "remote")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint64(2), l.Work().Index)
}

// go test -v -run=TestSnapshotsAreCopies
func TestSnapshotsAreCopies(t *testing.T) {
	l := newTestLedger(t)
	l.AddTransaction("alice", "bob", 5)
	mineBlocks(t, l, 1)

	last := l.LastBlock()
	hash := last.Hash()
	last.Proof = 0
	last.Transactions[0].Amount = 1000
	require.Equal(t, hash, l.LastBlock().Hash())

	blocks := getChain(t, l)
	blocks[1].Transactions = nil
	blocks[0].PreviousHash = "tampered"
	require.True(t, IsValid(getChain(t, l)))

	pending := l.PendingTransactions()
	require.Empty(t, pending)
}

// go test -v -run=TestReplaceChain
func TestReplaceChain(t *testing.T) {
	local := newTestLedger(t)
	mineBlocks(t, local, 1)
	local.AddTransaction("alice", "bob", 5)

	remote := newTestLedger(t)
	mineBlocks(t, remote, 3)
	remoteChain := getChain(t, remote)

	// not longer
	replaced, err := local.ReplaceChain(remoteChain[:2])
	require.NoError(t, err)
	require.False(t, replaced)

	// invalid
	tampered := block.CopyChain(remoteChain)
	tampered[2].PreviousHash = "00000bad"
	replaced, err = local.ReplaceChain(tampered)
	require.ErrorIs(t, err, ErrPrevHashMismatch)
	require.False(t, replaced)
	require.Equal(t, uint64(2), local.Length())

	replaced, err = local.ReplaceChain(remoteChain)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, uint64(4), local.Length())
	require.Equal(t, remoteChain[3].Hash(), local.LastBlock().Hash())
	require.Equal(t, remoteChain[3].Hash(), local.Work().Hash)
	// pending txns survive a replacement
	require.Len(t, local.PendingTransactions(), 1)

	// mining continues on the adopted chain
	mineBlocks(t, local, 1)
	require.True(t, IsValid(getChain(t, local)))
}

// go test -v -run=TestRegisterNodes
func TestRegisterNodes(t *testing.T) {
	l := newTestLedger(t)
	nodes, err := l.RegisterNodes([]string{"http://a:5000", "b:5000", "a:5000"})
	require.NoError(t, err)
	require.Equal(t, []string{"a:5000", "b:5000"}, nodes)

	_, err = l.RegisterNodes([]string{"c:5000", "http://:1"})
	require.Error(t, err)
	require.Equal(t, []string{"a:5000", "b:5000"}, l.Nodes())
}

// go test -v -run=TestDifficulty
func TestDifficulty(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, 4, l.Difficulty())
	require.Equal(t, float64(10), l.BlockTime())

	l.SetDifficulty(6)
	require.Equal(t, 6, l.Difficulty())

	// advisory only, proofs still use the fixed rule
	mineBlocks(t, l, 1)
	require.True(t, IsValid(getChain(t, l)))
}
