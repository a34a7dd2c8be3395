package chain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/chain/db"
	"github.com/nknorg/powledger/chain/peers"
	"github.com/nknorg/powledger/chain/pool"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/transaction"
	"github.com/nknorg/powledger/util/log"
)

var (
	ErrStaleWork    = errors.New("chain head changed while mining, work is stale")
	ErrInvalidProof = errors.New("invalid proof of work")
)

// Work is what an external miner needs to search for the next proof.
type Work struct {
	Index uint64 // index of the current head block
	Hash  string // hash of the current head block
	Proof uint64 // proof of the current head block
}

// Ledger owns the chain, the pending txn pool and the peer set. A single lock
// serializes every mutation; readers always get copies.
type Ledger struct {
	mu sync.RWMutex

	store    *db.ChainStore
	txnPool  *pool.TxnPool
	peerSet  *peers.PeerSet
	head     *block.Block
	headHash string
	// closed and replaced on every head change
	headChanged chan struct{}

	difficulty        int
	blockTime         float64
	blockReward       float64
	maxMiningAttempts int
}

// NewLedger creates a ledger holding only a fresh genesis block.
func NewLedger(params *config.Configuration) (*Ledger, error) {
	store, err := db.NewChainStore()
	if err != nil {
		return nil, fmt.Errorf("open chain store: %w", err)
	}

	l := &Ledger{
		store:             store,
		txnPool:           pool.NewTxPool(),
		peerSet:           peers.NewPeerSet(),
		headChanged:       make(chan struct{}),
		difficulty:        params.Difficulty,
		blockTime:         params.BlockTime,
		blockReward:       params.BlockReward,
		maxMiningAttempts: params.MaxMiningAttempts,
	}
	if l.maxMiningAttempts <= 0 {
		l.maxMiningAttempts = 1
	}

	genesis := block.GenesisBlockInit()
	if err := store.Append(genesis); err != nil {
		store.Close()
		return nil, fmt.Errorf("store genesis block: %w", err)
	}
	l.setHead(genesis)

	return l, nil
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

// setHead must be called with the write lock held.
func (l *Ledger) setHead(b *block.Block) {
	l.head = b
	l.headHash = b.Hash()
	close(l.headChanged)
	l.headChanged = make(chan struct{})
}

// AddTransaction queues a txn for the next block and returns the index that
// block will have.
func (l *Ledger) AddTransaction(sender, recipient string, amount float64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txnPool.AppendTxnPool(transaction.NewTransaction(sender, recipient, amount))
	return l.store.Height() + 1
}

// ForgeBlock appends a block carrying every pending txn with the given proof
// and previous hash. Neither is checked.
func (l *Ledger) ForgeBlock(proof uint64, previousHash string) (*block.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.forgeBlock(proof, previousHash, nil)
}

// forgeBlock must be called with the write lock held. A non nil reward is
// appended after the pending txns. The pool is only cleared once the block is
// stored.
func (l *Ledger) forgeBlock(proof uint64, previousHash string, reward *transaction.Transaction) (*block.Block, error) {
	txns := l.txnPool.GetAllTransactions()
	if reward != nil {
		txns = append(txns, reward)
	}

	b := block.NewBlock(l.store.Height()+1, txns, proof, previousHash)
	if err := l.store.Append(b); err != nil {
		return nil, fmt.Errorf("append block %d: %w", b.Index, err)
	}
	l.txnPool.CleanSubmittedTransactions()
	l.setHead(b)

	log.Infof("Forged block %d with %d txns, proof %d", b.Index, len(b.Transactions), b.Proof)

	return b.Copy(), nil
}

func (l *Ledger) LastBlock() *block.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head.Copy()
}

func (l *Ledger) Length() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Height()
}

// Chain returns a copy of the whole chain, genesis first.
func (l *Ledger) Chain() ([]*block.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Blocks()
}

// PendingTransactions returns copies of the txns waiting for the next block.
func (l *Ledger) PendingTransactions() []*transaction.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.txnPool.GetAllTransactions()
}

// Work returns the current head so that a proof for the next block can be
// searched elsewhere. Work.Index is the value SubmitExternalWork expects back.
func (l *Ledger) Work() Work {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Work{
		Index: l.store.Height(),
		Hash:  l.headHash,
		Proof: l.head.Proof,
	}
}

// Difficulty is advisory only; proofs are always checked against
// pow.Difficulty.
func (l *Ledger) Difficulty() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.difficulty
}

func (l *Ledger) SetDifficulty(difficulty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.difficulty = difficulty
}

func (l *Ledger) BlockTime() float64 {
	return l.blockTime
}

func (l *Ledger) BlockReward() float64 {
	return l.blockReward
}

// ReplaceChain adopts candidate if it is valid and still strictly longer than
// the local chain at the time the lock is taken. The pending pool is kept.
func (l *Ledger) ReplaceChain(candidate []*block.Block) (bool, error) {
	if err := ValidateChain(candidate); err != nil {
		return false, err
	}
	candidate = block.CopyChain(candidate)

	l.mu.Lock()
	defer l.mu.Unlock()

	localLength := l.store.Height()
	if uint64(len(candidate)) <= localLength {
		log.Debugf("Candidate chain of length %d is not longer than local chain of length %d", len(candidate), localLength)
		return false, nil
	}

	if err := l.store.Replace(candidate); err != nil {
		return false, fmt.Errorf("replace chain: %w", err)
	}
	l.setHead(candidate[len(candidate)-1])

	log.Infof("Replaced local chain of length %d with chain of length %d", localLength, len(candidate))

	return true, nil
}

// RegisterNodes adds peers all or nothing and returns the full peer list.
func (l *Ledger) RegisterNodes(addresses []string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.peerSet.Add(addresses); err != nil {
		return nil, err
	}
	return l.peerSet.List(), nil
}

func (l *Ledger) Nodes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.peerSet.List()
}
