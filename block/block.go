package block

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/nknorg/powledger/transaction"
)

const (
	// GenesisPreviousHash is the sentinel previous hash of the genesis block,
	// which has no predecessor to hash.
	GenesisPreviousHash = "1"
	// GenesisProof is the fixed proof of the genesis block.
	GenesisProof = 100
	// GenesisIndex is the index of the first block of every chain.
	GenesisIndex = 1
)

// Block is an immutable record of transactions chained to its predecessor by
// hash. Fields are declared in lexicographic order of their json keys, which
// makes encoding/json produce the canonical form fed to Hash.
type Block struct {
	Index        uint64                     `json:"index"`
	PreviousHash string                     `json:"previous_hash"`
	Proof        uint64                     `json:"proof"`
	Timestamp    float64                    `json:"timestamp"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

// blockAlias drops the methods of Block so MarshalJSON does not recurse.
type blockAlias Block

func NewBlock(index uint64, txns []*transaction.Transaction, proof uint64, previousHash string) *Block {
	return &Block{
		Index:        index,
		Timestamp:    Now(),
		Transactions: txns,
		Proof:        proof,
		PreviousHash: previousHash,
	}
}

// GenesisBlockInit creates the first block of a chain.
func GenesisBlockInit() *Block {
	return NewBlock(GenesisIndex, nil, GenesisProof, GenesisPreviousHash)
}

// Now returns the current time as real-valued seconds since epoch.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// MarshalJSON always encodes the transaction list as an array, so a block
// built with a nil list and one decoded from [] have the same bytes.
func (b *Block) MarshalJSON() ([]byte, error) {
	a := blockAlias(*b)
	if a.Transactions == nil {
		a.Transactions = []*transaction.Transaction{}
	}
	return json.Marshal(&a)
}

// Marshal returns the canonical serialization of the block.
func (b *Block) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

func (b *Block) Unmarshal(buf []byte) error {
	return json.Unmarshal(buf, b)
}

// Hash returns the hex encoded SHA-256 of the canonical serialization.
func (b *Block) Hash() string {
	buf, err := b.Marshal()
	if err != nil {
		// only NaN or infinite amounts fail to encode
		return ""
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Copy returns a deep copy so callers can never alias ledger state.
func (b *Block) Copy() *Block {
	if b == nil {
		return nil
	}
	c := *b
	if b.Transactions != nil {
		c.Transactions = make([]*transaction.Transaction, len(b.Transactions))
		for i, txn := range b.Transactions {
			c.Transactions[i] = txn.Copy()
		}
	}
	return &c
}

func (b *Block) IsGenesis() bool {
	return b.Index == GenesisIndex && b.PreviousHash == GenesisPreviousHash
}

// CopyChain deep copies a chain.
func CopyChain(blocks []*Block) []*Block {
	c := make([]*Block, len(blocks))
	for i, b := range blocks {
		c[i] = b.Copy()
	}
	return c
}
