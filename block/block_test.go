package block

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nknorg/powledger/transaction"
	"github.com/stretchr/testify/require"
)

func testBlock() *Block {
	return &Block{
		Index:     2,
		Timestamp: 1700000000.123456,
		Transactions: []*transaction.Transaction{
			transaction.NewTransaction("alice", "bob", 5),
			transaction.NewCoinbase("miner", 0.01),
		},
		Proof:        35293,
		PreviousHash: "0000abcd",
	}
}

// go test -v -run=TestHashDeterministic
func TestHashDeterministic(t *testing.T) {
	b := testBlock()
	require.Equal(t, b.Hash(), b.Hash())
	require.Len(t, b.Hash(), 64)

	// same values, populated in a different order
	other := &Block{}
	other.PreviousHash = "0000abcd"
	other.Proof = 35293
	other.Transactions = append(other.Transactions, &transaction.Transaction{Recipient: "bob", Amount: 5, Sender: "alice"})
	other.Transactions = append(other.Transactions, &transaction.Transaction{Amount: 0.01, Sender: "0", Recipient: "miner"})
	other.Timestamp = 1700000000.123456
	other.Index = 2
	require.Equal(t, b.Hash(), other.Hash())

	other.Proof++
	require.NotEqual(t, b.Hash(), other.Hash())
}

// go test -v -run=TestHashSurvivesWireRoundTrip
func TestHashSurvivesWireRoundTrip(t *testing.T) {
	b := testBlock()
	buf, err := json.Marshal(b)
	require.NoError(t, err)

	decoded := &Block{}
	require.NoError(t, decoded.Unmarshal(buf))
	require.Equal(t, b.Hash(), decoded.Hash())
}

// go test -v -run=TestHashEmptyTransactions
func TestHashEmptyTransactions(t *testing.T) {
	withNil := &Block{Index: 1, Timestamp: 1, Proof: GenesisProof, PreviousHash: GenesisPreviousHash}
	withEmpty := withNil.Copy()
	withEmpty.Transactions = []*transaction.Transaction{}
	require.Equal(t, withNil.Hash(), withEmpty.Hash())

	buf, err := withNil.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(buf), `"transactions":[]`)
}

// go test -v -run=TestCanonicalKeyOrder
func TestCanonicalKeyOrder(t *testing.T) {
	buf, err := testBlock().Marshal()
	require.NoError(t, err)

	s := string(buf)
	keys := []string{`"index"`, `"previous_hash"`, `"proof"`, `"timestamp"`, `"transactions"`}
	last := -1
	for _, k := range keys {
		i := strings.Index(s, k)
		require.Greater(t, i, last, "key %s out of order in %s", k, s)
		last = i
	}
	require.Contains(t, s, `{"amount":5,"recipient":"bob","sender":"alice"}`)
}

// go test -v -run=TestCopyIsDeep
func TestCopyIsDeep(t *testing.T) {
	b := testBlock()
	hash := b.Hash()

	c := b.Copy()
	c.Transactions[0].Amount = 1000
	c.Transactions = append(c.Transactions, transaction.NewTransaction("x", "y", 1))
	c.Proof = 1

	require.Equal(t, hash, b.Hash())
	require.Len(t, b.Transactions, 2)
}

// go test -v -run=TestGenesisBlockInit
func TestGenesisBlockInit(t *testing.T) {
	g := GenesisBlockInit()
	require.True(t, g.IsGenesis())
	require.Equal(t, uint64(GenesisProof), g.Proof)
	require.Equal(t, GenesisPreviousHash, g.PreviousHash)
	require.Empty(t, g.Transactions)
	require.NotZero(t, g.Timestamp)
}
