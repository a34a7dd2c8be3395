package consensus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/chain"
	"github.com/nknorg/powledger/config"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Configuration {
	params := config.DefaultConfiguration()
	params.PeerFetchTimeout = 2
	params.PeerFetchRetries = 0
	return params
}

func newTestLedger(t *testing.T, length int) *chain.Ledger {
	l, err := chain.NewLedger(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	for l.Length() < uint64(length) {
		l.AddTransaction("alice", "bob", 1)
		_, err := l.Mine(context.Background(), "miner")
		require.NoError(t, err)
	}
	return l
}

func ledgerChain(t *testing.T, l *chain.Ledger) []*block.Block {
	blocks, err := l.Chain()
	require.NoError(t, err)
	return blocks
}

// servePeer serves blocks on /chain, reporting length.
func servePeer(t *testing.T, blocks []*block.Block, length uint64) string {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&common.ChainResponse{Chain: blocks, Length: length})
	}))
	t.Cleanup(ts.Close)
	return ts.Listener.Addr().String()
}

func servePeerLedger(t *testing.T, length int) (string, []*block.Block) {
	blocks := ledgerChain(t, newTestLedger(t, length))
	return servePeer(t, blocks, uint64(len(blocks))), blocks
}

func unreachablePeer() string {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.Listener.Addr().String()
	ts.Close()
	return addr
}

func hashes(blocks []*block.Block) []string {
	h := make([]string, len(blocks))
	for i, b := range blocks {
		h[i] = b.Hash()
	}
	return h
}

// go test -v -run=TestResolveAdoptsLongestValid
func TestResolveAdoptsLongestValid(t *testing.T) {
	local := newTestLedger(t, 2)

	peer3, _ := servePeerLedger(t, 3)
	peer5, chain5 := servePeerLedger(t, 5)

	invalid := block.CopyChain(ledgerChain(t, newTestLedger(t, 4)))
	invalid[2].PreviousHash = invalid[0].Hash()
	peerInvalid := servePeer(t, invalid, 4)

	// claims more blocks than it sends
	_, chain6 := servePeerLedger(t, 6)
	peerLiar := servePeer(t, chain6[:5], 6)

	_, err := local.RegisterNodes([]string{peer3, unreachablePeer(), peerInvalid, peer5, peerLiar})
	require.NoError(t, err)

	r := NewResolver(testConfig())
	replaced, blocks, err := r.ResolveConflicts(context.Background(), local)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, hashes(chain5), hashes(blocks))
	require.Equal(t, uint64(5), local.Length())
	require.True(t, chain.IsValid(ledgerChain(t, local)))

	// running again changes nothing
	replaced, blocks, err = r.ResolveConflicts(context.Background(), local)
	require.NoError(t, err)
	require.False(t, replaced)
	require.Equal(t, hashes(chain5), hashes(blocks))
}

// go test -v -run=TestResolveKeepsLocalChain
func TestResolveKeepsLocalChain(t *testing.T) {
	local := newTestLedger(t, 4)
	localChain := ledgerChain(t, local)

	peer2, _ := servePeerLedger(t, 2)
	peer4, _ := servePeerLedger(t, 4)
	_, err := local.RegisterNodes([]string{peer2, peer4})
	require.NoError(t, err)

	replaced, blocks, err := NewResolver(testConfig()).ResolveConflicts(context.Background(), local)
	require.NoError(t, err)
	require.False(t, replaced)
	require.Equal(t, hashes(localChain), hashes(blocks))
}

// go test -v -run=TestResolveNoPeers
func TestResolveNoPeers(t *testing.T) {
	local := newTestLedger(t, 1)
	replaced, blocks, err := NewResolver(testConfig()).ResolveConflicts(context.Background(), local)
	require.NoError(t, err)
	require.False(t, replaced)
	require.Len(t, blocks, 1)
}

// go test -v -run=TestFetchCandidatesOrder
func TestFetchCandidatesOrder(t *testing.T) {
	var peers []string
	for i := 1; i <= 4; i++ {
		p, _ := servePeerLedger(t, i)
		peers = append(peers, p)
	}
	peers = append(peers, unreachablePeer())

	params := testConfig()
	params.MaxResolveWorkers = 2
	r := NewResolver(params)
	candidates, err := r.FetchCandidates(context.Background(), peers, 2)
	require.NoError(t, err)
	require.Len(t, candidates, 5)
	for i := 0; i < 4; i++ {
		require.Equal(t, peers[i], candidates[i].Peer)
		require.NoError(t, candidates[i].Err)
		require.Equal(t, uint64(i+1), candidates[i].Length)
		// only chains longer than the local one are validated
		require.Equal(t, i+1 > 2, candidates[i].Valid)
	}
	require.Error(t, candidates[4].Err)
}

// go test -v -run=TestFetchTimeout
func TestFetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer ts.Close()

	params := testConfig()
	params.PeerFetchTimeout = 1
	start := time.Now()
	candidates, err := NewResolver(params).FetchCandidates(context.Background(), []string{ts.Listener.Addr().String()}, 1)
	require.NoError(t, err)
	require.Error(t, candidates[0].Err)
	require.Less(t, time.Since(start), 4*time.Second)
}

// go test -v -run=TestSelectLongest
func TestSelectLongest(t *testing.T) {
	mk := func(peer string, length, blocks int, valid bool) *Candidate {
		return &Candidate{Peer: peer, Length: uint64(length), Chain: make([]*block.Block, blocks), Valid: valid}
	}

	require.Nil(t, SelectLongest(3, nil))
	require.Nil(t, SelectLongest(3, []*Candidate{mk("a", 3, 3, true), mk("b", 2, 2, true)}))

	best := SelectLongest(3, []*Candidate{mk("a", 4, 4, true), mk("b", 5, 5, false), mk("c", 5, 5, true), mk("d", 5, 5, true)})
	require.Equal(t, "c", best.Peer)

	best = SelectLongest(1, []*Candidate{nil, mk("a", 9, 8, true), {Peer: "b", Err: context.DeadlineExceeded}, mk("c", 2, 2, true)})
	require.Equal(t, "c", best.Peer)
}
