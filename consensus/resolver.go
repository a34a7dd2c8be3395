package consensus

import (
	"context"
	"fmt"
	"time"

	"github.com/nknorg/consequential"
	"github.com/nknorg/powledger/api/client"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/chain"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/util/log"
)

const (
	maxResolveWorkerFails      = 1
	resolveWorkerStartInterval = 10 * time.Millisecond
)

// Ledger is the part of chain.Ledger the resolver needs.
type Ledger interface {
	Length() uint64
	Nodes() []string
	Chain() ([]*block.Block, error)
	ReplaceChain(candidate []*block.Block) (bool, error)
}

// ChainFetcher fetches the chain of one peer.
type ChainFetcher interface {
	GetChain(ctx context.Context) (*common.ChainResponse, error)
}

// Resolver reconciles the local chain with peers using the longest valid
// chain rule.
type Resolver struct {
	fetchTimeout time.Duration
	maxWorkers   uint32
	newFetcher   func(peer string) ChainFetcher
}

func NewResolver(params *config.Configuration) *Resolver {
	retries := uint64(params.PeerFetchRetries)
	return &Resolver{
		fetchTimeout: params.PeerFetchTimeoutDuration(),
		maxWorkers:   params.MaxResolveWorkers,
		newFetcher: func(peer string) ChainFetcher {
			return client.NewClient(peer, client.WithMaxRetries(retries))
		},
	}
}

// fetchCandidate never fails: an unreachable peer gives a candidate with Err
// set. Validation is skipped for chains that could not win anyway.
func (r *Resolver) fetchCandidate(ctx context.Context, peer string, localLength uint64) *Candidate {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	c := &Candidate{Peer: peer}
	resp, err := r.newFetcher(peer).GetChain(ctx)
	if err != nil {
		c.Err = err
		log.Warningf("Fetch chain from %s error: %v", peer, err)
		return c
	}

	c.Length = resp.Length
	c.Chain = resp.Chain
	if c.Length <= localLength || c.Length != uint64(len(c.Chain)) {
		log.Debugf("Skip chain from %s: reported length %d, %d blocks, local length %d", peer, c.Length, len(c.Chain), localLength)
		return c
	}

	if err := chain.ValidateChain(c.Chain); err != nil {
		log.Debugf("Discard invalid chain from %s: %v", peer, err)
		return c
	}
	c.Valid = true

	return c
}

// FetchCandidates fetches the chain of every peer on a bounded worker pool
// and returns the results in peer order.
func (r *Resolver) FetchCandidates(ctx context.Context, peers []string, localLength uint64) ([]*Candidate, error) {
	if len(peers) == 0 {
		return nil, nil
	}

	numWorkers := r.maxWorkers
	if numWorkers == 0 || numWorkers > uint32(len(peers)) {
		numWorkers = uint32(len(peers))
	}

	candidates := make([]*Candidate, len(peers))

	fetch := func(ctx context.Context, workerID, jobID uint32) (interface{}, bool) {
		return r.fetchCandidate(ctx, peers[jobID], localLength), true
	}

	save := func(ctx context.Context, jobID uint32, result interface{}) bool {
		c, ok := result.(*Candidate)
		if !ok {
			log.Warningf("Convert candidate of %s error", peers[jobID])
			return true
		}
		candidates[jobID] = c
		return true
	}

	cs, err := consequential.NewConSequential(&consequential.Config{
		StartJobID:          0,
		EndJobID:            uint32(len(peers)) - 1,
		JobBufSize:          uint32(len(peers)),
		WorkerPoolSize:      numWorkers,
		MaxWorkerFails:      maxResolveWorkerFails,
		WorkerStartInterval: resolveWorkerStartInterval,
		RunJob:              fetch,
		FinishJob:           save,
	})
	if err != nil {
		return nil, err
	}

	err = cs.Start(ctx)
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// ResolveConflicts replaces the local chain with the longest valid chain
// among all peers if it is longer than the local one. It returns whether the
// chain was replaced and the local chain afterwards.
func (r *Resolver) ResolveConflicts(ctx context.Context, ledger Ledger) (bool, []*block.Block, error) {
	localLength := ledger.Length()
	peers := ledger.Nodes()

	candidates, err := r.FetchCandidates(ctx, peers, localLength)
	if err != nil {
		return false, nil, fmt.Errorf("fetch peer chains: %w", err)
	}

	replaced := false
	if best := SelectLongest(localLength, candidates); best != nil {
		replaced, err = ledger.ReplaceChain(best.Chain)
		if err != nil {
			return false, nil, fmt.Errorf("replace chain with chain from %s: %w", best.Peer, err)
		}
		if replaced {
			log.Infof("Adopted chain of length %d from %s", best.Length, best.Peer)
		} else {
			log.Infof("Local chain grew past chain from %s while resolving", best.Peer)
		}
	}

	blocks, err := ledger.Chain()
	if err != nil {
		return false, nil, err
	}
	return replaced, blocks, nil
}
