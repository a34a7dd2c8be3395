package node

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nknorg/powledger/block"
	"github.com/nknorg/powledger/chain"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/consensus"
	"github.com/nknorg/powledger/util/log"
	"github.com/nknorg/powledger/util/timer"
	"github.com/pborman/uuid"
)

// spread periodic resolution of nodes started together
const resolveIntervalDelta = 0.2

// LocalNode ties the ledger of this process to its identity and to the
// resolver that reconciles it with peers.
type LocalNode struct {
	id        string
	params    *config.Configuration
	ledger    *chain.Ledger
	resolver  *consensus.Resolver
	startTime time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewID returns a random node identity, a uuid4 without dashes.
func NewID() string {
	return strings.Replace(uuid.New(), "-", "", -1)
}

func NewLocalNode(params *config.Configuration) (*LocalNode, error) {
	ledger, err := chain.NewLedger(params)
	if err != nil {
		return nil, err
	}

	id := params.NodeID
	if len(id) == 0 {
		id = NewID()
	}

	ctx, cancel := context.WithCancel(context.Background())
	localNode := &LocalNode{
		id:        id,
		params:    params,
		ledger:    ledger,
		resolver:  consensus.NewResolver(params),
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	return localNode, nil
}

func (localNode *LocalNode) GetID() string {
	return localNode.id
}

func (localNode *LocalNode) GetLedger() *chain.Ledger {
	return localNode.ledger
}

func (localNode *LocalNode) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"id":         localNode.id,
		"length":     localNode.ledger.Length(),
		"peers":      localNode.ledger.Nodes(),
		"difficulty": localNode.ledger.Difficulty(),
		"uptime":     time.Since(localNode.startTime).Truncate(time.Second).Seconds(),
		"version":    config.Version,
	}
	return json.Marshal(out)
}

// withNodeContext returns a context that is also cancelled when the node
// stops.
func (localNode *LocalNode) withNodeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	if localNode.ctx.Err() != nil {
		cancel()
		return ctx, cancel
	}
	go func() {
		select {
		case <-localNode.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Mine mines the next block with this node as reward recipient.
func (localNode *LocalNode) Mine(ctx context.Context) (*block.Block, error) {
	ctx, cancel := localNode.withNodeContext(ctx)
	defer cancel()
	return localNode.ledger.Mine(ctx, localNode.id)
}

func (localNode *LocalNode) ResolveConflicts(ctx context.Context) (bool, []*block.Block, error) {
	ctx, cancel := localNode.withNodeContext(ctx)
	defer cancel()
	return localNode.resolver.ResolveConflicts(ctx, localNode.ledger)
}

// Start registers the seed peers and, if configured, resolves conflicts
// periodically until Stop.
func (localNode *LocalNode) Start() error {
	if len(localNode.params.SeedPeers) > 0 {
		nodes, err := localNode.ledger.RegisterNodes(localNode.params.SeedPeers)
		if err != nil {
			return err
		}
		log.Infof("Registered %d seed peers: %v", len(nodes), nodes)
	}

	if interval := localNode.params.ResolveIntervalDuration(); interval > 0 {
		localNode.wg.Add(1)
		go localNode.resolveLoop(interval)
	}

	log.Infof("Node %s started", localNode.id)
	return nil
}

func (localNode *LocalNode) resolveLoop(interval time.Duration) {
	defer localNode.wg.Done()

	t := time.NewTimer(timer.RandDuration(interval, resolveIntervalDelta))
	defer timer.StopTimer(t)

	for {
		select {
		case <-localNode.ctx.Done():
			return
		case <-t.C:
			replaced, _, err := localNode.ResolveConflicts(localNode.ctx)
			if err != nil {
				if localNode.ctx.Err() == nil {
					log.Warningf("Resolve conflicts error: %v", err)
				}
			} else if replaced {
				log.Infof("Local chain replaced, length is now %d", localNode.ledger.Length())
			}
			timer.ResetTimer(t, timer.RandDuration(interval, resolveIntervalDelta))
		}
	}
}

// Stop cancels in flight mining and resolution and waits for background work.
func (localNode *LocalNode) Stop() {
	localNode.stopOnce.Do(func() {
		localNode.cancel()
		localNode.wg.Wait()
		if err := localNode.ledger.Close(); err != nil {
			log.Errorf("Close ledger error: %v", err)
		}
	})
}
