// Package supervisor runs the concurrent per-chain pipeline spec.md
// §4.7/§5 describes: a block-poll task with adaptive pacing, a
// fixed-rate pending-poll task, fixed-rate Poll-triggered prediction
// tasks, and Block-triggered fanout tasks spawned per accepted block.
// Concurrency is bounded with golang.org/x/sync/errgroup and
// golang.org/x/sync/semaphore, the bounded-worker-pool combination
// mantlenetworkio-op-geth and shubhamdubey02-coreth reach for in their
// own sync pipelines rather than an unbounded goroutine-per-task
// fan-out.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/gasnetwork/agent/chain"
	"github.com/gasnetwork/agent/chaintypes"
	"github.com/gasnetwork/agent/config"
	"github.com/gasnetwork/agent/distribution"
	"github.com/gasnetwork/agent/fee"
	"github.com/gasnetwork/agent/log"
	"github.com/gasnetwork/agent/models"
	"github.com/gasnetwork/agent/opserver"
	"github.com/gasnetwork/agent/payload"
	"github.com/gasnetwork/agent/publish"
	"github.com/gasnetwork/agent/rpcclient"
	"github.com/gasnetwork/agent/signer"
	"github.com/gasnetwork/agent/store"
)

// staleFetchRetryDelay is how long the block-poll task waits before
// retrying when the RPC endpoint's "latest" block hasn't advanced.
const staleFetchRetryDelay = 250 * time.Millisecond

// AgentSpec is one resolved prediction agent: its model, its own
// signer (spec.md §3's per-agent signer_key), and the trigger that
// schedules it. Every AgentConfig in a chain's config.ChainConfig
// resolves to exactly one AgentSpec before reaching the Supervisor.
type AgentSpec struct {
	Kind    models.Kind
	Signer  *signer.Signer
	Trigger config.Trigger
}

// Supervisor runs one chain's full observation and prediction pipeline.
type Supervisor struct {
	key         chain.Key
	rpc         *rpcclient.Client
	pendingRPC  *rpcclient.Client
	pending     *config.PendingBlockDataSource
	store       *store.DistributionStore
	agents      []AgentSpec
	inFlightCap int64
	publisher   *publish.Client
	chainID     uint64
	blockTimeMS uint64
	ops         *opserver.Server

	log *log.Logger

	lastHeight uint64
}

// New builds a Supervisor for one chain, per spec.md §4.7 step 1: it
// constructs the RPC client's chain-id check here, fatally refusing to
// start if the endpoint serves a different chain than the one the
// operator configured. pendingRPC may be the same client as rpc (when
// pending_block_data_source shares json_rpc_url) or a distinct one
// pointed at its own url; it is only ever used when pending is non-nil.
// ops may be nil, in which case no metrics are recorded and no
// readiness check is registered.
func New(ctx context.Context, key chain.Key, rpc *rpcclient.Client, pendingRPC *rpcclient.Client, pending *config.PendingBlockDataSource, agents []AgentSpec, inFlightCap int, publisher *publish.Client, ops *opserver.Server) (*Supervisor, error) {
	chainID, err := key.ChainID()
	if err != nil {
		return nil, err
	}
	blockTimeMS, err := key.BlockTimeMS()
	if err != nil {
		return nil, err
	}

	observed, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("supervisor: %s: fetch chain id: %w", key, err)
	}
	if observed != chainID {
		return nil, fmt.Errorf("supervisor: %s: chain-id mismatch: rpc reports %d, configured for %d", key, observed, chainID)
	}

	s := &Supervisor{
		key:         key,
		rpc:         rpc,
		pendingRPC:  pendingRPC,
		pending:     pending,
		store:       store.New(),
		agents:      agents,
		inFlightCap: int64(inFlightCap),
		publisher:   publisher,
		chainID:     chainID,
		blockTimeMS: blockTimeMS,
		ops:         ops,
		log:         log.Default().Module("supervisor").With("chain", key.String()),
	}
	if ops != nil {
		ops.RegisterReadiness(key.String(), func() (bool, string) {
			if s.lastHeight == 0 {
				return false, "no block observed yet"
			}
			return true, ""
		})
	}
	return s, nil
}

// Run starts every task and blocks until ctx is cancelled or a task
// returns a fatal error. A single accepted-block observer fans out to
// Block-triggered prediction tasks; Poll-triggered tasks each run on
// their own agent-configured fixed-rate loop, per spec.md §4.7 step 5
// and §3's per-agent Trigger.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(s.inFlightCap)

	blockCh := make(chan chaintypes.Block, 1)

	g.Go(func() error { return s.runBlockPoll(ctx, blockCh) })
	g.Go(func() error { return s.runPendingPoll(ctx) })

	for _, agent := range s.agents {
		agent := agent
		if agent.Trigger.Kind == config.TriggerPoll {
			g.Go(func() error { return s.runPollTriggeredAgent(ctx, agent, sem) })
		}
	}

	g.Go(func() error { return s.runBlockFanout(ctx, blockCh, sem) })

	return g.Wait()
}

// runBlockPoll implements spec.md §5's adaptive pacing: it sleeps for
// roughly the chain's nominal block time minus the time already
// elapsed since the last observed block's timestamp, then re-fetches.
// A fetch that returns the same height as last time is "stale" and is
// retried after a short fixed delay instead of waiting a full interval.
func (s *Supervisor) runBlockPoll(ctx context.Context, out chan<- chaintypes.Block) error {
	nominal := time.Duration(s.blockTimeMS) * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		block, err := s.rpc.LatestBlock(ctx)
		if err != nil {
			s.log.Error("block fetch failed", "err", err)
			if !sleep(ctx, staleFetchRetryDelay) {
				return ctx.Err()
			}
			continue
		}

		if block.Number <= s.lastHeight && s.lastHeight != 0 {
			if !sleep(ctx, staleFetchRetryDelay) {
				return ctx.Err()
			}
			continue
		}

		if s.lastHeight != 0 && block.Number > s.lastHeight+1 {
			s.log.Warn("missed blocks", "from", s.lastHeight+1, "to", block.Number-1)
		}
		s.lastHeight = block.Number

		dist := distribution.Build(block.Transactions, block.BaseFeePerGas)
		s.store.IngestBlock(dist)
		if s.ops != nil {
			s.ops.ObserveBlock(s.key.String())
		}

		select {
		case out <- *block:
		default:
		}

		elapsed := time.Since(block.Timestamp)
		wait := nominal - elapsed
		if wait < 0 {
			wait = 0
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
}

// runPendingPoll refreshes the pending-pool distribution at the rate
// and against the endpoint pending_block_data_source configures,
// independent of block production.
func (s *Supervisor) runPendingPoll(ctx context.Context) error {
	if s.pending == nil {
		return nil
	}
	ticker := time.NewTicker(time.Duration(s.pending.PollRateMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			txs, err := s.pendingRPC.PendingTransactions(ctx, s.pending.Method, s.pending.Params)
			if err != nil {
				s.log.Error("pending fetch failed", "err", err)
				continue
			}
			dist := distribution.Build(txs, nil)
			s.store.IngestPending(dist)
		}
	}
}

// runPollTriggeredAgent runs a single agent's create_prediction on its
// own configured fixed-rate schedule.
func (s *Supervisor) runPollTriggeredAgent(ctx context.Context, agent AgentSpec, sem *semaphore.Weighted) error {
	ticker := time.NewTicker(time.Duration(agent.Trigger.RateMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			go func() {
				defer sem.Release(1)
				s.predictAndPublish(ctx, agent, s.lastHeight)
			}()
		}
	}
}

// runBlockFanout spawns a prediction task per Block-triggered agent
// each time a new block is observed.
func (s *Supervisor) runBlockFanout(ctx context.Context, blockCh <-chan chaintypes.Block, sem *semaphore.Weighted) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block := <-blockCh:
			for _, agent := range s.agents {
				if agent.Trigger.Kind != config.TriggerBlock {
					continue
				}
				agent := agent
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				go func() {
					defer sem.Release(1)
					s.predictAndPublish(ctx, agent, block.Number)
				}()
			}
		}
	}
}

// predictAndPublish runs one agent's model, signs its result with that
// agent's own signer, and publishes it. An InsufficientData error is
// routine and logged at debug; any other ModelError propagates as an
// error-level log, per spec.md §7.
func (s *Supervisor) predictAndPublish(ctx context.Context, agent AgentSpec, height uint64) {
	kind := agent.Kind
	model, err := models.For(kind)
	if err != nil {
		s.log.Error("no implementation for model", "model", kind.String(), "err", err)
		return
	}

	blocks, pending := s.store.Snapshot()
	result, err := model.Apply(blocks, pending, height)
	if err != nil {
		if models.IsInsufficientData(err) {
			s.log.Debug("insufficient data", "model", kind.String(), "err", err)
		} else {
			s.log.Error("model computation failed", "model", kind.String(), "err", err)
		}
		return
	}

	now := time.Now().UTC()
	priceWei := fee.GweiToWei(result.PriceGwei)

	p := payload.AgentPayload{
		SchemaVersion: payload.CurrentSchemaVersion,
		FromBlock:     result.FromBlock,
		Settlement:    result.Settlement,
		Timestamp:     now,
		System:        s.key.System,
		Network:       s.key.Network,
		PriceWei:      priceWei,
	}

	digest := payload.TypedDataDigest(p, s.chainID)
	sig, err := agent.Signer.Sign(digest)
	if err != nil {
		s.log.Error("signing failed", "model", kind.String(), "err", err)
		if s.ops != nil {
			s.ops.ObservePredictionFailed(s.key.String(), kind.String())
		}
		return
	}

	header, err := payload.EncodeHeader(payload.Header{Timestamp: now, ChainID: s.chainID, Height: result.FromBlock})
	if err != nil {
		s.log.Error("header encoding failed", "model", kind.String(), "err", err)
		if s.ops != nil {
			s.ops.ObservePredictionFailed(s.key.String(), kind.String())
		}
		return
	}
	record, err := payload.EncodeRecord(payload.Record{ValueWei: priceWei})
	if err != nil {
		s.log.Error("record encoding failed", "model", kind.String(), "err", err)
		if s.ops != nil {
			s.ops.ObservePredictionFailed(s.key.String(), kind.String())
		}
		return
	}
	networkDigest := payload.OracleDigest(header, record)
	networkSig, err := agent.Signer.Sign(networkDigest)
	if err != nil {
		s.log.Error("network signing failed", "model", kind.String(), "err", err)
		if s.ops != nil {
			s.ops.ObservePredictionFailed(s.key.String(), kind.String())
		}
		return
	}

	env := publish.Envelope{
		Payload:          p,
		Signature:        hexEncode(sig[:]),
		NetworkSignature: hexEncode(networkSig[:]),
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		s.log.Error("publish failed", "model", kind.String(), "err", err)
		if s.ops != nil {
			s.ops.ObservePredictionFailed(s.key.String(), kind.String())
		}
		return
	}
	if s.ops != nil {
		s.ops.ObservePredictionPublished(s.key.String(), kind.String())
	}
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 2+len(b)*2)
	out[0], out[1] = '0', 'x'
	for i, c := range b {
		out[2+i*2] = hexdigits[c>>4]
		out[3+i*2] = hexdigits[c&0xf]
	}
	return string(out)
}

// sleep waits for d or until ctx is cancelled, returning false in the
// latter case.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
