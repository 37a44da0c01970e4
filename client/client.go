// Package client fetches randomness rounds from untrusted HTTP relays and
// returns them only after cryptographic verification against a trusted chain
// identity.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/drandlite/drandlite/build"
	"github.com/drandlite/drandlite/chain"
	"github.com/drandlite/drandlite/common"
	"github.com/drandlite/drandlite/config"
	"github.com/drandlite/drandlite/crypto"
	"github.com/drandlite/drandlite/lib/retry"
)

var log = logging.Logger("beacon-client")

// DefaultCacheSize is the number of verified beacons kept in memory.
const DefaultCacheSize = 1024

// Client fetches rounds through a RelayPool, decodes them and verifies them
// against the chain identity it was constructed with. It holds no mutable
// shared state beyond the verified-beacon cache and is safe for concurrent
// use.
type Client struct {
	pool   *RelayPool
	info   *chain.Info
	scheme *crypto.Scheme

	// chainHash is the hex chain hash used in relay request paths.
	chainHash string

	cache        *lru.Cache[uint64, *common.Beacon]
	metrics      *Metrics
	fetchRetries int
	retryBackoff time.Duration

	cacheSize int
}

// Option configures a Client.
type Option func(*Client)

// WithCacheSize sets the verified-beacon cache size.
func WithCacheSize(n int) Option {
	return func(c *Client) { c.cacheSize = n }
}

// WithMetrics records verification outcomes on the given metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithFetchRetries makes the client rerun a fully exhausted failover pass up
// to n extra times with exponential backoff. Only fetch-stage exhaustion is
// retried; decode and verification failures never are.
func WithFetchRetries(n int) Option {
	return func(c *Client) { c.fetchRetries = n }
}

// New builds a client for the chain described by info. The info is treated
// as trusted chain identity; obtain it from a validated decode or a trusted
// embedding, never from an unchecked relay response.
func New(info *chain.Info, pool *RelayPool, opts ...Option) (*Client, error) {
	if info == nil {
		return nil, xerrors.New("client needs a chain info")
	}
	if pool == nil {
		return nil, xerrors.New("client needs a relay pool")
	}
	sch, err := crypto.GetSchemeByID(info.Scheme)
	if err != nil {
		return nil, xerrors.Errorf("chain info: %w", err)
	}

	c := &Client{
		pool:         pool,
		info:         info,
		scheme:       sch,
		chainHash:    hex.EncodeToString(info.Hash()),
		cacheSize:    DefaultCacheSize,
		retryBackoff: time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	c.cache, err = lru.New[uint64, *common.Beacon](c.cacheSize)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromChainHash bootstraps the chain identity from the relays themselves:
// it fetches the chain info document, validates its canonical hash and
// requires it to equal the expected hex chain hash supplied by the caller.
// The expected hash is the root of trust here; it must come from
// configuration, not from a relay.
func NewFromChainHash(ctx context.Context, pool *RelayPool, chainHash string, opts ...Option) (*Client, error) {
	if chainHash == "" {
		return nil, xerrors.New("bootstrapping requires an expected chain hash")
	}
	expected, err := hex.DecodeString(chainHash)
	if err != nil {
		return nil, xerrors.Errorf("parsing chain hash: %w", err)
	}

	raw, relay, err := pool.FetchInfo(ctx, chainHash)
	if err != nil {
		return nil, xerrors.Errorf("fetching chain info: %w", err)
	}
	info, err := chain.InfoFromJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, xerrors.Errorf("relay %s served invalid chain info: %w", relay, err)
	}
	if !bytes.Equal(expected, info.Hash()) {
		return nil, xerrors.Errorf("relay %s served chain %s, want %s: %w",
			relay, common.HexBytes(info.Hash()), chainHash, chain.ErrHashMismatch)
	}
	log.Infow("bootstrapped chain info", "relay", relay, "chain", chainHash, "scheme", info.Scheme)
	return New(info, pool, opts...)
}

// NewFromConfig builds the relay pool and client described by a loaded
// configuration, bootstrapping the chain identity against the configured
// chain hash.
func NewFromConfig(ctx context.Context, cfg *config.Client, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolOpts := []PoolOption{WithRequestTimeout(time.Duration(cfg.RequestTimeout))}
	if cfg.Strategy == config.StrategyShuffled {
		poolOpts = append(poolOpts, WithStrategy(StrategyShuffled))
	}
	pool, err := NewRelayPool(cfg.Relays, poolOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.FetchRetries > 0 {
		opts = append(opts, WithFetchRetries(cfg.FetchRetries))
	}
	return NewFromChainHash(ctx, pool, cfg.ChainHash, opts...)
}

// Info returns the chain identity this client verifies against.
func (c *Client) Info() *chain.Info { return c.info }

// IsChained reports whether this chain's rounds link to their predecessor
// through the signed message.
func (c *Client) IsChained() bool { return c.scheme.Chained }

// Latest fetches and verifies the most recent published round.
func (c *Client) Latest(ctx context.Context) (*common.Beacon, error) {
	return c.fetchRound(ctx, 0)
}

// Get fetches and verifies the given round. Round 0 means the latest round.
func (c *Client) Get(ctx context.Context, round uint64) (*common.Beacon, error) {
	return c.fetchRound(ctx, round)
}

// GetByTime fetches and verifies the round in effect at time t.
func (c *Client) GetByTime(ctx context.Context, t time.Time) (*common.Beacon, error) {
	return c.Get(ctx, chain.RoundAt(c.info, t))
}

// RoundAt returns the round in effect at time t on this client's chain.
func (c *Client) RoundAt(t time.Time) uint64 {
	return chain.RoundAt(c.info, t)
}

// CurrentRound returns the round in effect now.
func (c *Client) CurrentRound() uint64 {
	return chain.RoundAt(c.info, build.Clock.Now())
}

type fetched struct {
	data  []byte
	relay string
}

func (c *Client) fetchRound(ctx context.Context, round uint64) (*common.Beacon, error) {
	if round > 0 {
		if b, ok := c.cache.Get(round); ok {
			return b, nil
		}
	}

	start := build.Clock.Now()
	fetch := func() (fetched, error) {
		data, relay, err := c.pool.FetchBeacon(ctx, c.chainHash, round)
		return fetched{data: data, relay: relay}, err
	}
	var (
		res fetched
		err error
	)
	if c.fetchRetries > 0 {
		res, err = retry.Retry(ctx, c.fetchRetries+1, c.retryBackoff, []error{&ExhaustedError{}}, fetch)
	} else {
		res, err = fetch()
	}
	if err != nil {
		return nil, &Error{Stage: StageFetch, Round: round, Err: err}
	}

	b, err := decodeBeacon(res.data)
	if err != nil {
		return nil, &Error{Stage: StageDecode, Round: round, Err: err}
	}
	if round > 0 && b.Round != round {
		return nil, &Error{Stage: StageVerify, Round: round,
			Err: xerrors.Errorf("relay %s returned round %d", res.relay, b.Round)}
	}
	if err := c.verify(b); err != nil {
		return nil, &Error{Stage: StageVerify, Round: round, Err: err}
	}
	c.cache.Add(b.Round, b)

	log.Debugw("fetched and verified beacon",
		"round", b.Round, "relay", res.relay, "took", build.Clock.Since(start))
	return b, nil
}

func (c *Client) verify(b *common.Beacon) error {
	if cached, ok := c.cache.Get(b.Round); ok {
		if !bytes.Equal(cached.Signature, b.Signature) {
			c.metrics.observeVerification(false)
			return xerrors.New("beacon does not match previously verified round")
		}
		return nil
	}
	if err := c.scheme.VerifyBeacon(b, c.info.PublicKey); err != nil {
		c.metrics.observeVerification(false)
		return err
	}
	if err := crypto.VerifyRandomness(b); err != nil {
		c.metrics.observeVerification(false)
		return err
	}
	c.metrics.observeVerification(true)
	return nil
}

// Range fetches and verifies rounds from through to inclusive. For chained
// schemes it additionally asserts continuity: each round's previous
// signature must equal the prior round's signature. Per-round verification
// is the hard contract; continuity is this extra, range-level layer.
func (c *Client) Range(ctx context.Context, from, to uint64) ([]*common.Beacon, error) {
	if from == 0 || to < from {
		return nil, xerrors.Errorf("invalid round range [%d, %d]", from, to)
	}
	out := make([]*common.Beacon, 0, to-from+1)
	var prev *common.Beacon
	for r := from; r <= to; r++ {
		b, err := c.Get(ctx, r)
		if err != nil {
			return nil, err
		}
		if c.scheme.Chained && prev != nil && !bytes.Equal(b.PreviousSig, prev.Signature) {
			return nil, &Error{Stage: StageVerify, Round: r, Err: ErrBrokenChain}
		}
		prev = b
		out = append(out, b)
	}
	return out, nil
}

func decodeBeacon(data []byte) (*common.Beacon, error) {
	var b common.Beacon
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, xerrors.Errorf("decoding beacon: %w", err)
	}
	if b.Round == 0 {
		return nil, xerrors.New("beacon carries no round")
	}
	if len(b.Signature) == 0 {
		return nil, xerrors.New("beacon carries no signature")
	}
	return &b, nil
}
