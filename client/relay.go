package client

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/drandlite/drandlite/build"
)

// DefaultRequestTimeout bounds a single relay attempt. With N relays a fetch
// call takes at most roughly N times this.
const DefaultRequestTimeout = 5 * time.Second

// Relay responses are small JSON documents; anything bigger is malformed.
const maxResponseBody = 1 << 20

// Strategy selects the order relays are attempted in.
type Strategy int

const (
	// StrategyOrdered walks the configured list in priority order.
	StrategyOrdered Strategy = iota

	// StrategyShuffled randomizes the order per fetch call, spreading
	// load across relays.
	StrategyShuffled
)

// RelayPool fetches raw wire payloads from a configured list of relay
// endpoints, failing over on any per-relay error. It holds only immutable
// configuration and may be shared across goroutines; per-call failure
// bookkeeping is call-local.
type RelayPool struct {
	relays   []string
	hc       *http.Client
	timeout  time.Duration
	strategy Strategy
	metrics  *Metrics
}

// PoolOption configures a RelayPool.
type PoolOption func(*RelayPool)

// WithRequestTimeout sets the per-attempt timeout.
func WithRequestTimeout(d time.Duration) PoolOption {
	return func(p *RelayPool) { p.timeout = d }
}

// WithStrategy sets the relay selection strategy.
func WithStrategy(s Strategy) PoolOption {
	return func(p *RelayPool) { p.strategy = s }
}

// WithHTTPClient replaces the transport, e.g. for tests or custom TLS.
func WithHTTPClient(hc *http.Client) PoolOption {
	return func(p *RelayPool) { p.hc = hc }
}

// WithPoolMetrics records per-relay attempt outcomes on the given metrics.
func WithPoolMetrics(m *Metrics) PoolOption {
	return func(p *RelayPool) { p.metrics = m }
}

// NewRelayPool builds a pool over the given relay base URLs. URLs without a
// protocol get "https://" prepended.
func NewRelayPool(urls []string, opts ...PoolOption) (*RelayPool, error) {
	if len(urls) == 0 {
		return nil, xerrors.New("relay pool needs at least one relay URL")
	}
	relays := make([]string, 0, len(urls))
	for _, raw := range urls {
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, xerrors.Errorf("parsing relay URL %q: %w", raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, xerrors.Errorf("relay URL %q: unsupported scheme %q", raw, u.Scheme)
		}
		relays = append(relays, strings.TrimRight(u.String(), "/"))
	}

	p := &RelayPool{
		relays:   relays,
		hc:       &http.Client{},
		timeout:  DefaultRequestTimeout,
		strategy: StrategyOrdered,
	}
	for _, o := range opts {
		o(p)
	}
	if p.timeout <= 0 {
		return nil, xerrors.New("relay request timeout must be positive")
	}
	return p, nil
}

// Relays returns the configured relay base URLs in priority order.
func (p *RelayPool) Relays() []string {
	out := make([]string, len(p.relays))
	copy(out, p.relays)
	return out
}

// FetchBeacon returns the raw beacon document for the given round, or for
// the latest round when round is 0, along with the relay that answered.
func (p *RelayPool) FetchBeacon(ctx context.Context, chainHash string, round uint64) ([]byte, string, error) {
	sel := "latest"
	if round > 0 {
		sel = strconv.FormatUint(round, 10)
	}
	return p.fetch(ctx, joinPath(chainHash, "public", sel))
}

// FetchInfo returns the raw chain info document along with the relay that
// answered.
func (p *RelayPool) FetchInfo(ctx context.Context, chainHash string) ([]byte, string, error) {
	return p.fetch(ctx, joinPath(chainHash, "info"))
}

func joinPath(chainHash string, parts ...string) string {
	// Legacy single-chain relays serve the default chain without a hash
	// path segment.
	if chainHash != "" {
		parts = append([]string{chainHash}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// fetch attempts each relay once, in strategy order, returning the first
// well-formed response. Individual relay failures are recorded, not
// propagated, until every relay has failed.
func (p *RelayPool) fetch(ctx context.Context, path string) ([]byte, string, error) {
	order := make([]int, len(p.relays))
	for i := range order {
		order[i] = i
	}
	if p.strategy == StrategyShuffled {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	var failures *multierror.Error
	for _, i := range order {
		base := p.relays[i]
		data, err := p.attempt(ctx, base+path)
		if err == nil {
			p.metrics.observeAttempt(base, true)
			return data, base, nil
		}
		p.metrics.observeAttempt(base, false)
		log.Debugw("relay attempt failed", "relay", base, "path", path, "err", err)
		failures = multierror.Append(failures, &RelayError{URL: base, Err: err})

		if ctx.Err() != nil {
			// The caller is gone; don't burn the remaining relays.
			break
		}
	}
	return nil, "", &ExhaustedError{Failures: failures}
}

func (p *RelayPool) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, xerrors.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", build.UserAgent)

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, xerrors.Errorf("reading response: %w", err)
	}
	if len(data) == 0 {
		return nil, xerrors.New("empty response body")
	}
	return data, nil
}
