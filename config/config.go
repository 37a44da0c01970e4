// Package config is the TOML configuration surface consumed by the client:
// relay endpoints, chain selection and fetch policy.
package config

import (
	"bytes"
	"encoding"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// Strategy names for relay selection.
const (
	StrategyOrdered  = "ordered"
	StrategyShuffled = "shuffled"
)

// Client configures one beacon client.
type Client struct {
	// Relays is the ordered list of relay base URLs to fetch from.
	Relays []string

	// ChainHash is the hex chain hash identifying the chain on
	// multi-beacon relays. Empty selects the relay's default chain.
	ChainHash string

	// RequestTimeout bounds each individual relay attempt.
	RequestTimeout Duration

	// Strategy is the relay selection strategy, "ordered" or "shuffled".
	Strategy string

	// FetchRetries is the number of extra full failover passes to run
	// when every relay fails. Zero disables retrying.
	FetchRetries int
}

// Default returns a config with the fetch policy defaults filled in and no
// relays; callers supply the relay list and chain hash.
func Default() *Client {
	return &Client{
		RequestTimeout: Duration(5 * time.Second),
		Strategy:       StrategyOrdered,
	}
}

// FromFile loads a client config from a TOML file, applying defaults for
// unset fields.
func FromFile(path string) (*Client, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, xerrors.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for obvious misconfiguration.
func (c *Client) Validate() error {
	if len(c.Relays) == 0 {
		return xerrors.New("config: at least one relay is required")
	}
	if c.RequestTimeout <= 0 {
		return xerrors.New("config: request timeout must be positive")
	}
	switch c.Strategy {
	case StrategyOrdered, StrategyShuffled:
	default:
		return xerrors.Errorf("config: unknown strategy %q", c.Strategy)
	}
	if c.FetchRetries < 0 {
		return xerrors.New("config: fetch retries must not be negative")
	}
	return nil
}

// ToBytes serializes the config to TOML.
func (c *Client) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, xerrors.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration for decoding and encoding
// from/to TOML.
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding.
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
