// Package provider builds bundler and paymaster clients out of the provider
// table and loads the table itself.
package provider

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider/jsonrpc"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider/simulated"
)

const (
	// SimulatedScheme marks endpoints served by in-process simulated
	// providers, ie. sim://local or sim://local?settle=manual.
	SimulatedScheme = "sim"

	settleParam  = "settle"
	settleManual = "manual"
)

// Options ...
type Options struct {
	ChainID    int64
	EntryPoint common.Address
	// RateLimit is applied to every remote provider, 0 means unlimited.
	RateLimit int
}

type closer interface {
	Close()
}

// Clients implements ports.ProviderClients. Clients are built on first use
// and cached by provider id.
type Clients struct {
	opts Options

	lock       *sync.Mutex
	bundlers   map[string]ports.BundlerClient
	paymasters map[string]ports.PaymasterClient
}

// NewClients ...
func NewClients(opts Options) (*Clients, error) {
	if opts.ChainID <= 0 {
		return nil, fmt.Errorf("missing chain id")
	}
	if opts.EntryPoint == (common.Address{}) {
		return nil, fmt.Errorf("missing entry point address")
	}
	return &Clients{
		opts:       opts,
		lock:       &sync.Mutex{},
		bundlers:   make(map[string]ports.BundlerClient),
		paymasters: make(map[string]ports.PaymasterClient),
	}, nil
}

func (c *Clients) Bundler(
	provider domain.ProviderConfig,
) (ports.BundlerClient, error) {
	if provider.Kind != domain.ProviderKindBundler {
		return nil, domain.ErrProviderInvalidKind
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if client, ok := c.bundlers[provider.ID]; ok {
		return client, nil
	}

	endpoint, err := url.Parse(provider.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for %s: %w", provider.ID, err)
	}

	var client ports.BundlerClient
	if endpoint.Scheme == SimulatedScheme {
		autoSettle := endpoint.Query().Get(settleParam) != settleManual
		client = simulated.NewBundler(
			provider.ID, c.opts.EntryPoint, c.opts.ChainID, autoSettle,
		)
	} else {
		client, err = jsonrpc.NewBundler(
			provider.ID, provider.Endpoint, c.opts.EntryPoint,
			jsonrpc.Options{RateLimit: c.opts.RateLimit},
		)
		if err != nil {
			return nil, err
		}
	}

	c.bundlers[provider.ID] = client
	log.WithFields(log.Fields{
		"provider": provider.ID,
		"endpoint": redact(endpoint),
	}).Debug("bundler client ready")
	return client, nil
}

func (c *Clients) Paymaster(
	provider domain.ProviderConfig,
) (ports.PaymasterClient, error) {
	if provider.Kind != domain.ProviderKindPaymaster {
		return nil, domain.ErrProviderInvalidKind
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if client, ok := c.paymasters[provider.ID]; ok {
		return client, nil
	}

	endpoint, err := url.Parse(provider.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for %s: %w", provider.ID, err)
	}

	var client ports.PaymasterClient
	if endpoint.Scheme == SimulatedScheme {
		address := common.BytesToAddress(crypto.Keccak256([]byte(provider.ID)))
		client = simulated.NewPaymaster(provider.ID, address)
	} else {
		client, err = jsonrpc.NewPaymaster(
			provider.ID, provider.Endpoint, c.opts.EntryPoint,
			jsonrpc.Options{RateLimit: c.opts.RateLimit},
		)
		if err != nil {
			return nil, err
		}
	}

	c.paymasters[provider.ID] = client
	log.WithFields(log.Fields{
		"provider": provider.ID,
		"endpoint": redact(endpoint),
	}).Debug("paymaster client ready")
	return client, nil
}

// SimulatedBundler returns the simulated bundler with the given id, if it
// was already built.
func (c *Clients) SimulatedBundler(id string) (*simulated.Bundler, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	b, ok := c.bundlers[id].(*simulated.Bundler)
	return b, ok
}

// SimulatedPaymaster returns the simulated paymaster with the given id, if
// it was already built.
func (c *Clients) SimulatedPaymaster(id string) (*simulated.Paymaster, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	p, ok := c.paymasters[id].(*simulated.Paymaster)
	return p, ok
}

// Close releases the connections of every remote client.
func (c *Clients) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	for _, b := range c.bundlers {
		if cl, ok := b.(closer); ok {
			cl.Close()
		}
	}
	for _, p := range c.paymasters {
		if cl, ok := p.(closer); ok {
			cl.Close()
		}
	}
	c.bundlers = make(map[string]ports.BundlerClient)
	c.paymasters = make(map[string]ports.PaymasterClient)
}

// redact drops query and credentials, api keys usually live there.
func redact(u *url.URL) string {
	return strings.TrimSuffix(
		fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path), "/",
	)
}
