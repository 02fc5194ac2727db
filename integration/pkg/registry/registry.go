package registry

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

var (
	errNoNetworks   = errors.New("no network connected")
	errNilLogger    = errors.New("logger cannot be nil")
	errNoNetworkCfg = errors.New("at least one network must be configured")
)

var _ protocol.HealthReporter = (*Registry)(nil)

// Dialer opens a connection for one network. chainconn.Dial is used by default.
type Dialer func(ctx context.Context, lggr logger.Logger, cfg protocol.NetworkConfig, key *ecdsa.PrivateKey) (*chainconn.Connection, error)

// Params configures Connect.
type Params struct {
	Lggr     logger.Logger
	Networks map[string]protocol.NetworkConfig
	// Key is the signing key shared by every network. Nil builds read-only connections.
	Key *ecdsa.PrivateKey
	// ProbeTimeout bounds the dial and the chain id probe of each network separately.
	ProbeTimeout time.Duration
	Dial         Dialer
}

// Registry owns one verified connection per reachable network. A network that fails
// validation, dialing or probing is recorded as a failure and never blocks the others.
type Registry struct {
	lggr     logger.Logger
	conns    map[string]*chainconn.Connection
	failures map[string]error
	order    []string
}

// Connect dials and probes every configured network concurrently.
func Connect(ctx context.Context, p Params) (*Registry, error) {
	if p.Lggr == nil {
		return nil, errNilLogger
	}
	if len(p.Networks) == 0 {
		return nil, errNoNetworkCfg
	}
	dial := p.Dial
	if dial == nil {
		dial = chainconn.Dial
	}

	r := &Registry{
		lggr:     logger.Named(p.Lggr, "Registry"),
		conns:    make(map[string]*chainconn.Connection, len(p.Networks)),
		failures: make(map[string]error),
		order:    slices.Sorted(maps.Keys(p.Networks)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(name string, conn *chainconn.Connection, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			r.failures[name] = err
			return
		}
		r.conns[name] = conn
	}

	for _, name := range r.order {
		cfg := p.Networks[name]
		if cfg.Name == "" {
			cfg.Name = name
		}
		if err := cfg.Validate(); err != nil {
			r.lggr.Warnw("Skipping misconfigured network", "network", name, "error", err)
			record(name, nil, err)
			continue
		}

		wg.Go(func() {
			conn, err := dialBounded(ctx, dial, p, cfg)
			if err != nil {
				r.lggr.Errorw("Failed to connect to network", "network", name, "error", err)
				record(name, nil, err)
				return
			}
			if err := conn.Probe(ctx, p.ProbeTimeout); err != nil {
				r.lggr.Errorw("Network probe failed, network disabled", "network", name, "error", err)
				conn.Close()
				record(name, nil, err)
				return
			}
			record(name, conn, nil)
		})
	}
	wg.Wait()

	r.lggr.Infow("Network registry ready",
		"connected", r.Networks(),
		"failed", len(r.failures),
	)
	return r, nil
}

// dialBounded gives up on dial once the probe timeout expires. A connection that
// arrives after that is closed.
func dialBounded(ctx context.Context, dial Dialer, p Params, cfg protocol.NetworkConfig) (*chainconn.Connection, error) {
	timeout := p.ProbeTimeout
	if timeout <= 0 {
		timeout = chainconn.DefaultProbeTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		conn *chainconn.Connection
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := dial(dialCtx, p.Lggr, cfg, p.Key)
		done <- result{conn: conn, err: err}
	}()

	select {
	case res := <-done:
		return res.conn, res.err
	case <-dialCtx.Done():
		go func() {
			if res := <-done; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("%w: dial %s: %w", protocol.ErrConnectivity, cfg.Name, dialCtx.Err())
	}
}

// Get returns the verified connection for a network.
func (r *Registry) Get(network string) (*chainconn.Connection, bool) {
	conn, ok := r.conns[network]
	return conn, ok
}

// Networks returns the names of the connected networks in sorted order.
func (r *Registry) Networks() []string {
	names := make([]string, 0, len(r.conns))
	for _, name := range r.order {
		if _, ok := r.conns[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Connections returns the connected networks keyed by name.
func (r *Registry) Connections() map[string]*chainconn.Connection {
	return maps.Clone(r.conns)
}

// Failures returns the networks that could not be initialized and why.
func (r *Registry) Failures() map[string]error {
	return maps.Clone(r.failures)
}

func (r *Registry) Name() string {
	return "Registry"
}

// Ready reports an error only when no network could be connected.
func (r *Registry) Ready() error {
	if len(r.conns) == 0 {
		return fmt.Errorf("%w: %d network(s) failed", errNoNetworks, len(r.failures))
	}
	return nil
}

func (r *Registry) HealthReport() map[string]error {
	report := make(map[string]error, len(r.order)+1)
	report[r.Name()] = r.Ready()
	for name, conn := range r.conns {
		report[r.Name()+"."+name] = conn.Ready()
	}
	for name, err := range r.failures {
		report[r.Name()+"."+name] = err
	}
	return report
}

// Close releases every connection.
func (r *Registry) Close() {
	for _, conn := range r.conns {
		conn.Close()
	}
}
