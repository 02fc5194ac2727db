package accessors

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// Factory builds a ChainAccessor for a verified connection.
type Factory interface {
	GetAccessor(ctx context.Context, conn *chainconn.Connection) (protocol.ChainAccessor, error)
}

// Registry holds one ChainAccessor per connected network.
// It is populated once by Build and read-only afterwards.
type Registry struct {
	accessors map[string]protocol.ChainAccessor
	failures  map[string]error
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		accessors: make(map[string]protocol.ChainAccessor),
		failures:  make(map[string]error),
	}
}

// Register adds an accessor under its network name, overwriting any existing one.
// Not concurrent safe.
func (r *Registry) Register(accessor protocol.ChainAccessor) {
	r.accessors[accessor.Network()] = accessor
	delete(r.failures, accessor.Network())
}

// Build creates accessors for every connection using factory. A network whose accessor
// cannot be built is recorded as a failure and skipped; the others are unaffected.
// Not concurrent safe.
func (r *Registry) Build(ctx context.Context, lggr logger.Logger, connections map[string]*chainconn.Connection, factory Factory) error {
	if factory == nil {
		return errors.New("accessor factory is not set")
	}
	for name, conn := range connections {
		accessor, err := factory.GetAccessor(ctx, conn)
		if err != nil {
			err = fmt.Errorf("failed to get accessor for %s: %w", name, err)
			lggr.Errorw("Skipping network", "network", name, "error", err)
			r.failures[name] = err
			continue
		}
		r.Register(accessor)
	}
	return nil
}

// GetAccessor returns the accessor for network.
func (r *Registry) GetAccessor(network string) (protocol.ChainAccessor, bool) {
	a, ok := r.accessors[network]
	return a, ok
}

// Networks returns the sorted names of networks with an accessor.
func (r *Registry) Networks() []string {
	names := make([]string, 0, len(r.accessors))
	for name := range r.accessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failures returns the networks whose accessor could not be built.
func (r *Registry) Failures() map[string]error {
	return r.failures
}
