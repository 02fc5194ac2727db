package accessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

type namedAccessor struct {
	protocol.ChainAccessor
	network string
}

func (n namedAccessor) Network() string { return n.network }

type fakeFactory struct {
	fail map[*chainconn.Connection]bool
	name map[*chainconn.Connection]string
}

func (f fakeFactory) GetAccessor(ctx context.Context, conn *chainconn.Connection) (protocol.ChainAccessor, error) {
	if f.fail[conn] {
		return nil, errors.New("boom")
	}
	return namedAccessor{network: f.name[conn]}, nil
}

func TestRegistry_Build(t *testing.T) {
	sepolia, base := &chainconn.Connection{}, &chainconn.Connection{}
	factory := fakeFactory{
		fail: map[*chainconn.Connection]bool{base: true},
		name: map[*chainconn.Connection]string{sepolia: "sepolia", base: "baseSepolia"},
	}

	r := NewRegistry()
	require.NoError(t, r.Build(t.Context(), logger.Test(t), map[string]*chainconn.Connection{
		"sepolia":     sepolia,
		"baseSepolia": base,
	}, factory))

	assert.Equal(t, []string{"sepolia"}, r.Networks())
	a, ok := r.GetAccessor("sepolia")
	require.True(t, ok)
	assert.Equal(t, "sepolia", a.Network())

	_, ok = r.GetAccessor("baseSepolia")
	assert.False(t, ok)
	require.Contains(t, r.Failures(), "baseSepolia")

	r.Register(namedAccessor{network: "baseSepolia"})
	assert.Equal(t, []string{"baseSepolia", "sepolia"}, r.Networks())
	assert.NotContains(t, r.Failures(), "baseSepolia")
}

func TestRegistry_BuildWithoutFactory(t *testing.T) {
	require.Error(t, NewRegistry().Build(t.Context(), logger.Test(t), nil, nil))
}
