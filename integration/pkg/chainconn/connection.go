package chainconn

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/basexlabs/basex-oracle/integration/pkg/gobindings/basexoracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// DefaultProbeTimeout bounds the connectivity check when no timeout is configured.
const DefaultProbeTimeout = 10 * time.Second

var (
	errNilBackend = errors.New("backend cannot be nil")
	errNilLogger  = errors.New("logger cannot be nil")
)

// Backend is the JSON-RPC surface used by a connection. *ethclient.Client and the
// simulated backend client both satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Connection binds one network's RPC client, signing identity and oracle contract.
// It is only usable after Probe has confirmed the endpoint answers with the configured chain id.
type Connection struct {
	lggr     logger.Logger
	cfg      protocol.NetworkConfig
	backend  Backend
	contract *basexoracle.BaseXOracle
	key      *ecdsa.PrivateKey
	from     common.Address
	selector uint64

	mu       sync.RWMutex
	verified bool
	probeErr error
}

// Dial opens the RPC endpoint of cfg and builds a connection on top of it.
// key may be nil for read-only use.
func Dial(ctx context.Context, lggr logger.Logger, cfg protocol.NetworkConfig, key *ecdsa.PrivateKey) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", protocol.ErrConnectivity, cfg.Name, err)
	}
	conn, err := New(lggr, cfg, client, key)
	if err != nil {
		client.Close()
		return nil, err
	}
	return conn, nil
}

// New builds an unverified connection over an existing backend.
func New(lggr logger.Logger, cfg protocol.NetworkConfig, backend Backend, key *ecdsa.PrivateKey) (*Connection, error) {
	var errs []error
	appendIfNil := func(field any, fieldName error) {
		if field == nil {
			errs = append(errs, fieldName)
		}
	}
	appendIfNil(lggr, errNilLogger)
	appendIfNil(backend, errNilBackend)
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	contract, err := basexoracle.NewBaseXOracle(cfg.Address(), backend)
	if err != nil {
		return nil, fmt.Errorf("failed to bind oracle contract on %s: %w", cfg.Name, err)
	}

	c := &Connection{
		lggr:     logger.With(lggr, "network", cfg.Name, "chainID", cfg.ChainID),
		cfg:      cfg,
		backend:  backend,
		contract: contract,
		key:      key,
	}
	if key != nil {
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	if chain, ok := chainsel.ChainByEvmChainID(cfg.ChainID); ok {
		c.selector = chain.Selector
		c.lggr = logger.With(c.lggr, "chainSelector", chain.Selector, "chainName", chain.Name)
	}
	return c, nil
}

// Probe checks that the endpoint is reachable and reports the configured chain id.
// It must succeed once before the connection can be used.
func (c *Connection) Probe(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.probe(probeCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.probeErr = err
	if err == nil {
		c.verified = true
	}
	return err
}

func (c *Connection) probe(ctx context.Context) error {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s did not answer eth_chainId: %w", protocol.ErrConnectivity, c.cfg.Name, err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != c.cfg.ChainID {
		return fmt.Errorf("%w: %s endpoint reports chain id %s, expected %d",
			protocol.ErrConfiguration, c.cfg.Name, chainID.String(), c.cfg.ChainID)
	}

	head, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s did not answer eth_blockNumber: %w", protocol.ErrConnectivity, c.cfg.Name, err)
	}

	c.lggr.Infow("Connected to network", "head", head, "contract", c.cfg.ContractAddress, "readOnly", c.key == nil)
	return nil
}

// Verified reports whether a probe has succeeded.
func (c *Connection) Verified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verified
}

// Ready implements the health contract: nil once verified, the last probe error otherwise.
func (c *Connection) Ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.verified {
		return nil
	}
	if c.probeErr != nil {
		return c.probeErr
	}
	return protocol.ErrNotVerified
}

func (c *Connection) Name() string {
	return c.cfg.Name
}

func (c *Connection) Config() protocol.NetworkConfig {
	return c.cfg
}

// ChainSelector returns the chain-selectors id of the network, or 0 when it is not a known chain.
func (c *Connection) ChainSelector() uint64 {
	return c.selector
}

// Backend returns the RPC client once the connection has been verified.
func (c *Connection) Backend() (Backend, error) {
	if !c.Verified() {
		return nil, fmt.Errorf("%w: %s", protocol.ErrNotVerified, c.cfg.Name)
	}
	return c.backend, nil
}

// Contract returns the oracle binding once the connection has been verified.
func (c *Connection) Contract() (*basexoracle.BaseXOracle, error) {
	if !c.Verified() {
		return nil, fmt.Errorf("%w: %s", protocol.ErrNotVerified, c.cfg.Name)
	}
	return c.contract, nil
}

// Signer returns the private key and its address. ok is false for read-only connections.
func (c *Connection) Signer() (key *ecdsa.PrivateKey, from common.Address, ok bool) {
	return c.key, c.from, c.key != nil
}

// Close releases the RPC client if it holds network resources.
func (c *Connection) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

// ParsePrivateKey parses a hex encoded secp256k1 key, with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("%w: private key is empty", protocol.ErrConfiguration)
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %w", protocol.ErrConfiguration, err)
	}
	return key, nil
}
