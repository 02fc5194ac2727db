package evm

import (
	"context"
	"fmt"
	"time"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/contracttransmitter"
	"github.com/basexlabs/basex-oracle/integration/pkg/destinationreader"
	"github.com/basexlabs/basex-oracle/integration/pkg/sourcereader"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// Options tune the accessors built by a factory. Zero values select the component defaults.
type Options struct {
	GasLimit            uint64
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	CacheExpiry         time.Duration
	// Observer is notified about AnalysisReceived events on every network. Optional.
	Observer protocol.AnalysisObserver
}

type Factory struct {
	lggr logger.Logger
	opts Options
}

// NewFactory creates a new EVM accessor factory.
func NewFactory(lggr logger.Logger, opts Options) *Factory {
	return &Factory{lggr: lggr, opts: opts}
}

// GetAccessor wires the transmitter, reader and listener of a verified connection.
// Read-only connections get an accessor that can query but not transact.
func (f *Factory) GetAccessor(ctx context.Context, conn *chainconn.Connection) (protocol.ChainAccessor, error) {
	if f.lggr == nil {
		return nil, fmt.Errorf("evm accessor factory is not fully initialized - can't get accessor for %s", conn.Name())
	}
	if !conn.Verified() {
		return nil, fmt.Errorf("%w: %s", protocol.ErrNotVerified, conn.Name())
	}

	reader, err := destinationreader.NewFromConnection(f.lggr, conn, f.opts.CacheExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM destination reader: %w", err)
	}

	a := &accessor{
		network:  conn.Name(),
		chainID:  conn.Config().ChainID,
		reader:   reader,
		observer: f.opts.Observer,
	}

	if _, _, ok := conn.Signer(); ok {
		a.transmitter, err = contracttransmitter.NewEVMContractTransmitter(f.lggr, conn, f.opts.GasLimit, f.opts.ConfirmationTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create EVM contract transmitter: %w", err)
		}
	}

	a.source, err = sourcereader.NewFromConnection(f.lggr, conn, a, f.opts.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM request listener: %w", err)
	}

	return a, nil
}

type transmitter interface {
	protocol.AnalysisRequester
	SubmitResult(ctx context.Context, videoID string, result protocol.AnalysisResult) (*protocol.TxReceipt, error)
}

type reader interface {
	QueryResult(ctx context.Context, videoID string) (protocol.AnalysisRecord, error)
	Invalidate(videoID string)
}

type accessor struct {
	network     string
	chainID     uint64
	transmitter transmitter
	reader      reader
	source      protocol.RequestSource
	observer    protocol.AnalysisObserver
}

var (
	_ protocol.ChainAccessor    = (*accessor)(nil)
	_ protocol.AnalysisObserver = (*accessor)(nil)
)

func (a *accessor) Network() string {
	return a.network
}

func (a *accessor) ChainID() uint64 {
	return a.chainID
}

func (a *accessor) RequestSource() protocol.RequestSource {
	return a.source
}

func (a *accessor) SubmitResult(ctx context.Context, videoID string, result protocol.AnalysisResult) (*protocol.TxReceipt, error) {
	if a.transmitter == nil {
		return nil, fmt.Errorf("%w: %s is read-only", protocol.ErrConfiguration, a.network)
	}
	receipt, err := a.transmitter.SubmitResult(ctx, videoID, result)
	a.reader.Invalidate(videoID)
	return receipt, err
}

func (a *accessor) QueryResult(ctx context.Context, videoID string) (protocol.AnalysisRecord, error) {
	return a.reader.QueryResult(ctx, videoID)
}

func (a *accessor) RequestAnalysis(ctx context.Context, videoID string) (string, error) {
	if a.transmitter == nil {
		return "", fmt.Errorf("%w: %s is read-only", protocol.ErrConfiguration, a.network)
	}
	return a.transmitter.RequestAnalysis(ctx, videoID)
}

// OnAnalysisReceived drops the cached record before forwarding the event.
func (a *accessor) OnAnalysisReceived(ctx context.Context, event protocol.AnalysisReceivedEvent) {
	a.reader.Invalidate(event.VideoID)
	if a.observer != nil {
		a.observer.OnAnalysisReceived(ctx, event)
	}
}
