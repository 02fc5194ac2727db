package sourcereader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/basexlabs/basex-oracle/integration/pkg/chainconn"
	"github.com/basexlabs/basex-oracle/integration/pkg/gobindings/basexoracle"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const (
	// DefaultPollInterval is the default interval for polling when WebSocket is not available.
	DefaultPollInterval = 5 * time.Second
)

var (
	errNilFilterer = errors.New("filterer cannot be nil")
	errNilHeads    = errors.New("head reader cannot be nil")
	errNilLogger   = errors.New("logger cannot be nil")
	errNoNetwork   = errors.New("network name cannot be empty")
)

var _ protocol.RequestSource = (*EVMRequestListener)(nil)

// HeadReader returns the latest block number.
type HeadReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Params configures an EVMRequestListener.
type Params struct {
	Lggr     logger.Logger
	Network  string
	Filterer *basexoracle.BaseXOracleFilterer
	Heads    HeadReader
	// Observer receives AnalysisReceived events. Optional.
	Observer     protocol.AnalysisObserver
	PollInterval time.Duration
	// StartBlock is the first block to read in polling mode. Zero starts at the current head.
	StartBlock uint64
}

// EVMRequestListener turns the oracle contract's AnalysisRequested logs into a request stream.
// It first tries a WebSocket log subscription and falls back to polling eth_getLogs.
type EVMRequestListener struct {
	lggr         logger.Logger
	network      string
	filterer     *basexoracle.BaseXOracleFilterer
	heads        HeadReader
	observer     protocol.AnalysisObserver
	pollInterval time.Duration

	mu              sync.Mutex
	current         *subscription
	lastPolledBlock uint64
	polledOnce      bool
}

// NewEVMRequestListener validates params and creates a listener.
func NewEVMRequestListener(p Params) (*EVMRequestListener, error) {
	var errs []error
	appendIfNil := func(field any, fieldName error) {
		if field == nil {
			errs = append(errs, fieldName)
		}
	}
	appendIfNil(p.Lggr, errNilLogger)
	appendIfNil(p.Heads, errNilHeads)
	if p.Filterer == nil {
		errs = append(errs, errNilFilterer)
	}
	if p.Network == "" {
		errs = append(errs, errNoNetwork)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	pollInterval := p.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	l := &EVMRequestListener{
		lggr:         logger.With(logger.Named(p.Lggr, "RequestListener"), "network", p.Network),
		network:      p.Network,
		filterer:     p.Filterer,
		heads:        p.Heads,
		observer:     p.Observer,
		pollInterval: pollInterval,
	}
	if p.StartBlock > 0 {
		l.lastPolledBlock = p.StartBlock - 1
		l.polledOnce = true
	}
	return l, nil
}

// NewFromConnection creates a listener reading from a verified connection.
func NewFromConnection(lggr logger.Logger, conn *chainconn.Connection, observer protocol.AnalysisObserver, pollInterval time.Duration) (*EVMRequestListener, error) {
	contract, err := conn.Contract()
	if err != nil {
		return nil, err
	}
	backend, err := conn.Backend()
	if err != nil {
		return nil, err
	}
	return NewEVMRequestListener(Params{
		Lggr:         lggr,
		Network:      conn.Name(),
		Filterer:     &contract.BaseXOracleFilterer,
		Heads:        backend,
		Observer:     observer,
		PollInterval: pollInterval,
	})
}

// Subscribe starts a new subscription, cancelling the previous one first so that
// no event is delivered by two live subscriptions.
func (l *EVMRequestListener) Subscribe(ctx context.Context) (protocol.RequestSubscription, error) {
	l.mu.Lock()
	previous := l.current
	l.current = nil
	l.mu.Unlock()
	if previous != nil {
		previous.Unsubscribe()
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &subscription{
		requests: make(chan protocol.AnalysisRequestEvent),
		errCh:    make(chan error, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if err := l.startWSMode(runCtx, sub); err != nil {
		l.lggr.Infow("WebSocket subscription not available, falling back to HTTP polling",
			"reason", err, "pollInterval", l.pollInterval)
		if err := l.startHTTPMode(runCtx, sub); err != nil {
			cancel()
			return nil, err
		}
	}

	go func() {
		sub.wg.Wait()
		close(sub.requests)
		close(sub.errCh)
		close(sub.done)
	}()

	l.mu.Lock()
	l.current = sub
	l.mu.Unlock()
	return sub, nil
}

func (l *EVMRequestListener) startWSMode(ctx context.Context, sub *subscription) error {
	requestedCh := make(chan *basexoracle.BaseXOracleAnalysisRequested)
	requestedSub, err := l.filterer.WatchAnalysisRequested(&bind.WatchOpts{Context: ctx}, requestedCh)
	if err != nil {
		return err
	}

	sub.wg.Go(func() {
		defer requestedSub.Unsubscribe()
		for {
			select {
			case ev := <-requestedCh:
				if !l.deliver(ctx, sub, ev) {
					return
				}
			case err := <-requestedSub.Err():
				if err != nil {
					l.lggr.Errorw("Subscription error occurred", "error", err)
					sub.fail(fmt.Errorf("%w: %s log subscription: %w", protocol.ErrConnectivity, l.network, err))
				}
				return
			case <-ctx.Done():
				return
			}
		}
	})

	receivedCh := make(chan *basexoracle.BaseXOracleAnalysisReceived)
	receivedSub, err := l.filterer.WatchAnalysisReceived(&bind.WatchOpts{Context: ctx}, receivedCh)
	if err != nil {
		l.lggr.Warnw("Failed to watch AnalysisReceived events", "error", err)
	} else {
		sub.wg.Go(func() {
			defer receivedSub.Unsubscribe()
			for {
				select {
				case ev := <-receivedCh:
					l.observe(ctx, ev)
				case err := <-receivedSub.Err():
					if err != nil {
						l.lggr.Warnw("AnalysisReceived subscription ended", "error", err)
					}
					return
				case <-ctx.Done():
					return
				}
			}
		})
	}

	l.lggr.Infow("Request listener started in WebSocket mode")
	return nil
}

func (l *EVMRequestListener) startHTTPMode(ctx context.Context, sub *subscription) error {
	l.mu.Lock()
	initialized := l.polledOnce
	l.mu.Unlock()

	if !initialized {
		head, err := l.heads.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("%w: %s failed to read head block: %w", protocol.ErrConnectivity, l.network, err)
		}
		l.setLastPolledBlock(head)
	}

	sub.wg.Go(func() {
		l.runPolling(ctx, sub)
	})

	l.lggr.Infow("Request listener started in polling mode", "fromBlock", l.getLastPolledBlock()+1)
	return nil
}

// runPolling periodically queries for new events, starting with an immediate poll.
func (l *EVMRequestListener) runPolling(ctx context.Context, sub *subscription) {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		if err := l.pollForEvents(ctx, sub); err != nil && ctx.Err() == nil {
			l.lggr.Warnw("Failed to poll for oracle events", "error", err)
		}

		select {
		case <-ctx.Done():
			l.lggr.Debugw("Context cancelled, exiting polling loop")
			return
		case <-ticker.C:
		}
	}
}

// pollForEvents reads both events in (lastPolledBlock, head].
func (l *EVMRequestListener) pollForEvents(ctx context.Context, sub *subscription) error {
	fromBlock := l.getLastPolledBlock() + 1

	toBlock, err := l.heads.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}
	if toBlock < fromBlock {
		return nil
	}

	opts := &bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}

	requested, err := l.filterer.FilterAnalysisRequested(opts)
	if err != nil {
		return fmt.Errorf("failed to filter AnalysisRequested events: %w", err)
	}
	defer func() { _ = requested.Close() }()

	var eventCount int
	for requested.Next() {
		eventCount++
		if !l.deliver(ctx, sub, requested.Event) {
			return ctx.Err()
		}
	}
	if err := requested.Error(); err != nil {
		return fmt.Errorf("filter iteration error: %w", err)
	}

	received, err := l.filterer.FilterAnalysisReceived(opts)
	if err != nil {
		l.lggr.Warnw("Failed to filter AnalysisReceived events", "error", err)
	} else {
		for received.Next() {
			l.observe(ctx, received.Event)
		}
		_ = received.Close()
	}

	l.setLastPolledBlock(toBlock)

	if eventCount > 0 {
		l.lggr.Debugw("Polled analysis requests",
			"fromBlock", fromBlock,
			"toBlock", toBlock,
			"eventCount", eventCount)
	}
	return nil
}

// deliver forwards a decoded request. It returns false when the subscription was cancelled.
func (l *EVMRequestListener) deliver(ctx context.Context, sub *subscription, ev *basexoracle.BaseXOracleAnalysisRequested) bool {
	if ev.Raw.Removed {
		l.lggr.Debugw("Ignoring removed log", "txHash", ev.Raw.TxHash.Hex())
		return true
	}

	req := protocol.AnalysisRequestEvent{
		VideoID:     ev.VideoId,
		Network:     l.network,
		TxHash:      ev.Raw.TxHash.Hex(),
		BlockNumber: ev.Raw.BlockNumber,
		LogIndex:    ev.Raw.Index,
	}
	if ev.Timestamp != nil && ev.Timestamp.IsUint64() {
		req.Timestamp = ev.Timestamp.Uint64()
	}

	l.lggr.Infow("Analysis requested",
		"videoID", req.VideoID,
		"timestamp", req.Timestamp,
		"txHash", req.TxHash,
		"blockNumber", req.BlockNumber)

	select {
	case sub.requests <- req:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *EVMRequestListener) observe(ctx context.Context, ev *basexoracle.BaseXOracleAnalysisReceived) {
	received := protocol.AnalysisReceivedEvent{
		VideoID:     ev.VideoId,
		Metadata:    ev.Metadata,
		Network:     l.network,
		TxHash:      ev.Raw.TxHash.Hex(),
		BlockNumber: ev.Raw.BlockNumber,
	}
	if ev.Score != nil && ev.Score.IsUint64() {
		received.Score = ev.Score.Uint64()
	}

	l.lggr.Infow("Analysis received",
		"videoID", received.VideoID,
		"metadata", received.Metadata,
		"score", received.Score,
		"txHash", received.TxHash)

	if l.observer != nil {
		l.observer.OnAnalysisReceived(ctx, received)
	}
}

func (l *EVMRequestListener) getLastPolledBlock() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastPolledBlock
}

func (l *EVMRequestListener) setLastPolledBlock(block uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastPolledBlock = block
	l.polledOnce = true
}

var _ protocol.RequestSubscription = (*subscription)(nil)

type subscription struct {
	requests chan protocol.AnalysisRequestEvent
	errCh    chan error
	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
	failOnce sync.Once
}

func (s *subscription) Requests() <-chan protocol.AnalysisRequestEvent {
	return s.requests
}

func (s *subscription) Err() <-chan error {
	return s.errCh
}

// Unsubscribe cancels delivery and waits for the producers to exit.
func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

// fail records a terminal error and stops the subscription.
func (s *subscription) fail(err error) {
	s.failOnce.Do(func() {
		s.errCh <- err
		s.cancel()
	})
}
