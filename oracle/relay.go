package oracle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/smartcontractkit/chainlink-common/pkg/services"
)

const (
	DefaultResubscribeDelay = 5 * time.Second
	relayName               = "Relay"
)

var (
	errStreamClosed     = errors.New("subscription closed")
	errNotSubscribed    = errors.New("not subscribed yet")
	errNoRequestSources = errors.New("at least one request source is required")
)

// RelayParams configures a Relay.
type RelayParams struct {
	Lggr       logger.Logger
	Sources    map[string]protocol.RequestSource
	Processor  Processor
	Monitoring Monitoring
	// WorkersPerNetwork bounds concurrent processing per network. 1 keeps a network strictly sequential.
	WorkersPerNetwork int
	ResubscribeDelay  time.Duration
}

// Relay subscribes to every network's request source and feeds events to the processor.
// Networks are independent: a failing subscription on one never stalls another.
type Relay struct {
	services.StateMachine
	lggr             logger.Logger
	sources          map[string]protocol.RequestSource
	processor        Processor
	monitoring       Monitoring
	workers          int
	resubscribeDelay time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	statusMu sync.RWMutex
	status   map[string]error
}

var _ protocol.Service = (*Relay)(nil)

func NewRelay(p RelayParams) (*Relay, error) {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, fmt.Errorf("%s is not set", fieldName))
		}
	}
	appendIfNil(p.Lggr, "logger")
	appendIfNil(p.Processor, "processor")
	appendIfNil(p.Monitoring, "monitoring")
	if len(p.Sources) == 0 {
		errs = append(errs, errNoRequestSources)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	workers := p.WorkersPerNetwork
	if workers <= 0 {
		workers = 1
	}
	delay := p.ResubscribeDelay
	if delay <= 0 {
		delay = DefaultResubscribeDelay
	}

	status := make(map[string]error, len(p.Sources))
	for name := range p.Sources {
		status[name] = errNotSubscribed
	}

	return &Relay{
		lggr:             logger.Named(p.Lggr, relayName),
		sources:          maps.Clone(p.Sources),
		processor:        p.Processor,
		monitoring:       p.Monitoring,
		workers:          workers,
		resubscribeDelay: delay,
		status:           status,
	}, nil
}

// Start launches one processing task per network. It returns once the tasks are running.
func (r *Relay) Start(ctx context.Context) error {
	return r.StartOnce(relayName, func() error {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		r.cancel = cancel

		for _, name := range slices.Sorted(maps.Keys(r.sources)) {
			source := r.sources[name]
			r.wg.Go(func() {
				r.runNetwork(runCtx, name, source)
			})
		}

		r.lggr.Infow("Relay started", "networks", len(r.sources), "workersPerNetwork", r.workers)
		return nil
	})
}

// Close stops every subscription and waits for in-flight requests to finish.
func (r *Relay) Close() error {
	return r.StopOnce(relayName, func() error {
		r.lggr.Infow("Relay stopping")
		if r.cancel != nil {
			r.cancel()
		}
		r.wg.Wait()
		r.lggr.Infow("Relay stopped")
		return nil
	})
}

func (r *Relay) Name() string {
	return r.lggr.Name()
}

func (r *Relay) HealthReport() map[string]error {
	report := map[string]error{r.Name(): r.Healthy()}
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	for name, err := range r.status {
		report[r.Name()+"."+name] = err
	}
	return report
}

func (r *Relay) setStatus(network string, err error) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status[network] = err
}

// runNetwork keeps a subscription alive for one network until ctx is cancelled.
func (r *Relay) runNetwork(ctx context.Context, network string, source protocol.RequestSource) {
	lggr := logger.With(r.lggr, "network", network)
	metrics := r.monitoring.Metrics().With("network", network)
	// Close does not cancel processing; in-flight requests run to completion.
	procCtx := context.WithoutCancel(ctx)

	for first := true; ; first = false {
		if !first {
			metrics.IncrementResubscriptions(ctx)
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.resubscribeDelay):
			}
		}

		sub, err := source.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			lggr.Errorw("Failed to subscribe, retrying", "error", err, "delay", r.resubscribeDelay)
			r.setStatus(network, err)
			continue
		}
		r.setStatus(network, nil)
		lggr.Infow("Listening for analysis requests")

		err = r.consume(ctx, procCtx, lggr, metrics, sub)
		sub.Unsubscribe()
		if ctx.Err() != nil {
			return
		}
		lggr.Warnw("Subscription ended, resubscribing", "error", err, "delay", r.resubscribeDelay)
		r.setStatus(network, err)
	}
}

// consume drains sub until it ends or ctx is cancelled. It returns after every request it
// started has finished.
func (r *Relay) consume(ctx, procCtx context.Context, lggr logger.Logger, metrics MetricLabeler, sub protocol.RequestSubscription) error {
	var g errgroup.Group
	g.SetLimit(r.workers)
	defer func() { _ = g.Wait() }()

	requests, errCh := sub.Requests(), sub.Err()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			return err
		case event, ok := <-requests:
			if !ok {
				select {
				case err, ok := <-errCh:
					if ok && err != nil {
						return err
					}
				default:
				}
				return errStreamClosed
			}
			metrics.IncrementRequestsReceived(ctx)
			lggr.Infow("Processing analysis request", "videoID", event.VideoID, "txHash", event.TxHash, "blockNumber", event.BlockNumber)
			g.Go(func() error {
				r.handle(procCtx, lggr, event)
				return nil
			})
		}
	}
}

func (r *Relay) handle(ctx context.Context, lggr logger.Logger, event protocol.AnalysisRequestEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			lggr.Errorw("Recovered from panic while processing request", "videoID", event.VideoID, "panic", rec)
		}
	}()

	if _, err := r.processor.Process(ctx, event); err != nil {
		if errors.Is(err, protocol.ErrAlreadyFulfilled) {
			return
		}
		lggr.Errorw("Failed to process analysis request", "videoID", event.VideoID, "error", err)
	}
}

// MetricsObserver logs and counts AnalysisReceived events.
type MetricsObserver struct {
	lggr       logger.Logger
	monitoring Monitoring
}

var _ protocol.AnalysisObserver = (*MetricsObserver)(nil)

func NewMetricsObserver(lggr logger.Logger, monitoring Monitoring) *MetricsObserver {
	return &MetricsObserver{lggr: logger.Named(lggr, "AnalysisObserver"), monitoring: monitoring}
}

func (o *MetricsObserver) OnAnalysisReceived(ctx context.Context, event protocol.AnalysisReceivedEvent) {
	o.monitoring.Metrics().With("network", event.Network).IncrementAnalysesObserved(ctx)
	o.lggr.Infow("Analysis stored on chain",
		"network", event.Network,
		"videoID", event.VideoID,
		"score", event.Score,
		"txHash", event.TxHash)
}
