package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/basexlabs/basex-oracle/protocol"
)

// mockAnalysisAPI is a testify mock of protocol.AnalysisAPI.
type mockAnalysisAPI struct {
	mock.Mock
}

func (m *mockAnalysisAPI) RequestAnalysis(ctx context.Context, videoID string) (string, error) {
	args := m.Called(ctx, videoID)
	return args.String(0), args.Error(1)
}

// memoryContract is an in-memory oracle contract.
type memoryContract struct {
	mu        sync.Mutex
	network   string
	records   map[string]protocol.AnalysisRecord
	submitted []submission
	queryErr  error
	submitErr error
	block     uint64
}

type submission struct {
	VideoID string
	Result  protocol.AnalysisResult
}

func newMemoryContract(network string) *memoryContract {
	return &memoryContract{network: network, records: make(map[string]protocol.AnalysisRecord)}
}

func (c *memoryContract) SubmitResult(ctx context.Context, videoID string, result protocol.AnalysisResult) (*protocol.TxReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	c.block++
	c.submitted = append(c.submitted, submission{VideoID: videoID, Result: result})
	c.records[videoID] = protocol.AnalysisRecord{Metadata: result.Metadata, Score: result.Score, Exists: true}
	return &protocol.TxReceipt{
		Network:     c.network,
		TxHash:      fmt.Sprintf("0x%064x", c.block),
		BlockNumber: c.block,
		GasUsed:     21_000,
		Status:      protocol.TxStatusSuccess,
	}, nil
}

func (c *memoryContract) QueryResult(ctx context.Context, videoID string) (protocol.AnalysisRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queryErr != nil {
		return protocol.AnalysisRecord{}, c.queryErr
	}
	return c.records[videoID], nil
}

func (c *memoryContract) submissions() []submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]submission(nil), c.submitted...)
}

func resolverFor(contracts ...*memoryContract) ContractResolver {
	byName := make(map[string]protocol.OracleContract, len(contracts))
	for _, c := range contracts {
		byName[c.network] = c
	}
	return func(network string) (protocol.OracleContract, bool) {
		c, ok := byName[network]
		return c, ok
	}
}

// recordingMonitoring counts metric calls per network.
type recordingMonitoring struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMonitoring() *recordingMonitoring {
	return &recordingMonitoring{counts: make(map[string]int)}
}

func (m *recordingMonitoring) Metrics() MetricLabeler {
	return &recordingLabeler{m: m}
}

func (m *recordingMonitoring) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

type recordingLabeler struct {
	m       *recordingMonitoring
	network string
}

func (l *recordingLabeler) With(keyValues ...string) MetricLabeler {
	next := &recordingLabeler{m: l.m, network: l.network}
	for i := 0; i+1 < len(keyValues); i += 2 {
		if keyValues[i] == "network" {
			next.network = keyValues[i+1]
		}
	}
	return next
}

func (l *recordingLabeler) inc(name string) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	l.m.counts[l.network+"/"+name]++
}

func (l *recordingLabeler) IncrementRequestsReceived(ctx context.Context)  { l.inc("received") }
func (l *recordingLabeler) IncrementRequestsFulfilled(ctx context.Context) { l.inc("fulfilled") }
func (l *recordingLabeler) IncrementRequestsSkipped(ctx context.Context)   { l.inc("skipped") }
func (l *recordingLabeler) IncrementRequestsFailed(ctx context.Context, stage string) {
	l.inc("failed:" + stage)
}
func (l *recordingLabeler) IncrementAnalysesObserved(ctx context.Context) { l.inc("observed") }
func (l *recordingLabeler) IncrementResubscriptions(ctx context.Context)  { l.inc("resubscribed") }
func (l *recordingLabeler) RecordProcessingDuration(ctx context.Context, duration time.Duration) {
	l.inc("duration")
}

// chanSource is a RequestSource whose subscriptions are fed by the test.
type chanSource struct {
	mu        sync.Mutex
	subs      []*chanSubscription
	subscribe chan *chanSubscription
	failNext  error
}

func newChanSource() *chanSource {
	return &chanSource{subscribe: make(chan *chanSubscription, 16)}
}

func (s *chanSource) Subscribe(ctx context.Context) (protocol.RequestSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}
	sub := &chanSubscription{
		requests: make(chan protocol.AnalysisRequestEvent),
		errCh:    make(chan error, 1),
		done:     make(chan struct{}),
	}
	s.subs = append(s.subs, sub)
	s.subscribe <- sub
	return sub, nil
}

type chanSubscription struct {
	requests chan protocol.AnalysisRequestEvent
	errCh    chan error
	done     chan struct{}
	once     sync.Once
}

func (s *chanSubscription) Requests() <-chan protocol.AnalysisRequestEvent { return s.requests }
func (s *chanSubscription) Err() <-chan error                              { return s.errCh }
func (s *chanSubscription) Unsubscribe()                                   { s.once.Do(func() { close(s.done) }) }

// send delivers ev unless the subscription was cancelled.
func (s *chanSubscription) send(ev protocol.AnalysisRequestEvent) bool {
	select {
	case s.requests <- ev:
		return true
	case <-s.done:
		return false
	}
}

// fail ends the subscription with err.
func (s *chanSubscription) fail(err error) {
	s.errCh <- err
	close(s.errCh)
	close(s.requests)
}
