package protocol

import (
	"context"
)

// HealthReporter should be implemented by any type requiring health checks.
type HealthReporter interface {
	// Ready should return nil if ready, or an error message otherwise. From the k8s docs:
	// > ready means it's initialized and healthy means that it can accept traffic in kubernetes
	// See: https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/
	Ready() error
	// HealthReport returns a full health report of the callee including its dependencies.
	// Keys are based on Name(), with nil values when healthy or errors otherwise.
	// This should run very fast, so avoid doing computation and instead prefer reporting pre-calculated state.
	HealthReport() map[string]error
	// Name returns the fully qualified name of the component. Usually the logger name.
	Name() string
}

// Service represents a long-running service inside the Application.
//
// The simplest way to implement a Service is to embed a services.StateMachine
// and implement these calls in a safe manner.
type Service interface {
	// Start the service.
	//  - Must return promptly if the context is cancelled.
	//  - Must not retain the context after returning (only applies to start-up)
	Start(context.Context) error
	// Close stops the Service.
	// Invariants: Usually after this call the Service cannot be started
	// again, you need to build a new Service to do so.
	Close() error

	HealthReporter
}

// OracleContract is the chain access surface of a single network's oracle contract.
type OracleContract interface {
	// SubmitResult writes the analysis result for videoID on chain and waits for the transaction to be mined.
	SubmitResult(ctx context.Context, videoID string, result AnalysisResult) (*TxReceipt, error)
	// QueryResult reads the stored analysis for videoID. A missing record is returned with Exists=false.
	QueryResult(ctx context.Context, videoID string) (AnalysisRecord, error)
}

// AnalysisRequester submits new analysis requests on chain.
type AnalysisRequester interface {
	// RequestAnalysis sends a requestAnalysis transaction and returns its hash once broadcast.
	RequestAnalysis(ctx context.Context, videoID string) (string, error)
}

// RequestSource produces analysis request subscriptions for one network.
type RequestSource interface {
	// Subscribe starts delivering AnalysisRequested events. Calling Subscribe again
	// cancels the previously returned subscription first.
	Subscribe(ctx context.Context) (RequestSubscription, error)
}

// RequestSubscription is a cancellable stream of analysis requests.
// A subscription cannot be restarted once Unsubscribe has been called.
type RequestSubscription interface {
	// Requests delivers events in the order the chain source reports them.
	// The channel is closed when the subscription ends.
	Requests() <-chan AnalysisRequestEvent
	// Err receives at most one terminal error, then is closed.
	Err() <-chan error
	// Unsubscribe stops delivery. It is safe to call more than once.
	Unsubscribe()
}

// AnalysisObserver is notified about informational AnalysisReceived events.
type AnalysisObserver interface {
	OnAnalysisReceived(ctx context.Context, event AnalysisReceivedEvent)
}

// AnalysisAPI turns a video id into a "<metadata>|<score>" payload.
type AnalysisAPI interface {
	RequestAnalysis(ctx context.Context, videoID string) (string, error)
}

// ChainAccessor bundles everything the relay needs to serve one network.
type ChainAccessor interface {
	OracleContract
	AnalysisRequester
	// Network returns the configured network name.
	Network() string
	// ChainID returns the EVM chain id the accessor was verified against.
	ChainID() uint64
	// RequestSource returns the event source for analysis requests on this network.
	RequestSource() RequestSource
}

// VideoSource looks up video metadata by id. Unknown videos return ErrVideoNotFound.
type VideoSource interface {
	GetVideo(ctx context.Context, videoID string) (Video, error)
}
