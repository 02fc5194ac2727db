package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing or malformed network or service setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnectivity marks an endpoint that could not be reached or answered unexpectedly.
	ErrConnectivity = errors.New("connectivity error")
	// ErrValidation marks input that failed validation, e.g. a malformed video id.
	ErrValidation = errors.New("validation error")
	// ErrUpstreamAPI marks a failing or malformed response from an external API.
	ErrUpstreamAPI = errors.New("upstream api error")
	// ErrParse marks an analysis payload that could not be parsed. It is a kind of ErrUpstreamAPI.
	ErrParse = fmt.Errorf("%w: unparseable analysis payload", ErrUpstreamAPI)
	// ErrTransaction marks a transaction that could not be sent, confirmed, or that reverted.
	ErrTransaction = errors.New("transaction error")
	// ErrAlreadyFulfilled is returned when the contract already stores an analysis for the video.
	ErrAlreadyFulfilled = errors.New("analysis already fulfilled")
	// ErrVideoNotFound is returned when the video platform has no video with the requested id.
	ErrVideoNotFound = errors.New("video not found")
	// ErrNotVerified is returned when a chain connection is used before its endpoint was probed.
	ErrNotVerified = errors.New("chain connection not verified")
)

// Stage names the step of request processing that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageGuard    Stage = "guard"
	StageAnalyze  Stage = "analyze"
	StageParse    Stage = "parse"
	StageSubmit   Stage = "submit"
)

// ProcessingError wraps the failure of a single analysis request.
type ProcessingError struct {
	Network string
	VideoID string
	Stage   Stage
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s on %s failed at %s: %v", e.VideoID, e.Network, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
