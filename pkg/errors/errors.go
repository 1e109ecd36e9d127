package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrEntityExists = errors.New("entity already exists")

	// ErrUnknownAgent indicates registry misuse: an operation referenced an
	// agent id that was never registered. This is a programmer error.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrNoEligibleAgents is returned when zero reachable agents remain for a
	// round. The round is aborted; the run continues.
	ErrNoEligibleAgents = errors.New("no eligible agents")

	// ErrDispatchTimeout marks a per-agent non-response. It never fails a round.
	ErrDispatchTimeout = errors.New("dispatch timed out")

	// ErrShapeMismatch marks a returned update whose tensor structure disagrees
	// with the global model. The update is discarded.
	ErrShapeMismatch = errors.New("parameter shape mismatch")

	// ErrInsufficientQuorum is raised when fewer participants respond within
	// the timeout than the configured minimum fraction.
	ErrInsufficientQuorum = errors.New("insufficient quorum")

	// ErrNoUpdates is a warning-level condition: aggregation received zero
	// updates and left the global model unchanged.
	ErrNoUpdates = errors.New("no updates returned for aggregation")
)
