package types

import "errors"

// Sentinel errors shared across services. Handlers translate these into
// HTTP status codes; everything else is a 500.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("requested item not found")
	// ErrBadRequest indicates invalid caller input.
	ErrBadRequest = errors.New("invalid request")
	// ErrUnauthenticated indicates a missing or mismatched service credential.
	ErrUnauthenticated = errors.New("invalid authentication token")
	// ErrLLMParseFailed indicates the model output could not be coerced into
	// the itinerary schema by any parsing strategy.
	ErrLLMParseFailed = errors.New("could not parse model response as JSON")
)
