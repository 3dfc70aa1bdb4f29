package breaker

import "errors"

// ErrCircuitOpen is returned by Do when the circuit is open and the guarded
// operation was not invoked.
var ErrCircuitOpen = errors.New("circuit breaker is open")
