package live

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned when an operation requires a bound
	// socket and the connection has not been established.
	ErrNotConnected = errors.New("live: not connected")

	// ErrClosed is returned for operations on a closed connection and to
	// settle queries that were still in flight when Close was called.
	ErrClosed = errors.New("live: connection closed")
)

// TimeoutError is returned by Query when no matching reply arrives before
// the configured deadline.
type TimeoutError struct {
	Address string
	Wait    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("live: no reply for %s within %s", e.Address, e.Wait)
}

// Timeout implements the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }
