// Package sink defines outputs for decoded frames.
package sink

import "firestige.xyz/atalkdump/internal/core"

// Sink receives every decoded frame in capture order.
type Sink interface {
	Name() string
	Send(frame *core.DecodedFrame) error
	Close() error
}
