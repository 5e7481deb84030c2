// Package source provides capture inputs and link-level frame handling.
package source

import (
	"context"
	"sync/atomic"

	"github.com/google/gopacket/layers"

	"firestige.xyz/atalkdump/internal/core"
)

// Source produces raw packets of a single link type.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// LinkType is the link-layer framing of every packet produced.
	LinkType() layers.LinkType
	// Capture sends packets to output until the input is exhausted, ctx
	// is cancelled or a read fails. Exhaustion and cancellation return nil.
	Capture(ctx context.Context, output chan<- core.RawPacket) error
	// Stats returns capture statistics.
	Stats() Stats
	// Close releases the underlying input.
	Close() error
}

// Stats represents capture statistics.
type Stats struct {
	PacketsReceived uint64
	PacketsDropped  uint64
}

// Static replays a fixed set of packets. It backs hex input on the command
// line.
type Static struct {
	name     string
	linkType layers.LinkType
	packets  []core.RawPacket
	received atomic.Uint64
}

// NewStatic creates a source that yields packets once, in order.
func NewStatic(name string, linkType layers.LinkType, packets ...core.RawPacket) *Static {
	return &Static{name: name, linkType: linkType, packets: packets}
}

func (s *Static) Name() string              { return s.name }
func (s *Static) LinkType() layers.LinkType { return s.linkType }
func (s *Static) Close() error              { return nil }

func (s *Static) Stats() Stats {
	return Stats{PacketsReceived: s.received.Load()}
}

// Capture sends every packet, blocking on a full output.
func (s *Static) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	for _, raw := range s.packets {
		select {
		case output <- raw:
			s.received.Add(1)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
