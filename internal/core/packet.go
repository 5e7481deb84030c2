// Package core defines core data structures with zero external dependencies.
package core

import "time"

// RawPacket is one frame handed over by a capture source.
type RawPacket struct {
	Data       []byte    // Captured bytes, read-only
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Actual captured length
	OrigLen    uint32    // Original frame length on the wire
}

// FrameKind selects the decoder entry point for a classified frame.
type FrameKind int

const (
	FrameUnknown   FrameKind = iota
	FrameLocalTalk           // LLAP header first
	FrameDDP                 // long DDP header first (EtherTalk, TokenTalk, FDDI)
	FrameAARP                // AARP message
)

func (k FrameKind) String() string {
	switch k {
	case FrameLocalTalk:
		return "localtalk"
	case FrameDDP:
		return "ddp"
	case FrameAARP:
		return "aarp"
	default:
		return "unknown"
	}
}

// Frame is the AppleTalk part of a RawPacket once link framing is removed.
// Data is the captured region; Length is what the sender claims, and either
// may be the smaller.
type Frame struct {
	Kind   FrameKind
	Data   []byte
	Length int
}

// DecodedFrame is one printed frame, as handed to sinks.
type DecodedFrame struct {
	Raw  RawPacket
	Kind FrameKind
	Line string
}
