package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestAddrKey(t *testing.T) {
	tests := []struct {
		addr Addr
		key  uint32
	}{
		{Addr{}, 0},
		{Addr{Net: 100, Node: 5}, 100<<8 | 5},
		{Addr{Net: 0xffff, Node: BroadcastNode}, 0xffffff},
		{Addr{Net: 1, Node: 0}, 0x100},
	}

	for _, tt := range tests {
		if got := tt.addr.Key(); got != tt.key {
			t.Errorf("Key(%+v) = %#x, expected %#x", tt.addr, got, tt.key)
		}
	}
}

func TestFrameKindString(t *testing.T) {
	tests := map[FrameKind]string{
		FrameLocalTalk: "localtalk",
		FrameDDP:       "ddp",
		FrameAARP:      "aarp",
		FrameUnknown:   "unknown",
		FrameKind(42):  "unknown",
	}
	for kind, expected := range tests {
		if kind.String() != expected {
			t.Errorf("expected %q, got %q", expected, kind.String())
		}
	}
}

func TestStructZeroValues(t *testing.T) {
	t.Run("DDPHeader", func(t *testing.T) {
		var h DDPHeader
		if h.Short || h.Type != 0 || h.Src.Net != 0 {
			t.Errorf("unexpected non-zero header %+v", h)
		}
	})

	t.Run("Frame", func(t *testing.T) {
		var f Frame
		if f.Kind != FrameUnknown || f.Data != nil || f.Length != 0 {
			t.Errorf("unexpected non-zero frame %+v", f)
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	t.Run("ErrorMessages", func(t *testing.T) {
		tests := []struct {
			err     error
			message string
		}{
			{ErrUnsupportedLinkType, "atalk: unsupported link type"},
			{ErrNotAppleTalk, "atalk: frame does not carry appletalk"},
			{ErrShortDatagram, "atalk: datagram too short"},
			{ErrInvalidAddress, "atalk: invalid address"},
			{ErrConfigInvalid, "atalk: invalid configuration"},
		}

		for _, tt := range tests {
			if tt.err.Error() != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, tt.err.Error())
			}
		}
	})

	t.Run("ErrorWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("link type 9: %w", ErrUnsupportedLinkType)
		if !errors.Is(wrapped, ErrUnsupportedLinkType) {
			t.Error("errors.Is failed for wrapped error")
		}
	})
}
