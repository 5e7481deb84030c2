// Package pcapfile implements a sink saving the raw frames that were
// decoded, so a capture can be filtered down to its AppleTalk traffic.
package pcapfile

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/atalkdump/internal/core"
)

const Name = "pcapfile"

const defaultSnaplen = 65535

// Sink writes frames to a pcap stream.
type Sink struct {
	w      *pcapgo.Writer
	closer io.Closer
}

// Create creates a pcap file at path with the given link type.
func Create(path string, linkType layers.LinkType) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file %s: %w", path, err)
	}
	s, err := NewSink(f, linkType)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewSink writes a pcap header for linkType to w.
func NewSink(w io.Writer, linkType layers.LinkType) (*Sink, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(defaultSnaplen, linkType); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Sink{w: pw}, nil
}

func (s *Sink) Name() string { return Name }

func (s *Sink) Send(frame *core.DecodedFrame) error {
	raw := frame.Raw
	length := int(raw.OrigLen)
	if length < len(raw.Data) {
		length = len(raw.Data)
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     raw.Timestamp,
		CaptureLength: len(raw.Data),
		Length:        length,
	}
	if err := s.w.WritePacket(ci, raw.Data); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
