// Package file implements a capture source reading pcap and pcapng files.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/log"
	"firestige.xyz/atalkdump/internal/source"
)

const Name = "file"

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Source reads packets from a capture file.
type Source struct {
	path    string
	snaplen int
	closer  io.Closer
	reader  packetReader

	received atomic.Uint64
}

// Open opens a pcap or pcapng file. snaplen > 0 further limits the bytes
// handed on per packet.
func Open(path string, snaplen int) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}
	s, err := newSource(path, f, snaplen)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewReader reads a capture from r.
func NewReader(name string, r io.Reader, snaplen int) (*Source, error) {
	return newSource(name, r, snaplen)
}

func newSource(name string, r io.Reader, snaplen int) (*Source, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header of %s: %w", name, err)
	}

	var pr packetReader
	if bytes.Equal(magic, pcapngMagic) {
		pr, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		pr, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse capture header of %s: %w", name, err)
	}

	return &Source{path: name, snaplen: snaplen, reader: pr}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) LinkType() layers.LinkType {
	return s.reader.LinkType()
}

// Capture reads packets until end of file or cancellation.
func (s *Source) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	if s.reader == nil {
		return core.ErrSourceClosed
	}
	logger := log.GetLogger().WithField("file", s.path)
	logger.WithField("link_type", s.LinkType().String()).Debug("reading capture file")

	for {
		if ctx.Err() != nil {
			return nil
		}

		data, ci, err := s.reader.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				logger.WithField("packets", s.received.Load()).Debug("capture file exhausted")
				return nil
			}
			return fmt.Errorf("failed to read packet: %w", err)
		}
		if s.snaplen > 0 && len(data) > s.snaplen {
			data = data[:s.snaplen]
		}
		s.received.Add(1)

		raw := core.RawPacket{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(len(data)),
			OrigLen:    uint32(ci.Length),
		}

		// A file has no reason to drop; wait for the consumer.
		select {
		case output <- raw:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Source) Stats() source.Stats {
	return source.Stats{PacketsReceived: s.received.Load()}
}

func (s *Source) Close() error {
	s.reader = nil
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}
