//go:build linux

// Package afpacket implements live EtherTalk capture on Linux using
// AF_PACKET with a TPACKET_V3 ring.
package afpacket

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/log"
	"firestige.xyz/atalkdump/internal/source"
)

const Name = "afpacket"

// Config selects the interface and ring size.
type Config struct {
	Interface    string
	SnapLen      int
	BufferSizeMB int
	// Filter is installed in the kernel when set.
	Filter *source.Filter
}

// Source captures Ethernet frames from one interface.
type Source struct {
	cfg       Config
	frameSize int
	blockSize int
	numBlocks int

	received atomic.Uint64
	dropped  atomic.Uint64
}

// New validates cfg and sizes the ring. The socket is opened by Capture.
func New(cfg Config) (*Source, error) {
	if cfg.Interface == "" {
		return nil, fmt.Errorf("afpacket: interface is required")
	}
	if cfg.SnapLen <= 0 {
		cfg.SnapLen = 65535
	}
	if cfg.BufferSizeMB <= 0 {
		cfg.BufferSizeMB = 8
	}
	frameSize, blockSize, numBlocks, err := recomputeSize(cfg.BufferSizeMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, fmt.Errorf("afpacket: %w", err)
	}
	return &Source{
		cfg:       cfg,
		frameSize: frameSize,
		blockSize: blockSize,
		numBlocks: numBlocks,
	}, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) LinkType() layers.LinkType { return layers.LinkTypeEthernet }

// Capture owns the TPacket handle for its whole lifetime; the handle is
// closed only after the read loop has stopped touching the ring.
func (s *Source) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	handle, err := afpacket.NewTPacket(
		afpacket.OptInterface(s.cfg.Interface),
		afpacket.OptFrameSize(s.frameSize),
		afpacket.OptBlockSize(s.blockSize),
		afpacket.OptNumBlocks(s.numBlocks),
		afpacket.OptPollTimeout(100*time.Millisecond),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return fmt.Errorf("failed to create TPacket handle: %w", err)
	}
	defer handle.Close()

	logger := log.GetLogger().WithField("interface", s.cfg.Interface)

	if s.cfg.Filter != nil {
		if err := handle.SetBPF(s.cfg.Filter.Raw()); err != nil {
			return fmt.Errorf("failed to set BPF: %w", err)
		}
		logger.Debug("appletalk filter installed")
	}
	if err := handle.InitSocketStats(); err != nil {
		logger.WithError(err).Warn("failed to init socket stats")
	}

	logger.Info("afpacket capture started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("afpacket capture stopped")
			return nil
		default:
		}

		data, ci, err := handle.ZeroCopyReadPacketData()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("afpacket capture stopped")
				return nil
			}
			if errors.Is(err, afpacket.ErrTimeout) || errors.Is(err, afpacket.ErrPoll) {
				continue
			}
			return fmt.Errorf("afpacket read: %w", err)
		}
		s.received.Add(1)
		if _, v3, err := handle.SocketStats(); err == nil {
			s.dropped.Store(uint64(v3.Drops()))
		}

		// data is only valid until the next read.
		buf := make([]byte, len(data))
		copy(buf, data)
		raw := core.RawPacket{
			Data:       buf,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
		}

		select {
		case output <- raw:
		case <-ctx.Done():
			logger.Info("afpacket capture stopped")
			return nil
		default:
			s.dropped.Add(1)
			logger.Debug("output channel full, dropping packet")
		}
	}
}

func (s *Source) Stats() source.Stats {
	return source.Stats{
		PacketsReceived: s.received.Load(),
		PacketsDropped:  s.dropped.Load(),
	}
}

func (s *Source) Close() error { return nil }
