// Package ltoudp implements a capture source for LocalTalk frames tunnelled
// over UDP multicast (LToUDP), as used by LocalTalk bridges and emulators.
//
// Each datagram carries a 4-byte sender identifier followed by one LLAP
// frame without its FCS.
package ltoudp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/gopacket/layers"
	"golang.org/x/net/ipv4"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/log"
	"firestige.xyz/atalkdump/internal/source"
)

const (
	Name = "ltoudp"

	// DefaultGroup and DefaultPort are the well-known LToUDP endpoint.
	DefaultGroup = "239.192.76.84"
	DefaultPort  = 1954

	headerLen    = 4
	maxDatagram  = 65535
	pollInterval = 200 * time.Millisecond
)

// Config selects the multicast group to join.
type Config struct {
	Interface string // empty = system default
	Group     string
	Port      int
}

// Source receives LToUDP datagrams and yields the LLAP frames inside.
type Source struct {
	pc    net.PacketConn
	conn  *ipv4.PacketConn
	group net.Addr
	ifi   *net.Interface

	received atomic.Uint64
	dropped  atomic.Uint64
}

// Listen binds the LToUDP port and joins the multicast group.
func Listen(cfg Config) (*Source, error) {
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	ip := net.ParseIP(cfg.Group)
	if ip == nil || ip.To4() == nil || !ip.IsMulticast() {
		return nil, fmt.Errorf("ltoudp group %q is not an IPv4 multicast address", cfg.Group)
	}

	var ifi *net.Interface
	if cfg.Interface != "" {
		var err error
		if ifi, err = net.InterfaceByName(cfg.Interface); err != nil {
			return nil, fmt.Errorf("ltoudp interface %s: %w", cfg.Interface, err)
		}
	}

	c, err := net.ListenPacket("udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("ltoudp listen on port %d: %w", cfg.Port, err)
	}
	s := NewFromConn(c)
	s.group = &net.UDPAddr{IP: ip}
	s.ifi = ifi
	if err := s.conn.JoinGroup(ifi, s.group); err != nil {
		c.Close()
		return nil, fmt.Errorf("ltoudp join group %s: %w", cfg.Group, err)
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"group":     cfg.Group,
		"port":      cfg.Port,
		"interface": cfg.Interface,
	}).Info("joined ltoudp multicast group")
	return s, nil
}

// NewFromConn receives LToUDP datagrams on an already bound socket.
func NewFromConn(c net.PacketConn) *Source {
	return &Source{pc: c, conn: ipv4.NewPacketConn(c)}
}

// Parse returns the LLAP frame carried by an LToUDP datagram.
func Parse(datagram []byte) ([]byte, error) {
	if len(datagram) < headerLen {
		return nil, fmt.Errorf("%w: ltoudp datagram of %d bytes", core.ErrShortDatagram, len(datagram))
	}
	return datagram[headerLen:], nil
}

func (s *Source) Name() string { return Name }

func (s *Source) LinkType() layers.LinkType { return layers.LinkTypeLTalk }

// LocalAddr returns the bound socket address.
func (s *Source) LocalAddr() net.Addr { return s.pc.LocalAddr() }

// Capture receives datagrams until ctx is cancelled or the socket fails.
func (s *Source) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	logger := log.GetLogger().WithField("source", Name)
	buf := make([]byte, maxDatagram)

	for {
		if ctx.Err() != nil {
			return nil
		}

		// Wake up periodically to notice cancellation.
		if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return fmt.Errorf("ltoudp set deadline: %w", err)
		}
		n, _, src, err := s.conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("ltoudp read: %w", err)
		}
		ts := time.Now()

		frame, err := Parse(buf[:n])
		if err != nil {
			s.dropped.Add(1)
			logger.WithError(err).WithField("from", src.String()).Debug("dropping datagram")
			continue
		}
		s.received.Add(1)

		data := make([]byte, len(frame))
		copy(data, frame)
		raw := core.RawPacket{
			Data:       data,
			Timestamp:  ts,
			CaptureLen: uint32(len(data)),
			OrigLen:    uint32(len(data)),
		}

		// Prefer dropping over blocking the socket.
		select {
		case output <- raw:
		case <-ctx.Done():
			return nil
		default:
			s.dropped.Add(1)
			logger.Debug("output channel full, dropping frame")
		}
	}
}

func (s *Source) Stats() source.Stats {
	return source.Stats{
		PacketsReceived: s.received.Load(),
		PacketsDropped:  s.dropped.Load(),
	}
}

func (s *Source) Close() error {
	if s.group != nil {
		if err := s.conn.LeaveGroup(s.ifi, s.group); err != nil {
			log.GetLogger().WithError(err).Debug("ltoudp leave group failed")
		}
	}
	return s.conn.Close()
}
