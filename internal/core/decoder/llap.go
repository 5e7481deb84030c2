package decoder

import (
	"fmt"
	"io"

	"firestige.xyz/atalkdump/internal/core"
)

const (
	llapHeaderLen     = 3
	ddpHeaderLen      = 13
	ddpShortHeaderLen = 5
)

// LocalTalk prints a frame captured on a LocalTalk interface and returns
// the number of bytes the link layer accounts for: the header length, or
// everything captured when not even the headers were captured.
func (d *Decoder) LocalTalk(w io.Writer, data []byte, length int) int {
	hdrlen := d.LLAP(w, data, length)
	if hdrlen == 0 {
		return len(data)
	}
	return hdrlen
}

// LLAP prints an LLAP frame and the DDP datagram inside it.
//
// It returns the header bytes consumed; 0 means the headers were not
// captured. A declared length too short for a header is a different case:
// the frame simply ends there, and the declared remainder is returned.
func (d *Decoder) LLAP(w io.Writer, data []byte, length int) int {
	if length < llapHeaderLen {
		d.truncated(w, core.ProtoLLAP, " [|llap %d]", length)
		return length
	}
	c := newCursor(data)
	if !c.has(llapHeaderLen) {
		d.truncated(w, core.ProtoLLAP, " [|llap]")
		return 0
	}
	lap := parseLLAP(c.next(llapHeaderLen))
	length -= llapHeaderLen
	hdrlen := llapHeaderLen

	switch lap.Type {
	case core.LAPShortDDP:
		if length < ddpShortHeaderLen {
			d.truncated(w, core.ProtoDDP, " [|sddp %d]", length)
			return length
		}
		if !c.has(ddpShortHeaderLen) {
			d.truncated(w, core.ProtoDDP, " [|sddp]")
			return 0
		}
		h := parseShortDDP(lap, c.next(ddpShortHeaderLen))
		d.printEndpoints(w, h, ":")
		length -= ddpShortHeaderLen
		hdrlen += ddpShortHeaderLen
		d.dispatch(w, c.rest(), length, h)

	case core.LAPDDP:
		if length < ddpHeaderLen {
			d.truncated(w, core.ProtoDDP, " [|ddp %d]", length)
			return length
		}
		if !c.has(ddpHeaderLen) {
			d.truncated(w, core.ProtoDDP, " [|ddp]")
			return 0
		}
		h := parseDDP(c.next(ddpHeaderLen))
		d.printEndpoints(w, h, ":")
		length -= ddpHeaderLen
		hdrlen += ddpHeaderLen
		d.dispatch(w, c.rest(), length, h)

	default:
		d.unknown(w, core.ProtoLLAP, "%d > %d at-lap#%d %d", lap.Src, lap.Dst, lap.Type, length)
	}
	return hdrlen
}

// DDP prints a datagram that starts directly with a long DDP header, as
// carried by EtherTalk, TokenTalk and FDDI.
func (d *Decoder) DDP(w io.Writer, data []byte, length int) {
	if !d.opts.LinkDetail {
		io.WriteString(w, "AT ")
	}
	if length < ddpHeaderLen {
		d.truncated(w, core.ProtoDDP, " [|ddp %d]", length)
		return
	}
	c := newCursor(data)
	if !c.has(ddpHeaderLen) {
		d.truncated(w, core.ProtoDDP, " [|ddp]")
		return
	}
	h := parseDDP(c.next(ddpHeaderLen))
	d.printEndpoints(w, h, ": ")
	d.dispatch(w, c.rest(), length-ddpHeaderLen, h)
}

// printEndpoints prints "src.skt > dst.skt" followed by sep.
func (d *Decoder) printEndpoints(w io.Writer, h core.DDPHeader, sep string) {
	fmt.Fprintf(w, "%s.%s > %s.%s%s",
		d.addr(h.Src.Net, h.Src.Node), d.socket(h.Src.Socket),
		d.addr(h.Dst.Net, h.Dst.Node), d.socket(h.Dst.Socket),
		sep)
}

func parseLLAP(b []byte) core.LLAPHeader {
	return core.LLAPHeader{Dst: b[0], Src: b[1], Type: b[2]}
}

// parseDDP decodes a 13-byte long DDP header.
func parseDDP(b []byte) core.DDPHeader {
	return core.DDPHeader{
		Length:   be16(b[0:2]),
		Checksum: be16(b[2:4]),
		Dst:      core.Endpoint{Addr: core.Addr{Net: be16(b[4:6]), Node: b[8]}, Socket: b[10]},
		Src:      core.Endpoint{Addr: core.Addr{Net: be16(b[6:8]), Node: b[9]}, Socket: b[11]},
		Type:     b[12],
	}
}

// parseShortDDP decodes a 5-byte short DDP header; nodes come from the LLAP
// header and the network is the local one (0).
func parseShortDDP(lap core.LLAPHeader, b []byte) core.DDPHeader {
	return core.DDPHeader{
		Short:  true,
		Length: be16(b[0:2]),
		Dst:    core.Endpoint{Addr: core.Addr{Node: lap.Dst}, Socket: b[2]},
		Src:    core.Endpoint{Addr: core.Addr{Node: lap.Src}, Socket: b[3]},
		Type:   b[4],
	}
}
