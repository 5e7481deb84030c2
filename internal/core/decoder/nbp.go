package decoder

import (
	"fmt"
	"io"

	"firestige.xyz/atalkdump/internal/core"
)

const (
	nbpHeaderLen = 2
	nbpTupleLen  = 5 // net, node, socket, enumerator; names follow
	nbpMinTuple  = 8 // tuple header plus three empty names

	nbpBrRq      = 0x10
	nbpLkUp      = 0x20
	nbpLkUpReply = 0x30
)

// nbpTuple is the fixed part of an NBP tuple.
type nbpTuple struct {
	core.Endpoint
	Enumerator uint8
}

func parseTuple(b []byte) nbpTuple {
	return nbpTuple{
		Endpoint:   core.Endpoint{Addr: core.Addr{Net: be16(b[0:2]), Node: b[2]}, Socket: b[3]},
		Enumerator: b[4],
	}
}

// nbp prints a Name Binding Protocol packet. src is the DDP source the
// tuples are compared against.
func (d *Decoder) nbp(w io.Writer, data []byte, length int, src core.Endpoint) {
	if length < nbpHeaderLen {
		d.truncated(w, core.ProtoNBP, " truncated-nbp %d", length)
		return
	}
	if length-nbpHeaderLen < nbpMinTuple {
		d.truncated(w, core.ProtoNBP, " truncated-nbp %d", length)
		return
	}
	length -= nbpHeaderLen

	c := newCursor(data)
	if !c.has(nbpHeaderLen) {
		d.truncated(w, core.ProtoNBP, tstr)
		return
	}
	hdr := c.next(nbpHeaderLen)
	control, id := hdr[0], hdr[1]
	count := control & 0x0f

	switch op := control & 0xf0; op {
	case nbpBrRq, nbpLkUp:
		if op == nbpLkUp {
			fmt.Fprintf(w, " nbp-lkup %d:", id)
		} else {
			fmt.Fprintf(w, " nbp-brRq %d:", id)
		}
		if !c.has(nbpTupleLen) {
			d.truncated(w, core.ProtoNBP, tstr)
			return
		}
		tp := parseTuple(c.next(nbpTupleLen))
		d.nbpName(w, c)

		// A request carries exactly one tuple, naming the requester
		// itself, with a zero enumerator.
		if count != 1 {
			d.anomaly(w, core.ProtoNBP, " [ntup=%d]", count)
		}
		if tp.Enumerator != 0 {
			d.anomaly(w, core.ProtoNBP, " [enum=%d]", tp.Enumerator)
		}
		if tp.Endpoint != src {
			d.anomaly(w, core.ProtoNBP, " [addr=%s.%d]", d.addr(tp.Net, tp.Node), tp.Socket)
		}
		d.obs.Decoded(core.ProtoNBP)

	case nbpLkUpReply:
		fmt.Fprintf(w, " nbp-reply %d:", id)
		// count is an upper bound; stop at the first tuple that runs out.
		for i := count; i != 0; i-- {
			if !d.nbpTuple(w, c, src) {
				break
			}
		}
		d.obs.Decoded(core.ProtoNBP)

	default:
		d.unknown(w, core.ProtoNBP, " nbp-0x%x  %d (%d)", control, id, length)
	}
}

// nbpTuple prints one reply tuple and reports whether the next tuple may
// be read.
func (d *Decoder) nbpTuple(w io.Writer, c *cursor, src core.Endpoint) bool {
	if !c.has(nbpTupleLen) {
		d.truncated(w, core.ProtoNBP, tstr)
		return false
	}
	tp := parseTuple(c.next(nbpTupleLen))
	ok := d.nbpName(w, c)

	if tp.Enumerator != 1 {
		fmt.Fprintf(w, "(%d)", tp.Enumerator)
	}
	if tp.Socket != src.Socket {
		fmt.Fprintf(w, " %d", tp.Socket)
	}
	if tp.Addr != src.Addr {
		d.anomaly(w, core.ProtoNBP, " [addr=%s]", d.addr(tp.Net, tp.Node))
	}
	return ok
}

// nbpName prints ` "object:type@zone"`. The closing quote is only printed
// when all three strings were read.
func (d *Decoder) nbpName(w io.Writer, c *cursor) bool {
	io.WriteString(w, ` "`)
	if !d.cstring(w, c) {
		return false
	}
	io.WriteString(w, ":")
	if !d.cstring(w, c) {
		return false
	}
	io.WriteString(w, "@")
	if !d.cstring(w, c) {
		return false
	}
	io.WriteString(w, `"`)
	return true
}
