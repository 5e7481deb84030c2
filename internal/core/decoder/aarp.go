package decoder

import (
	"fmt"
	"io"
	"net"

	"firestige.xyz/atalkdump/internal/core"
)

const (
	aarpLen = 28

	aarpHWEthernet = 1

	aarpRequest  = 1
	aarpResponse = 2
	aarpProbe    = 3
)

type aarpPacket struct {
	HType  uint16
	PType  uint16
	HALen  uint8
	PALen  uint8
	Op     uint16
	HSAddr net.HardwareAddr
	PSAddr core.Addr
	HDAddr net.HardwareAddr
	PDAddr core.Addr
}

func parseAARP(b []byte) aarpPacket {
	return aarpPacket{
		HType:  be16(b[0:2]),
		PType:  be16(b[2:4]),
		HALen:  b[4],
		PALen:  b[5],
		Op:     be16(b[6:8]),
		HSAddr: net.HardwareAddr(b[8:14]),
		PSAddr: aarpProtoAddr(b[14:18]),
		HDAddr: net.HardwareAddr(b[18:24]),
		PDAddr: aarpProtoAddr(b[24:28]),
	}
}

// aarpProtoAddr decodes a 4-byte AARP protocol address: pad, net, node.
func aarpProtoAddr(b []byte) core.Addr {
	return core.Addr{Net: be16(b[1:3]), Node: b[3]}
}

// AARP prints an AppleTalk Address Resolution Protocol message.
func (d *Decoder) AARP(w io.Writer, data []byte, length int) {
	io.WriteString(w, "aarp ")
	c := newCursor(data)
	if !c.has(aarpLen) {
		d.truncated(w, core.ProtoAARP, " [|aarp]")
		return
	}
	if length < aarpLen {
		d.truncated(w, core.ProtoAARP, " [|aarp %d]", length)
		return
	}
	ap := parseAARP(c.next(aarpLen))

	if ap.HType == aarpHWEthernet && ap.PType == core.EtherTypeAppleTalk &&
		ap.HALen == 6 && ap.PALen == 4 {
		switch ap.Op {
		case aarpRequest:
			fmt.Fprintf(w, "who-has %s tell %s", d.atAddr(ap.PDAddr), d.atAddr(ap.PSAddr))
			d.obs.Decoded(core.ProtoAARP)
			return
		case aarpResponse:
			fmt.Fprintf(w, "reply %s is-at %s", d.atAddr(ap.PSAddr), ap.HSAddr)
			d.obs.Decoded(core.ProtoAARP)
			return
		case aarpProbe:
			fmt.Fprintf(w, "probe %s tell %s", d.atAddr(ap.PDAddr), d.atAddr(ap.PSAddr))
			d.obs.Decoded(core.ProtoAARP)
			return
		}
	}
	d.unknown(w, core.ProtoAARP, "len %d op %d htype %d ptype %#x halen %d palen %d",
		length, ap.Op, ap.HType, ap.PType, ap.HALen, ap.PALen)
}

func (d *Decoder) atAddr(a core.Addr) string {
	return d.addr(a.Net, a.Node)
}
