package decoder

import (
	"bytes"
	"encoding/binary"

	"github.com/stretchr/testify/mock"

	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/names"
)

func newTestDecoder(opts Options) *Decoder {
	return New(names.New("", false), opts)
}

func ep(net uint16, node, skt uint8) core.Endpoint {
	return core.Endpoint{Addr: core.Addr{Net: net, Node: node}, Socket: skt}
}

// longDDP builds a long DDP header followed by payload.
func longDDP(src, dst core.Endpoint, typ uint8, payload []byte) []byte {
	b := make([]byte, ddpHeaderLen, ddpHeaderLen+len(payload))
	binary.BigEndian.PutUint16(b[0:2], uint16(ddpHeaderLen+len(payload)))
	binary.BigEndian.PutUint16(b[4:6], dst.Net)
	binary.BigEndian.PutUint16(b[6:8], src.Net)
	b[8] = dst.Node
	b[9] = src.Node
	b[10] = dst.Socket
	b[11] = src.Socket
	b[12] = typ
	return append(b, payload...)
}

// shortDDP builds a short DDP header followed by payload.
func shortDDP(srcSkt, dstSkt, typ uint8, payload []byte) []byte {
	b := []byte{0, byte(ddpShortHeaderLen + len(payload)), dstSkt, srcSkt, typ}
	return append(b, payload...)
}

func llapFrame(dst, src, typ uint8, payload []byte) []byte {
	return append([]byte{dst, src, typ}, payload...)
}

func atpHdr(control, bitmap uint8, tid uint16, userData uint32) []byte {
	b := make([]byte, atpHeaderLen)
	b[0] = control
	b[1] = bitmap
	binary.BigEndian.PutUint16(b[2:4], tid)
	binary.BigEndian.PutUint32(b[4:8], userData)
	return b
}

// tuple builds an NBP tuple with object, type and zone names.
func tuple(e core.Endpoint, enum uint8, object, typ, zone string) []byte {
	b := []byte{byte(e.Net >> 8), byte(e.Net), e.Node, e.Socket, enum}
	for _, s := range []string{object, typ, zone} {
		b = append(b, byte(len(s)))
		b = append(b, s...)
	}
	return b
}

func nbpMsg(control, id uint8, tuples ...[]byte) []byte {
	b := []byte{control, id}
	for _, t := range tuples {
		b = append(b, t...)
	}
	return b
}

func decodeLLAP(d *Decoder, data []byte, length int) (string, int) {
	var buf bytes.Buffer
	n := d.LLAP(&buf, data, length)
	return buf.String(), n
}

func decodeDDP(d *Decoder, data []byte, length int) string {
	var buf bytes.Buffer
	d.DDP(&buf, data, length)
	return buf.String()
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) Decoded(proto string)   { m.Called(proto) }
func (m *mockObserver) Truncated(proto string) { m.Called(proto) }
func (m *mockObserver) Anomaly(proto string)   { m.Called(proto) }
func (m *mockObserver) Unknown(proto string)   { m.Called(proto) }
