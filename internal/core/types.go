// Package core defines AppleTalk header types with zero external dependencies.
package core

// BroadcastNode is the node number meaning "any host on the network".
// Name tables store whole-network names under this node.
const BroadcastNode = 255

// DefaultNamesFile holds optional net and host name overrides.
const DefaultNamesFile = "/etc/atalk.names"

// LLAP types.
const (
	LAPShortDDP uint8 = 1
	LAPDDP      uint8 = 2
)

// DDP protocol types.
const (
	DDPTypeRTMP        uint8 = 1
	DDPTypeNBP         uint8 = 2
	DDPTypeATP         uint8 = 3
	DDPTypeEcho        uint8 = 4
	DDPTypeRTMPRequest uint8 = 5
	DDPTypeIP          uint8 = 22
	DDPTypeARP         uint8 = 23
	DDPTypeKLAP        uint8 = 0x4b
	DDPTypeEIGRP       uint8 = 88
)

// Well-known DDP sockets.
const (
	SocketRTMP uint8 = 1
	SocketNBP  uint8 = 2
	SocketEcho uint8 = 4
	SocketZIP  uint8 = 6
)

// EtherTypes carried in SNAP headers (or Ethernet II type fields).
const (
	EtherTypeAppleTalk uint16 = 0x809b
	EtherTypeAARP      uint16 = 0x80f3
)

// Addr is an AppleTalk network-layer address.
type Addr struct {
	Net  uint16
	Node uint8
}

// Key packs the address the way name tables index it.
func (a Addr) Key() uint32 {
	return uint32(a.Net)<<8 | uint32(a.Node)
}

// Endpoint is an address plus a DDP socket.
type Endpoint struct {
	Addr
	Socket uint8
}

// LLAPHeader represents the 3-byte LocalTalk link header.
type LLAPHeader struct {
	Dst  uint8
	Src  uint8
	Type uint8
}

// DDPHeader represents a long or short form DDP header. Short headers carry
// no network numbers, so Src.Net and Dst.Net stay 0 and the nodes come from
// the LLAP header.
type DDPHeader struct {
	Short    bool
	Length   uint16 // hop count and datagram length as sent
	Checksum uint16 // long form only
	Src      Endpoint
	Dst      Endpoint
	Type     uint8
}
