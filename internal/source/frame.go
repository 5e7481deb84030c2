package source

import (
	"bytes"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/atalkdump/internal/core"
)

var (
	ouiApple = []byte{0x08, 0x00, 0x07}
	ouiZero  = []byte{0x00, 0x00, 0x00}
)

// llcSNAPLen is the 802.2 LLC header (AA AA 03) plus the SNAP header.
const llcSNAPLen = 3 + 5

// Classifier strips link framing and picks the decoder entry point.
//
// EtherTalk phase 2 uses 802.3 + LLC + SNAP with the Apple OUI for DDP and
// the zero OUI for AARP; phase 1 uses Ethernet II with the same types.
// A Classifier reuses its layers and is not safe for concurrent use.
type Classifier struct {
	parser  *gopacket.DecodingLayerParser
	eth     layers.Ethernet
	llc     layers.LLC
	snap    layers.SNAP
	decoded []gopacket.LayerType
}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	c := &Classifier{decoded: make([]gopacket.LayerType, 0, 3)}
	c.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &c.eth, &c.llc, &c.snap)
	c.parser.IgnoreUnsupported = true
	return c
}

// Classify returns the AppleTalk frame carried by raw. Frames that carry
// something else yield core.ErrNotAppleTalk; unknown framing yields
// core.ErrUnsupportedLinkType.
func (c *Classifier) Classify(linkType layers.LinkType, raw core.RawPacket) (core.Frame, error) {
	switch linkType {
	case layers.LinkTypeLTalk:
		return core.Frame{Kind: core.FrameLocalTalk, Data: raw.Data, Length: int(raw.OrigLen)}, nil
	case layers.LinkTypeEthernet:
		return c.ethernet(raw)
	default:
		return core.Frame{}, fmt.Errorf("%w: %s", core.ErrUnsupportedLinkType, linkType)
	}
}

func (c *Classifier) ethernet(raw core.RawPacket) (core.Frame, error) {
	if err := c.parser.DecodeLayers(raw.Data, &c.decoded); err != nil {
		return core.Frame{}, fmt.Errorf("%w: %v", core.ErrNotAppleTalk, err)
	}
	if len(c.decoded) == 0 {
		return core.Frame{}, core.ErrNotAppleTalk
	}

	switch c.decoded[len(c.decoded)-1] {
	case layers.LayerTypeEthernet:
		// Ethernet II; the sender's length is whatever was on the wire.
		length := int(raw.OrigLen) - len(c.eth.Contents)
		switch uint16(c.eth.EthernetType) {
		case core.EtherTypeAppleTalk:
			return core.Frame{Kind: core.FrameDDP, Data: c.eth.Payload, Length: length}, nil
		case core.EtherTypeAARP:
			return core.Frame{Kind: core.FrameAARP, Data: c.eth.Payload, Length: length}, nil
		}

	case layers.LayerTypeSNAP:
		if len(c.llc.Contents) != 3 {
			break
		}
		length := int(c.eth.Length) - llcSNAPLen
		switch {
		case bytes.Equal(c.snap.OrganizationalCode, ouiApple) && uint16(c.snap.Type) == core.EtherTypeAppleTalk:
			return core.Frame{Kind: core.FrameDDP, Data: c.snap.Payload, Length: length}, nil
		case bytes.Equal(c.snap.OrganizationalCode, ouiZero) && uint16(c.snap.Type) == core.EtherTypeAARP:
			return core.Frame{Kind: core.FrameAARP, Data: c.snap.Payload, Length: length}, nil
		}
	}
	return core.Frame{}, core.ErrNotAppleTalk
}
