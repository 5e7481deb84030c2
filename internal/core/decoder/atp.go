package decoder

import (
	"fmt"
	"io"
	"math/bits"
	"strconv"
	"strings"

	"firestige.xyz/atalkdump/internal/core"
)

const (
	atpHeaderLen = 8

	atpClassMask = 0xc0
	atpReqCode   = 0x40
	atpRspCode   = 0x80
	atpRelCode   = 0xc0

	atpXO  = 0x20 // exactly-once
	atpEOM = 0x10 // end of message
	atpSTS = 0x08 // send transaction status
)

type atpHeader struct {
	Control  uint8
	Bitmap   uint8
	TransID  uint16
	UserData uint32
}

func parseATP(b []byte) atpHeader {
	return atpHeader{
		Control:  b[0],
		Bitmap:   b[1],
		TransID:  be16(b[2:4]),
		UserData: be32(b[4:8]),
	}
}

// atp prints an AppleTalk Transaction Protocol header.
func (d *Decoder) atp(w io.Writer, data []byte, length int) {
	c := newCursor(data)
	if !c.has(atpHeaderLen) {
		d.truncated(w, core.ProtoATP, tstr)
		return
	}
	if length < atpHeaderLen {
		d.truncated(w, core.ProtoATP, " [|atp %d]", length)
		return
	}
	length -= atpHeaderLen
	h := parseATP(c.next(atpHeaderLen))

	switch h.Control & atpClassMask {
	case atpReqCode:
		// Requests without XO are at-least-once and get a star.
		mark := "*"
		if h.Control&atpXO != 0 {
			mark = " "
		}
		fmt.Fprintf(w, " atp-req%s %d", mark, h.TransID)
		io.WriteString(w, bitmapString(h.Bitmap))
		if length != 0 {
			fmt.Fprintf(w, " [len=%d]", length)
		}
		switch h.Control & (atpEOM | atpSTS) {
		case atpEOM:
			io.WriteString(w, " [EOM]")
		case atpSTS:
			io.WriteString(w, " [STS]")
		case atpEOM | atpSTS:
			io.WriteString(w, " [EOM,STS]")
		}

	case atpRspCode:
		mark := " "
		if h.Control&atpEOM != 0 {
			mark = "*"
		}
		fmt.Fprintf(w, " atp-resp%s%d:%d (%d)", mark, h.TransID, h.Bitmap, length)
		switch h.Control & (atpXO | atpSTS) {
		case atpXO:
			io.WriteString(w, " [XO]")
		case atpSTS:
			io.WriteString(w, " [STS]")
		case atpXO | atpSTS:
			io.WriteString(w, " [XO,STS]")
		}

	case atpRelCode:
		fmt.Fprintf(w, " atp-rel  %d", h.TransID)
		io.WriteString(w, bitmapString(h.Bitmap))
		// A release carries no data and no flags.
		if length != 0 {
			d.anomaly(w, core.ProtoATP, " [len=%d]", length)
		}
		if flags := releaseFlags(h.Control); flags != "" {
			d.anomaly(w, core.ProtoATP, " [%s]", flags)
		}

	default:
		d.unknown(w, core.ProtoATP, " atp-0x%x  %d (%d)", h.Control, h.TransID, length)
		d.userData(w, h.UserData)
		return
	}

	d.userData(w, h.UserData)
	d.obs.Decoded(core.ProtoATP)
}

func (d *Decoder) userData(w io.Writer, ud uint32) {
	if ud != 0 {
		fmt.Fprintf(w, " 0x%x", ud)
	}
}

func releaseFlags(control uint8) string {
	var flags []string
	if control&atpXO != 0 {
		flags = append(flags, "XO")
	}
	if control&atpEOM != 0 {
		flags = append(flags, "EOM")
	}
	if control&atpSTS != 0 {
		flags = append(flags, "STS")
	}
	return strings.Join(flags, ",")
}

// bitmapString renders an ATP sequence bitmap. A run of set bits starting
// at bit 0 prints as a range, anything else as the list of set bits.
//
// The run test (bm+1)&bm == 0 also holds for 0, so an empty bitmap prints
// as <0>, the same as a bitmap with only bit 0 set.
func bitmapString(bm uint8) string {
	if (bm+1)&bm == 0 {
		if n := bits.Len8(bm); n > 1 {
			return "<0-" + strconv.Itoa(n-1) + ">"
		}
		return "<0>"
	}

	var sb strings.Builder
	sep := byte('<')
	for i := 0; bm != 0; i++ {
		if bm&1 != 0 {
			sb.WriteByte(sep)
			sb.WriteString(strconv.Itoa(i))
			sep = ','
		}
		bm >>= 1
	}
	sb.WriteByte('>')
	return sb.String()
}
