package decoder

import (
	"io"

	"firestige.xyz/atalkdump/internal/core"
)

// maxStringLen is the longest NBP name component the protocol allows.
const maxStringLen = 32

// cstring prints one length-prefixed string and advances past it.
//
// The whole string is checked against the captured data before anything
// is printed, so a failed read prints only its marker.
func (d *Decoder) cstring(w io.Writer, c *cursor) bool {
	if !c.has(1) {
		d.truncated(w, core.ProtoNBP, tstr)
		return false
	}
	n := int(c.next(1)[0])
	if n > maxStringLen {
		d.anomaly(w, core.ProtoNBP, "[len=%d]", n)
		return false
	}
	if !c.has(n) {
		d.truncated(w, core.ProtoNBP, tstr)
		return false
	}
	w.Write(c.next(n))
	return true
}
