package decoder

import "encoding/binary"

// cursor walks a captured region front to back. Callers check has before
// next; next panics on a violated check rather than reading short.
type cursor struct {
	buf []byte
	off int
}

func newCursor(b []byte) *cursor {
	return &cursor{buf: b}
}

// has reports whether n more bytes were captured.
func (c *cursor) has(n int) bool {
	return n >= 0 && len(c.buf)-c.off >= n
}

// next returns the following n bytes and advances past them.
func (c *cursor) next(n int) []byte {
	if !c.has(n) {
		panic("decoder: cursor read past captured data")
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b
}

// rest returns the captured bytes not yet consumed.
func (c *cursor) rest() []byte {
	return c.buf[c.off:]
}

func be16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
