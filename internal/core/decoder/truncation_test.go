package decoder

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every proper prefix of a well-formed frame, with the full length still
// declared, must decode to a truncation marker without reading past the
// captured bytes.
func TestEveryCutIsReported(t *testing.T) {
	frames := map[string][]byte{
		"atp":       atpRequestFrame(),
		"nbp lkup":  nbpLookupFrame(),
		"nbp reply": llapFrame(9, 5, 2, nbpReplyFrame()),
	}

	for name, frame := range frames {
		d := newTestDecoder(Options{})
		for cut := 0; cut < len(frame); cut++ {
			var buf bytes.Buffer
			assert.NotPanics(t, func() { d.LocalTalk(&buf, frame[:cut], len(frame)) }, "%s cut at %d", name, cut)
			assert.Contains(t, buf.String(), "[|", "%s cut at %d", name, cut)
		}
	}

	d := newTestDecoder(Options{})
	msg := aarpMsg(1, 1)
	for cut := 0; cut < len(msg); cut++ {
		var buf bytes.Buffer
		d.AARP(&buf, msg[:cut], len(msg))
		assert.Equal(t, "aarp  [|aarp]", buf.String())
	}
}

func FuzzDecoders(f *testing.F) {
	f.Add(atpRequestFrame(), 0)
	f.Add(nbpLookupFrame(), 0)
	f.Add(llapFrame(9, 5, 2, nbpReplyFrame()), 12)
	f.Add(aarpMsg(1, 2), -3)

	d := newTestDecoder(Options{})
	f.Fuzz(func(t *testing.T, data []byte, slack int) {
		length := len(data) + slack
		d.LocalTalk(io.Discard, data, length)
		d.DDP(io.Discard, data, length)
		d.AARP(io.Discard, data, length)
	})
}
