package decoder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/atalkdump/internal/names"
)

func atpRequestFrame() []byte {
	ddp := longDDP(ep(200, 7, 128), ep(100, 5, 2), 3, atpHdr(0x40, 0x05, 42, 0))
	return llapFrame(5, 7, 2, ddp)
}

func nbpLookupFrame() []byte {
	payload := nbpMsg(0x21, 7, tuple(ep(0, 18, 253), 0, "=", "LaserWriter", "*"))
	return llapFrame(0xff, 0x12, 1, shortDDP(253, 2, 2, payload))
}

func TestLLAPLongDDP(t *testing.T) {
	d := newTestDecoder(Options{})
	frame := atpRequestFrame()

	out, n := decodeLLAP(d, frame, len(frame))
	assert.Equal(t, "200.7.128 > 100.5.nis: atp-req* 42<0,2>", out)
	assert.Equal(t, 16, n)
}

func TestLLAPShortDDP(t *testing.T) {
	d := newTestDecoder(Options{})
	frame := nbpLookupFrame()

	out, n := decodeLLAP(d, frame, len(frame))
	assert.Equal(t, `0.18.253 > 0.nis: nbp-lkup 7: "=:LaserWriter@*"`, out)
	assert.Equal(t, 8, n)
}

func TestLLAPIgnoresBytesPastDeclaredLength(t *testing.T) {
	d := newTestDecoder(Options{})
	frame := atpRequestFrame()
	padded := append(append([]byte{}, frame...), 0xde, 0xad, 0xbe, 0xef)

	want, _ := decodeLLAP(d, frame, len(frame))
	got, _ := decodeLLAP(d, padded, len(frame))
	assert.Equal(t, want, got)
}

func TestLLAPTruncation(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		length int
		want   string
		n      int
	}{
		{"declared shorter than llap", []byte{1, 2}, 2, " [|llap 2]", 2},
		{"llap not captured", []byte{1, 2}, 20, " [|llap]", 0},
		{"short ddp declared short", llapFrame(1, 2, 1, []byte{0, 0, 0, 0}), 7, " [|sddp 4]", 4},
		{"short ddp not captured", llapFrame(1, 2, 1, []byte{0, 0}), 20, " [|sddp]", 0},
		{"long ddp declared short", llapFrame(1, 2, 2, make([]byte, 13)), 10, " [|ddp 7]", 7},
		{"long ddp not captured", llapFrame(1, 2, 2, make([]byte, 5)), 30, " [|ddp]", 0},
		{"unknown lap type", llapFrame(1, 2, 0x81, []byte{0xaa, 0xbb}), 5, "2 > 1 at-lap#129 2", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(Options{})
			out, n := decodeLLAP(d, tt.data, tt.length)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestLocalTalkHeaderLength(t *testing.T) {
	d := newTestDecoder(Options{})
	var buf bytes.Buffer

	assert.Equal(t, 2, d.LocalTalk(&buf, []byte{1, 2}, 20), "headers missing: everything captured")
	assert.Equal(t, " [|llap]", buf.String())

	buf.Reset()
	frame := atpRequestFrame()
	assert.Equal(t, 16, d.LocalTalk(&buf, frame, len(frame)))
}

func TestDDPDirect(t *testing.T) {
	frame := longDDP(ep(200, 7, 128), ep(100, 5, 2), 3, atpHdr(0x40, 0x05, 42, 0))

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"tagged", Options{}, "AT 200.7.128 > 100.5.nis:  atp-req* 42<0,2>"},
		{"link detail", Options{LinkDetail: true}, "200.7.128 > 100.5.nis:  atp-req* 42<0,2>"},
		{"numeric sockets", Options{Numeric: true}, "AT 200.7.128 > 100.5.2:  atp-req* 42<0,2>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(tt.opts)
			assert.Equal(t, tt.want, decodeDDP(d, frame, len(frame)))
		})
	}
}

func TestDDPDirectTruncation(t *testing.T) {
	d := newTestDecoder(Options{})
	assert.Equal(t, "AT  [|ddp 10]", decodeDDP(d, make([]byte, 13), 10))
	assert.Equal(t, "AT  [|ddp]", decodeDDP(d, make([]byte, 5), 30))

	d = newTestDecoder(Options{LinkDetail: true})
	assert.Equal(t, " [|ddp]", decodeDDP(d, make([]byte, 5), 30))
}

func TestDDPResolvesNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atalk.names")
	require.NoError(t, os.WriteFile(path, []byte("# site names\n100.5 printer\n200 Eng\n"), 0644))

	d := New(names.New(path, true), Options{})
	frame := longDDP(ep(200, 7, 128), ep(100, 5, 2), 3, atpHdr(0x40, 0x05, 42, 0))

	assert.Equal(t, "AT Eng.7.128 > printer.nis:  atp-req* 42<0,2>", decodeDDP(d, frame, len(frame)))
}
