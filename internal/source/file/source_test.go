package file

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/atalkdump/internal/core"
)

func writePcap(t *testing.T, linkType layers.LinkType, frames ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65535, linkType))
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, frame := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Second),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		require.NoError(t, w.WritePacket(ci, frame))
	}
	return buf.Bytes()
}

func capture(t *testing.T, s *Source) []core.RawPacket {
	t.Helper()
	out := make(chan core.RawPacket, 16)
	require.NoError(t, s.Capture(context.Background(), out))
	close(out)
	var got []core.RawPacket
	for raw := range out {
		got = append(got, raw)
	}
	return got
}

func TestReadPcap(t *testing.T) {
	data := writePcap(t, layers.LinkTypeLTalk, []byte{1, 2, 1, 0, 5}, []byte{3, 4, 2})

	s, err := NewReader("mem", bytes.NewReader(data), 0)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeLTalk, s.LinkType())
	assert.Equal(t, Name, s.Name())

	got := capture(t, s)
	require.Len(t, got, 2)
	assert.Equal(t, []byte{1, 2, 1, 0, 5}, got[0].Data)
	assert.Equal(t, uint32(5), got[0].OrigLen)
	assert.Equal(t, time.Second, got[1].Timestamp.Sub(got[0].Timestamp))
	assert.Equal(t, uint64(2), s.Stats().PacketsReceived)
}

func TestSnaplenLimitsCapturedBytes(t *testing.T) {
	data := writePcap(t, layers.LinkTypeLTalk, []byte{1, 2, 1, 0, 5, 6, 7})

	s, err := NewReader("mem", bytes.NewReader(data), 3)
	require.NoError(t, err)

	got := capture(t, s)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{1, 2, 1}, got[0].Data)
	assert.Equal(t, uint32(3), got[0].CaptureLen)
	assert.Equal(t, uint32(7), got[0].OrigLen)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.pcap")
	require.NoError(t, os.WriteFile(path, writePcap(t, layers.LinkTypeEthernet, make([]byte, 60)), 0644))

	s, err := Open(path, 0)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeEthernet, s.LinkType())
	assert.Len(t, capture(t, s), 1)
	require.NoError(t, s.Close())

	err = s.Capture(context.Background(), make(chan core.RawPacket))
	assert.True(t, errors.Is(err, core.ErrSourceClosed))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("", 0)
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.pcap"), 0)
	assert.Error(t, err)

	_, err = NewReader("mem", bytes.NewReader([]byte{1, 2}), 0)
	assert.Error(t, err)

	_, err = NewReader("mem", bytes.NewReader(make([]byte, 24)), 0)
	assert.Error(t, err, "bad magic")
}

func TestCaptureStopsOnCancel(t *testing.T) {
	data := writePcap(t, layers.LinkTypeLTalk, []byte{1, 2, 3}, []byte{4, 5, 6})
	s, err := NewReader("mem", bytes.NewReader(data), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Capture(ctx, make(chan core.RawPacket)))
}
