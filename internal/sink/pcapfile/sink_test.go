package pcapfile

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/atalkdump/internal/core"
)

func TestSinkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSink(&buf, layers.LinkTypeLTalk)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	frame := &core.DecodedFrame{Raw: core.RawPacket{
		Data:      []byte{0xff, 0x12, 1},
		Timestamp: ts,
		OrigLen:   30,
	}}
	require.NoError(t, s.Send(frame))
	require.NoError(t, s.Close())

	r, err := pcapgo.NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeLTalk, r.LinkType())

	data, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x12, 1}, data)
	assert.Equal(t, 30, ci.Length)
	assert.True(t, ts.Equal(ci.Timestamp))
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcap")
	s, err := Create(path, layers.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, Name, s.Name())
	require.NoError(t, s.Close())

	_, err = Create(filepath.Join(t.TempDir(), "missing", "out.pcap"), layers.LinkTypeEthernet)
	assert.Error(t, err)
}
