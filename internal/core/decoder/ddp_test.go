package decoder

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchByType(t *testing.T) {
	tests := []struct {
		typ  uint8
		want string
	}{
		{1, " at-rtmp 4"},
		{4, " at-echo 4"},
		{5, " at-rtmpReq 4"},
		{22, " at-IP 4"},
		{23, " at-ARP 4"},
		{0x4b, " at-KLAP 4"},
		{88, " at-eigrp 4"},
		{99, " at-#99 4"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("type %d", tt.typ), func(t *testing.T) {
			d := newTestDecoder(Options{LinkDetail: true})
			frame := longDDP(ep(1, 2, 128), ep(4, 5, 129), tt.typ, []byte{1, 2, 3, 4})
			assert.Equal(t, "1.2.128 > 4.5.129: "+tt.want, decodeDDP(d, frame, len(frame)))
		})
	}
}

func TestDispatchEIGRPHook(t *testing.T) {
	obs := &mockObserver{}
	obs.On("Decoded", "ddp").Once()
	obs.On("Decoded", "eigrp").Once()

	var gotData []byte
	d := newTestDecoder(Options{
		LinkDetail: true,
		Observer:   obs,
		EIGRP: func(w io.Writer, data []byte, length int) {
			gotData = data
			fmt.Fprintf(w, " eigrp %d", length)
		},
	})
	frame := longDDP(ep(1, 2, 128), ep(4, 5, 129), 88, []byte{0xa, 0xb})

	assert.Equal(t, "1.2.128 > 4.5.129:  eigrp 2", decodeDDP(d, frame, len(frame)))
	assert.Equal(t, []byte{0xa, 0xb}, gotData)
	obs.AssertExpectations(t)
}

func TestDispatchUnknownNotifiesObserver(t *testing.T) {
	obs := &mockObserver{}
	obs.On("Decoded", "ddp").Once()
	obs.On("Unknown", "ddp").Once()

	d := newTestDecoder(Options{Observer: obs})
	frame := longDDP(ep(1, 2, 128), ep(4, 5, 129), 200, nil)
	var buf bytes.Buffer
	d.DDP(&buf, frame, len(frame))

	assert.Equal(t, "AT 1.2.128 > 4.5.129:  at-#200 0", buf.String())
	obs.AssertExpectations(t)
}
