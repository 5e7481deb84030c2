package decoder

import (
	"fmt"
	"io"

	"firestige.xyz/atalkdump/internal/core"
)

// ddpTypeNames covers DDP types whose payload is not decoded further.
var ddpTypeNames = map[uint8]string{
	core.DDPTypeRTMP:        "rtmp",
	core.DDPTypeRTMPRequest: "rtmpReq",
	core.DDPTypeEcho:        "echo",
	core.DDPTypeIP:          "IP",
	core.DDPTypeARP:         "ARP",
	core.DDPTypeKLAP:        "KLAP",
}

// dispatch prints the DDP payload according to the DDP type. Each branch
// validates its own input.
func (d *Decoder) dispatch(w io.Writer, data []byte, length int, h core.DDPHeader) {
	d.obs.Decoded(core.ProtoDDP)

	switch h.Type {
	case core.DDPTypeNBP:
		d.nbp(w, data, length, h.Src)
	case core.DDPTypeATP:
		d.atp(w, data, length)
	case core.DDPTypeEIGRP:
		if d.opts.EIGRP != nil {
			d.opts.EIGRP(w, data, length)
			d.obs.Decoded(core.ProtoEIGRP)
			return
		}
		fmt.Fprintf(w, " at-eigrp %d", length)
	default:
		if name, ok := ddpTypeNames[h.Type]; ok {
			fmt.Fprintf(w, " at-%s %d", name, length)
			return
		}
		d.unknown(w, core.ProtoDDP, " at-#%d %d", h.Type, length)
	}
}
