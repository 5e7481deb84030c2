// Package decoder prints AppleTalk frames as single human-readable lines.
//
// Every entry point takes the captured bytes and the declared on-wire
// length separately. Decoders never read past the captured slice; when data
// runs out they print exactly one truncation marker and return.
package decoder

import (
	"fmt"
	"io"

	"firestige.xyz/atalkdump/internal/names"
)

// Observer is notified of decode outcomes per protocol.
type Observer interface {
	Decoded(proto string)
	Truncated(proto string)
	Anomaly(proto string)
	Unknown(proto string)
}

// EIGRPPrinter prints an EIGRP payload carried in DDP.
type EIGRPPrinter func(w io.Writer, data []byte, length int)

// Options control display.
type Options struct {
	// Numeric disables socket names. Address names are governed by the
	// names cache, which should be built with resolution off as well.
	Numeric bool
	// LinkDetail is set when the caller already printed link-level
	// information; the "AT " tag on directly framed DDP is then omitted.
	LinkDetail bool
	// EIGRP decodes DDP type 88. Nil prints the type and length only.
	EIGRP EIGRPPrinter
	// Observer receives decode statistics. Nil discards them.
	Observer Observer
}

// Decoder holds read-only options and the shared names cache; one Decoder
// may be used from several goroutines as long as each call has its own
// writer.
type Decoder struct {
	opts  Options
	names *names.Cache
	obs   Observer
}

// New creates a decoder resolving addresses through cache.
func New(cache *names.Cache, opts Options) *Decoder {
	if cache == nil {
		cache = names.New("", false)
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	return &Decoder{opts: opts, names: cache, obs: obs}
}

func (d *Decoder) addr(net uint16, node uint8) string {
	return d.names.Lookup(net, node)
}

func (d *Decoder) socket(skt uint8) string {
	return names.Socket(skt, d.opts.Numeric)
}

// truncated prints a truncation marker.
func (d *Decoder) truncated(w io.Writer, proto, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
	d.obs.Truncated(proto)
}

// anomaly prints a non-fatal conformance annotation.
func (d *Decoder) anomaly(w io.Writer, proto, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
	d.obs.Anomaly(proto)
}

// unknown prints the fallback line for an unrecognized code.
func (d *Decoder) unknown(w io.Writer, proto, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
	d.obs.Unknown(proto)
}

type nopObserver struct{}

func (nopObserver) Decoded(string)   {}
func (nopObserver) Truncated(string) {}
func (nopObserver) Anomaly(string)   {}
func (nopObserver) Unknown(string)   {}

// tstr marks data cut short inside a DDP payload.
const tstr = "[|atalk]"
