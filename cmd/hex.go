package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/gopacket/layers"
	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/config"
	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/source"
)

var hexCmd = &cobra.Command{
	Use:   "hex FRAME...",
	Short: "Decode frames given as hex strings",
	Long: `Decode one frame per argument. Spaces, colons and dashes inside a frame
are ignored. --length declares a longer on-wire length than the bytes given,
to see how truncated captures are reported.

Link types:
  llap    LocalTalk frame, LLAP header first (default)
  ether   Ethernet frame (EtherTalk phase 1 or 2)
  ddp     long DDP datagram without link framing
  aarp    AARP message without link framing

Examples:
  atalkdump hex 05070200150000006400c805070280034005002a00000000
  atalkdump hex --length 40 05070200150000006400c805070280034005002a00000000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHex(cmd.Context(), cmd.OutOrStdout(), cfg, hexLink, hexLength, args)
	},
}

var (
	hexLink   string
	hexLength int
)

func init() {
	hexCmd.Flags().StringVarP(&hexLink, "link", "l", "llap", "framing of the given bytes: llap, ether, ddp or aarp")
	hexCmd.Flags().IntVar(&hexLength, "length", 0, "declared on-wire length (default: number of bytes given)")
}

// parseHexFrame decodes a hex frame, ignoring common separators.
func parseHexFrame(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame %q: %w", s, err)
	}
	return b, nil
}

// runHex prints one line per frame, without timestamps.
func runHex(ctx context.Context, w io.Writer, c *config.Config, link string, length int, args []string) error {
	frames := make([][]byte, 0, len(args))
	for _, arg := range args {
		b, err := parseHexFrame(arg)
		if err != nil {
			return err
		}
		frames = append(frames, b)
	}
	declared := func(b []byte) int {
		if length > 0 {
			return length
		}
		return len(b)
	}

	switch link {
	case "llap", "ether":
		linkType := layers.LinkTypeLTalk
		if link == "ether" {
			linkType = layers.LinkTypeEthernet
		}
		packets := make([]core.RawPacket, 0, len(frames))
		for _, b := range frames {
			packets = append(packets, core.RawPacket{
				Data:       b,
				CaptureLen: uint32(len(b)),
				OrigLen:    uint32(declared(b)),
			})
		}
		// Every frame given is printed, AppleTalk or not.
		hc := *c
		hc.Input.FilterAppleTalk = false
		hc.Metrics.Enabled = false
		return runPipeline(ctx, &hc, source.NewStatic("hex", linkType, packets...), w, runOptions{noTimestamp: true})

	case "ddp", "aarp":
		d, _ := newDecoder(c)
		var line bytes.Buffer
		for _, b := range frames {
			line.Reset()
			if link == "ddp" {
				d.DDP(&line, b, declared(b))
			} else {
				d.AARP(&line, b, declared(b))
			}
			line.WriteByte('\n')
			if _, err := w.Write(line.Bytes()); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown link %q (must be llap, ether, ddp or aarp)", link)
	}
}
