//go:build linux

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/source"
	"firestige.xyz/atalkdump/internal/source/afpacket"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Decode EtherTalk frames live from an Ethernet interface",
	Long: `Capture frames from an Ethernet interface with AF_PACKET and decode the
AppleTalk ones. Requires CAP_NET_RAW.

Examples:
  atalkdump capture -i eth0
  atalkdump capture -i eth0 --buffer-mb 32 -w ethertalk.pcap`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		acfg := afpacket.Config{
			Interface:    captureInterface,
			SnapLen:      cfg.Input.Snaplen,
			BufferSizeMB: captureBufferMB,
		}
		if cfg.Input.FilterAppleTalk {
			f, err := source.NewAppleTalkFilter()
			if err != nil {
				return fmt.Errorf("failed to build filter: %w", err)
			}
			acfg.Filter = f
		}
		src, err := afpacket.New(acfg)
		if err != nil {
			return err
		}
		return runPipeline(ctx, cfg, src, cmd.OutOrStdout(), runOptions{
			writePath:   captureWritePath,
			noTimestamp: noTimestamp,
		})
	},
}

var (
	captureInterface string
	captureBufferMB  int
	captureWritePath string
)

func init() {
	captureCmd.Flags().StringVarP(&captureInterface, "interface", "i", "", "interface to capture on (required)")
	captureCmd.Flags().IntVar(&captureBufferMB, "buffer-mb", 8, "ring buffer size in MB")
	captureCmd.Flags().StringVarP(&captureWritePath, "write", "w", "", "also write decoded frames to a pcap file")
	captureCmd.MarkFlagRequired("interface")
	rootCmd.AddCommand(captureCmd)
}
