package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/source/file"
)

var readCmd = &cobra.Command{
	Use:   "read FILE",
	Short: "Decode AppleTalk frames from a capture file",
	Long: `Decode AppleTalk frames from a pcap or pcapng capture file.

LocalTalk (link type 114) and Ethernet captures are supported.

Examples:
  atalkdump read capture.pcap
  atalkdump read -n -t capture.pcapng
  atalkdump read -w appletalk.pcap mixed.pcap   # keep only AppleTalk frames`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := file.Open(args[0], cfg.Input.Snaplen)
		if err != nil {
			return err
		}
		return runPipeline(ctx, cfg, src, cmd.OutOrStdout(), runOptions{
			writePath:   readWritePath,
			noTimestamp: noTimestamp,
		})
	},
}

var readWritePath string

func init() {
	readCmd.Flags().StringVarP(&readWritePath, "write", "w", "", "also write decoded frames to a pcap file")
}
