package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/source/ltoudp"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Decode LocalTalk frames tunnelled over UDP multicast",
	Long: `Join the LocalTalk-over-UDP multicast group and decode every LLAP frame
received until interrupted.

Examples:
  atalkdump listen
  atalkdump listen --interface eth0
  atalkdump listen --group 239.192.76.84 --port 1954 -w localtalk.pcap`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		flags := cmd.Flags()
		if flags.Changed("interface") {
			cfg.Input.Interface = listenInterface
		}
		if flags.Changed("group") {
			cfg.Input.Group = listenGroup
		}
		if flags.Changed("port") {
			cfg.Input.Port = listenPort
		}

		src, err := ltoudp.Listen(ltoudp.Config{
			Interface: cfg.Input.Interface,
			Group:     cfg.Input.Group,
			Port:      cfg.Input.Port,
		})
		if err != nil {
			return err
		}
		return runPipeline(ctx, cfg, src, cmd.OutOrStdout(), runOptions{
			writePath:   listenWritePath,
			noTimestamp: noTimestamp,
		})
	},
}

var (
	listenInterface string
	listenGroup     string
	listenPort      int
	listenWritePath string
)

func init() {
	listenCmd.Flags().StringVarP(&listenInterface, "interface", "i", "", "interface to join the group on")
	listenCmd.Flags().StringVar(&listenGroup, "group", ltoudp.DefaultGroup, "multicast group")
	listenCmd.Flags().IntVar(&listenPort, "port", ltoudp.DefaultPort, "UDP port")
	listenCmd.Flags().StringVarP(&listenWritePath, "write", "w", "", "also write decoded frames to a pcap file")
}
