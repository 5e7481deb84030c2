// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/config"
	"firestige.xyz/atalkdump/internal/core"
	"firestige.xyz/atalkdump/internal/log"
)

var (
	// Global flags
	configFile  string
	numeric     bool
	linkDetail  bool
	namesFile   string
	noTimestamp bool
	logLevel    string

	// cfg is the effective configuration, set before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atalkdump",
	Short: "atalkdump - AppleTalk protocol dissector",
	Long: `atalkdump prints AppleTalk traffic one line per frame, the way tcpdump does.

It understands LocalTalk (LLAP), EtherTalk phase 1 and 2, DDP, NBP, ATP and
AARP, and reads frames from capture files, LocalTalk-over-UDP multicast,
live Ethernet interfaces (Linux) or hex on the command line.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")
	flags.BoolVarP(&numeric, "numeric", "n", false, "print addresses and sockets numerically")
	flags.BoolVarP(&linkDetail, "link-detail", "e", false, "omit the AT tag on directly framed DDP")
	flags.StringVar(&namesFile, "names-file", "", "AppleTalk names file (default "+core.DefaultNamesFile+")")
	flags.BoolVarP(&noTimestamp, "no-timestamp", "t", false, "do not print a timestamp on each line")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace/debug/info/warn/error)")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(hexCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the config file, applies explicitly set flags on top and
// initializes logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("numeric") {
		c.Decoder.Numeric = numeric
	}
	if flags.Changed("link-detail") {
		c.Decoder.LinkDetail = linkDetail
	}
	if flags.Changed("names-file") {
		c.Decoder.NamesFile = namesFile
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if err := c.ValidateAndApplyDefaults(); err != nil {
		return err
	}

	if err := log.Init(c.Log); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	cfg = c
	return nil
}
