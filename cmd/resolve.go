package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/atalkdump/internal/names"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve ADDRESS...",
	Short: "Print the display name of AppleTalk addresses",
	Long: `Look up net.host or net addresses through the names file, the same way
decoded frames are printed.

Examples:
  atalkdump resolve 100.5 200
  atalkdump resolve --names-file ./atalk.names 100.5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := names.New(cfg.Decoder.NamesFile, !cfg.Decoder.Numeric)
		return runResolve(cmd.OutOrStdout(), cache, args)
	},
}

// runResolve prints "address<TAB>name" per argument.
func runResolve(w io.Writer, cache *names.Cache, args []string) error {
	for _, arg := range args {
		addr, err := names.ParseAddr(arg)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", arg, cache.Lookup(addr.Net, addr.Node)); err != nil {
			return err
		}
	}
	return nil
}
