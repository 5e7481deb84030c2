package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/atalkdump/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, environment
variables (ATALKDUMP_*) and command line flags are applied, as YAML that can
be used as a config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd.OutOrStdout(), cfg)
	},
}

func runConfig(w io.Writer, c *config.Config) error {
	out, err := yaml.Marshal(map[string]*config.Config{"atalkdump": c})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}
