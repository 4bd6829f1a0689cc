package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/docoutline/internal/config"
	"github.com/spf13/cobra"
)

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration files",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return config.Dump(cmd.OutOrStdout(), c.cfg)
		},
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Print where configuration is read from",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			c.loader.PrintConfigInfo(cmd.OutOrStdout())
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write the default configuration to FILE (default docoutline.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			if err := config.GenerateDefaultConfigFile(filename); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return nil
		},
	}

	cmd.AddCommand(show, info, initCmd)
	return cmd
}
