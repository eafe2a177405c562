package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "rsz",
		Short:         "Inspect RSZ object graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "hash" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVarP(&ctx.versionFlag, "schema-version", "V", "", `Schema version, e.g. "13.0.0" (overrides config)`)
	flags.BoolVar(&ctx.autoFlag, "auto-version", false, "Infer versions from revision checksums")
	flags.StringVar(&ctx.levelFlag, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(newDumpCommand(ctx))
	rootCmd.AddCommand(newDescribeCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newMismatchesCommand(ctx))
	rootCmd.AddCommand(newHashCommand())
	rootCmd.AddCommand(newBrowseCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
