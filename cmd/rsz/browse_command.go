package main

import (
	"github.com/spf13/cobra"

	"github.com/wippyai/rsz"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Explore a file's objects interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			load := func() (*input, *rsz.Registry, rsz.Options, error) {
				opts, err := ctx.options()
				if err != nil {
					return nil, nil, opts, err
				}
				reg, err := ctx.registry()
				if err != nil {
					return nil, nil, opts, err
				}
				in, err := loadInput(path)
				return in, reg, opts, err
			}
			return runBrowse(newBrowseModel(path, load))
		},
	}
}
