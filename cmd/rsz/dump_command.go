package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/rsz"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var all bool

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Decode a file and print its object graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.options()
			if err != nil {
				return err
			}
			reg, err := ctx.registry()
			if err != nil {
				return err
			}
			in, err := loadInput(args[0])
			if err != nil {
				return err
			}
			g, err := in.decode(reg, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, g)
			}
			out := cmd.OutOrStdout()
			objects := g.Roots
			if all {
				objects = g.Objects[1:]
			}
			for _, obj := range objects {
				if err := dumpObject(cmd, obj); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(out, "%d objects, %d roots\n", len(g.Objects)-1, len(g.Roots))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the roots as JSON")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Print every object, not only roots")
	return cmd
}

func dumpObject(cmd *cobra.Command, obj *rsz.Object) error {
	out := cmd.OutOrStdout()
	if obj.IsExtern() {
		_, err := fmt.Fprintf(out, "#%d extern %s\n\n", obj.Index, obj.Extern)
		return err
	}
	if _, err := fmt.Fprintf(out, "#%d %s @0x%X (%d bytes, version %s)\n",
		obj.Index, obj.Symbol, obj.Offset, obj.Size, obj.Version); err != nil {
		return err
	}
	if err := rsz.Dump(out, obj.Value); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}
