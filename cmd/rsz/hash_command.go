package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/rsz/hash"
)

func newHashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash STRING...",
		Short: "Print the UTF-16 and UTF-8 content hashes of strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			rows := make([][]string, 0, len(args))
			for _, s := range args {
				rows = append(rows, []string{
					s,
					fmt.Sprintf("0x%08X", hash.UTF16(s)),
					fmt.Sprintf("0x%08X", hash.UTF8(s)),
					fmt.Sprintf("0x%08X", hash.UTF16(strings.ToLower(s))),
				})
			}
			headers := []string{"String", "UTF-16", "UTF-8", "UTF-16 lower"}
			_, err := fmt.Fprintln(w, renderTable(w, headers, rows, nil))
			return err
		},
	}
	return cmd
}
