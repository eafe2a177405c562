package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wippyai/rsz"
)

type describeOutput struct {
	Path        string           `json:"path"`
	Base        int64            `json:"base"`
	Resources   []string         `json:"resources,omitempty"`
	Children    []string         `json:"children,omitempty"`
	Roots       []uint32         `json:"roots"`
	Descriptors []descriptorJSON `json:"descriptors"`
}

type descriptorJSON struct {
	Index    uint32 `json:"index"`
	Hash     string `json:"hash"`
	Revision string `json:"revision"`
	Symbol   string `json:"symbol,omitempty"`
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Extern   string `json:"extern,omitempty"`
	Root     bool   `json:"root,omitempty"`
}

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "List the descriptors of a block without decoding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.registry()
			if err != nil {
				return err
			}
			in, err := loadInput(args[0])
			if err != nil {
				return err
			}
			blk, err := in.block()
			if err != nil {
				return err
			}
			infos := blk.Describe(reg)

			out := describeOutput{Path: in.path, Base: blk.Base, Roots: blk.Roots}
			if in.user != nil {
				out.Resources = in.user.Resources
				for _, c := range in.user.Children {
					out.Children = append(out.Children, c.Name)
				}
			}
			for _, info := range infos {
				out.Descriptors = append(out.Descriptors, describeJSON(info))
			}
			if asJSON {
				return writeJSON(cmd, out)
			}
			return printDescribe(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func describeJSON(info rsz.DescriptorInfo) descriptorJSON {
	d := descriptorJSON{
		Index:    info.Index,
		Hash:     fmt.Sprintf("0x%08X", info.Descriptor.Hash),
		Revision: fmt.Sprintf("0x%08X", info.Descriptor.Revision),
		Symbol:   info.Symbol,
		Status:   info.Status.String(),
		Extern:   info.Extern,
		Root:     info.Root,
	}
	if info.Status == rsz.RevisionKnown {
		d.Version = info.Version.String()
	}
	return d
}

func printDescribe(cmd *cobra.Command, out describeOutput) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (block at 0x%X)\n", out.Path, out.Base)
	for _, r := range out.Resources {
		fmt.Fprintf(w, "  resource %s\n", r)
	}
	for _, c := range out.Children {
		fmt.Fprintf(w, "  child    %s\n", c)
	}

	rows := make([][]string, 0, len(out.Descriptors))
	for _, d := range out.Descriptors {
		root := ""
		if d.Root {
			root = "*"
		}
		name := d.Symbol
		if d.Extern != "" {
			name = d.Extern
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(d.Index), 10),
			d.Hash,
			d.Revision,
			d.Status,
			d.Version,
			root,
			name,
		})
	}
	headers := []string{"#", "Hash", "Revision", "Status", "Version", "Root", "Symbol"}
	aligns := []columnAlignment{alignRight}
	_, err := fmt.Fprintln(w, renderTable(w, headers, rows, aligns))
	return err
}
