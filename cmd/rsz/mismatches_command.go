package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wippyai/rsz/catalog"
)

type mismatchReport struct {
	Summary      catalog.Summary       `json:"summary"`
	Mismatches   []catalog.Mismatch    `json:"mismatches"`
	UnknownTypes []catalog.UnknownType `json:"unknown_types"`
	Failures     []failureJSON         `json:"failures"`
}

type failureJSON struct {
	Path  string `json:"path"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error"`
}

func newMismatchesCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "mismatches",
		Short: "Report unlisted revisions, unknown types and failed files from the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if catalogPath == "" {
				catalogPath = cfg.Catalog.Path
			}
			store, err := catalog.Open(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := buildReport(cmd, store)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			return printReport(cmd, report)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalogue database path (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func buildReport(cmd *cobra.Command, store *catalog.Store) (mismatchReport, error) {
	var r mismatchReport
	var err error
	ctx := cmd.Context()
	if r.Summary, err = store.Summary(ctx); err != nil {
		return r, err
	}
	if r.Mismatches, err = store.Mismatches(ctx); err != nil {
		return r, err
	}
	if r.UnknownTypes, err = store.UnknownTypes(ctx); err != nil {
		return r, err
	}
	failures, err := store.Failures(ctx)
	if err != nil {
		return r, err
	}
	for _, f := range failures {
		r.Failures = append(r.Failures, failureJSON{Path: f.Path, Kind: f.ErrorKind, Error: f.Error})
	}
	return r, nil
}

func printReport(cmd *cobra.Command, r mismatchReport) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d files, %d failed, %d descriptors\n\n", r.Summary.Files, r.Summary.Failed, r.Summary.Descriptors)

	if len(r.Mismatches) > 0 {
		rows := make([][]string, 0, len(r.Mismatches))
		for _, m := range r.Mismatches {
			rows = append(rows, []string{
				m.Symbol,
				fmt.Sprintf("0x%08X", m.Hash),
				fmt.Sprintf("0x%08X", m.Revision),
				strconv.Itoa(m.Files),
				m.Example,
			})
		}
		fmt.Fprintln(w, "Unlisted revisions")
		fmt.Fprintln(w, renderTable(w, []string{"Symbol", "Hash", "Revision", "Files", "Example"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
		fmt.Fprintln(w)
	}

	if len(r.UnknownTypes) > 0 {
		rows := make([][]string, 0, len(r.UnknownTypes))
		for _, u := range r.UnknownTypes {
			rows = append(rows, []string{
				fmt.Sprintf("0x%08X", u.Hash),
				strconv.Itoa(u.Revisions),
				strconv.Itoa(u.Files),
				u.Example,
			})
		}
		fmt.Fprintln(w, "Unknown types")
		fmt.Fprintln(w, renderTable(w, []string{"Hash", "Revisions", "Files", "Example"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignRight}))
		fmt.Fprintln(w)
	}

	if len(r.Failures) > 0 {
		rows := make([][]string, 0, len(r.Failures))
		for _, f := range r.Failures {
			rows = append(rows, []string{f.Path, f.Kind, f.Error})
		}
		fmt.Fprintln(w, "Failed files")
		fmt.Fprintln(w, renderTable(w, []string{"Path", "Kind", "Error"}, rows, nil))
	}
	return nil
}
