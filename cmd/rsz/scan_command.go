package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/rsz/catalog"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Decode every matching file and record the outcome in the catalogue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			reg, err := ctx.registry()
			if err != nil {
				return err
			}
			if catalogPath == "" {
				catalogPath = cfg.Catalog.Path
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}

			files, err := collect(args, cfg.MatchesExtension)
			if err != nil {
				return err
			}

			store, err := catalog.Open(cmd.Context(), catalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			s := &scanner{reg: reg, opts: opts, workers: workers, logger: ctx.logger.Named("scan")}
			start := time.Now()
			var scanned, failed int
			err = s.run(cmd.Context(), files, func(rec catalog.FileRecord) error {
				scanned++
				if rec.Status == catalog.StatusFailed {
					failed++
				}
				return store.Record(cmd.Context(), rec)
			})
			if err != nil {
				return err
			}
			ctx.logger.Info("scan finished",
				zap.Int("files", scanned),
				zap.Int("failed", failed),
				zap.Duration("elapsed", time.Since(start)),
			)
			return printSummary(cmd, store)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalogue database path (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Concurrent decoders (overrides config)")
	return cmd
}

func printSummary(cmd *cobra.Command, store *catalog.Store) error {
	sum, err := store.Summary(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	rows := [][]string{
		{"files", strconv.Itoa(sum.Files)},
		{"failed", strconv.Itoa(sum.Failed)},
		{"descriptors", strconv.Itoa(sum.Descriptors)},
		{"unlisted revisions", strconv.Itoa(sum.Unlisted)},
		{"unknown types", strconv.Itoa(sum.UnknownType)},
	}
	fmt.Fprintf(w, "catalogue %s\n", store.Path())
	_, err = fmt.Fprintln(w, renderTable(w, []string{"", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	return err
}
