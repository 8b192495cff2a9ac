package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediatidy/internal/collect"
	"mediatidy/internal/config"
	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
	"mediatidy/internal/ledger"
	"mediatidy/internal/tagreader"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var assume string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "collect <source-dir>",
		Short: "Scan a source tree into the inventory ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			categorize, err := categorizer(cmd, assume)
			if err != nil {
				return err
			}

			release, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer release()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			registry, err := extreg.Load(cfg.Paths.RegistryPath)
			if err != nil {
				return err
			}
			resolver, err := datestamp.NewResolver(datestamp.ResolverOptions{
				EXIF:      tagreader.EXIFReader{},
				Meta:      tagreader.ProbeReader{Binary: cfg.Probe.Binary},
				EXIFKeys:  cfg.Dates.EXIFKeys,
				MetaKeys:  cfg.Dates.MetaKeys,
				FloorYear: cfg.Dates.FloorYear,
				Prefer:    ctx.mismatchPreference(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			summary, err := collect.Run(cmd.Context(), collect.Options{
				Source:       source,
				Store:        store,
				Registry:     registry,
				Resolver:     resolver,
				Categorize:   categorize,
				Logger:       logger.With("run", runID),
				ShowProgress: !noProgress && interactive(),
			})
			if err != nil {
				return err
			}

			extra, err := ledgerBreakdown(cmd.Context(), store, "ext", "exif_key", "meta_key")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCollectSummary(summary, extra))
			return nil
		},
	}

	cmd.Flags().StringVar(&assume, "assume", "", "Category for unknown extensions (image/video/other); defaults to prompting when interactive")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// categorizer picks how unknown extensions are settled: a fixed answer
// from --assume, a prompt on a terminal, or nothing (making any unknown
// extension a run error).
func categorizer(cmd *cobra.Command, assume string) (extreg.Resolver, error) {
	if assume != "" {
		category := extreg.Category(assume)
		if !category.Known() {
			return nil, fmt.Errorf("--assume must be image, video or other, got %q", assume)
		}
		return extreg.StaticResolver(category), nil
	}
	if interactive() {
		return extreg.PromptResolver(cmd.InOrStdin(), cmd.OutOrStdout()), nil
	}
	return nil, nil
}

func renderCollectSummary(summary collect.Summary, extra [][]string) string {
	rows := [][]string{
		{"Scanned", fmt.Sprintf("%d", summary.Scanned)},
		{"Skipped", fmt.Sprintf("%d", summary.Failed)},
		{"Bytes", fmt.Sprintf("%d", summary.TotalBytes)},
	}
	for _, category := range sortedKeys(summary.ByCategory) {
		rows = append(rows, []string{"Category " + string(category), fmt.Sprintf("%d", summary.ByCategory[category])})
	}
	for _, class := range sortedKeys(summary.ByClassification) {
		rows = append(rows, []string{"Class " + string(class), fmt.Sprintf("%d", summary.ByClassification[class])})
	}
	rows = append(rows, extra...)
	return renderTable([]string{"Collect", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

// ledgerBreakdown turns per-column value counts into summary rows,
// skipping empty values (files without that projection).
func ledgerBreakdown(ctx context.Context, store *ledger.Store, columns ...string) ([][]string, error) {
	var rows [][]string
	for _, column := range columns {
		counts, err := store.CountByColumn(ctx, column)
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(counts))
		for value := range counts {
			if value != "" {
				values = append(values, value)
			}
		}
		sort.Strings(values)
		for _, value := range values {
			rows = append(rows, []string{column + " " + value, fmt.Sprintf("%d", counts[value])})
		}
	}
	return rows, nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
