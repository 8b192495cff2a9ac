package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mediatidy/internal/ledger"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect the ledgers from the last runs",
	}

	reportCmd.AddCommand(newReportSummaryCommand(ctx))
	reportCmd.AddCommand(newReportDuplicatesCommand(ctx))
	reportCmd.AddCommand(newReportAuditCommand(ctx))
	reportCmd.AddCommand(newReportFailuresCommand(ctx))

	return reportCmd
}

func withStore(ctx *commandContext, fn func(*cobra.Command, *ledger.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		store, err := ctx.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store)
	}
}

func newReportSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Counts by category and classification",
		Args:  cobra.NoArgs,
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			total, err := store.CountRecords(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{{"Records", "", fmt.Sprintf("%d", total)}}
			for _, column := range []string{"category", "classification"} {
				counts, err := store.CountByColumn(cmd.Context(), column)
				if err != nil {
					return err
				}
				values := make([]string, 0, len(counts))
				for value := range counts {
					values = append(values, value)
				}
				sort.Strings(values)
				for _, value := range values {
					rows = append(rows, []string{column, value, fmt.Sprintf("%d", counts[value])})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Column", "Value", "Count"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		}),
	}
}

func newReportDuplicatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Duplicate candidate groups from the last tidy run",
		Args:  cobra.NoArgs,
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			groups, err := store.ListDuplicateCandidates(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No duplicate candidates recorded.")
				return nil
			}
			numbers := make([]int, 0, len(groups))
			for grp := range groups {
				numbers = append(numbers, grp)
			}
			sort.Ints(numbers)
			var rows [][]string
			for _, grp := range numbers {
				for _, path := range groups[grp] {
					rows = append(rows, []string{fmt.Sprintf("%d", grp), path})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Group", "Path"}, rows,
				[]columnAlignment{alignRight, alignLeft}))
			return nil
		}),
	}
}

func newReportAuditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Files quarantined for an out-of-range year",
		Args:  cobra.NoArgs,
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			audits, err := store.ListYearAudit(cmd.Context())
			if err != nil {
				return err
			}
			if len(audits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No quarantined files recorded.")
				return nil
			}
			rows := make([][]string, 0, len(audits))
			for _, row := range audits {
				rows = append(rows, []string{
					row.OriginalPath, row.TargetPath,
					fmt.Sprintf("%d", row.Size),
					row.EXIFRaw, row.MetaRaw,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Original", "Quarantined as", "Size", "EXIF raw", "Meta raw"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		}),
	}
}

func newReportFailuresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "failures",
		Short: "Files the last tidy run could not place",
		Args:  cobra.NoArgs,
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			failures, err := store.ListFailures(cmd.Context())
			if err != nil {
				return err
			}
			if len(failures) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No placement failures recorded.")
				return nil
			}
			rows := make([][]string, 0, len(failures))
			for _, row := range failures {
				rows = append(rows, []string{
					row.RunID, row.OriginalPath, row.TargetPath, row.Mode,
					fmt.Sprintf("%d", row.Size), row.Reason,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Original", "Target", "Mode", "Size", "Reason"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		}),
	}
}
