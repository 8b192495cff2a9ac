package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediatidy/internal/archive"
	"mediatidy/internal/config"
	"mediatidy/internal/ledger"
	"mediatidy/internal/tidy"
)

func newTidyCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var dropDuplicates bool
	var keepDuplicates bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "tidy <output-dir>",
		Short: "File the collected inventory into an organized tree",
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
			output, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			mode, err := archive.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			decider, err := duplicateDecider(cmd, dropDuplicates, keepDuplicates)
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

			runID := uuid.NewString()
			logger = logger.With("run", runID)
			summary, err := tidy.Run(cmd.Context(), tidy.Options{
				Output:       output,
				Mode:         mode,
				Store:        store,
				FloorYear:    cfg.Dates.FloorYear,
				EXIFKeys:     cfg.Dates.EXIFKeys,
				MetaKeys:     cfg.Dates.MetaKeys,
				Prefer:       ctx.mismatchPreference(),
				Routes:       archive.RoutesFromConfig(cfg.Archive),
				Duplicates:   decider,
				RunID:        runID,
				Logger:       logger,
				ShowProgress: !noProgress && interactive(),
			})
			if tidy.IsEmptyInventory(err) {
				return fmt.Errorf("inventory ledger is empty; run `mediatidy collect` first")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTidySummary(summary))
			if summary.Failed > 0 {
				fmt.Fprintf(out, "%d files failed; see `mediatidy report failures` (run %s)\n", summary.Failed, runID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", string(archive.ModeCopy), "Placement mode: copy or move")
	cmd.Flags().BoolVar(&dropDuplicates, "drop-duplicates", false, "Keep only the first record of each duplicate group")
	cmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false, "Place every record even when duplicates are present")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// duplicateDecider maps the flags onto a decision strategy. With no
// flag the operator is asked on a terminal; unattended runs must choose
// explicitly.
func duplicateDecider(cmd *cobra.Command, drop, keep bool) (tidy.DuplicateDecider, error) {
	switch {
	case drop && keep:
		return nil, fmt.Errorf("--drop-duplicates and --keep-duplicates are mutually exclusive")
	case drop:
		return tidy.AcceptDuplicates, nil
	case keep:
		return tidy.KeepDuplicates, nil
	}
	if !interactive() {
		return nil, nil
	}
	return func(groups []ledger.DuplicateGroup) (bool, error) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d duplicate groups found:\n", len(groups))
		for i, group := range groups {
			fmt.Fprintf(out, "  group %d (%s, %d bytes):\n", i+1, group.Key.Ext, group.Key.Size)
			for _, rec := range group.Records {
				fmt.Fprintf(out, "    %s\n", rec.Path)
			}
		}
		reader := bufio.NewReader(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "Drop redundant copies, keeping the first of each group? (y/n): ")
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return false, fmt.Errorf("read duplicate decision: %w", err)
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			fmt.Fprintln(out, "Please answer y or n.")
		}
	}, nil
}

func renderTidySummary(summary tidy.Summary) string {
	rows := [][]string{
		{"Total", fmt.Sprintf("%d", summary.Total)},
		{"Placed", fmt.Sprintf("%d", summary.Placed)},
		{"Dropped duplicates", fmt.Sprintf("%d", summary.DroppedDuplicates)},
		{"Quarantined", fmt.Sprintf("%d", summary.Quarantined)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Bytes placed", fmt.Sprintf("%d", summary.BytesPlaced)},
	}
	for _, class := range sortedKeys(summary.ByClassification) {
		rows = append(rows, []string{"Class " + string(class), fmt.Sprintf("%d", summary.ByClassification[class])})
	}
	return renderTable([]string{"Tidy", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
