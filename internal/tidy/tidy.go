// Package tidy implements the archival stage: validate the inventory
// ledger, settle duplicates, build the target tree, and place every
// record at its planned destination, writing the side ledgers as it
// goes.
package tidy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"mediatidy/internal/archive"
	"mediatidy/internal/datestamp"
	"mediatidy/internal/ledger"
)

// DuplicateDecider settles what to do with duplicate candidate groups
// before any file is placed. Returning true drops every record but the
// first of each group from the run; false keeps them all. There is no
// default: when groups exist and no decider is configured, the run
// aborts.
type DuplicateDecider func(groups []ledger.DuplicateGroup) (bool, error)

// AcceptDuplicates and KeepDuplicates are the unattended deciders
// behind the command-line flags.
func AcceptDuplicates([]ledger.DuplicateGroup) (bool, error) { return true, nil }
func KeepDuplicates([]ledger.DuplicateGroup) (bool, error)   { return false, nil }

// Options configures one tidy run.
type Options struct {
	// Output is the directory the organized tree is built under.
	Output string
	Mode   archive.Mode
	Store  *ledger.Store
	// FloorYear..current year is the pre-created month-dir range and
	// must match the collection run's year gate.
	FloorYear int
	// EXIFKeys, MetaKeys and Prefer must match the collection run so
	// recomputed confidence codes agree with the stored classifications.
	EXIFKeys []string
	MetaKeys []string
	Prefer   datestamp.Source
	Routes   archive.Routes

	Duplicates DuplicateDecider
	RunID      string
	Logger     *slog.Logger
	Now        func() time.Time
	// ShowProgress renders a terminal progress bar over the placement pass.
	ShowProgress bool
}

// Summary reports what one tidy run did.
type Summary struct {
	Total             int
	Placed            int
	DroppedDuplicates int
	Quarantined       int
	Failed            int
	BytesPlaced       int64
	ByClassification  map[datestamp.Classification]int
}

// Run executes the archival stage. Placement is strictly sequential:
// the per-directory sequence numbers depend on it.
func Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	if opts.Store == nil {
		return summary, fmt.Errorf("tidy: ledger store is required")
	}
	if opts.Output == "" {
		return summary, fmt.Errorf("tidy: output directory is required")
	}
	if opts.Mode != archive.ModeCopy && opts.Mode != archive.ModeMove {
		return summary, fmt.Errorf("tidy: unsupported placement mode %q", opts.Mode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FloorYear == 0 {
		opts.FloorYear = 2000
	}

	if err := opts.Store.CheckInventoryColumns(ctx); err != nil {
		return summary, err
	}
	records, err := opts.Store.ListRecords(ctx)
	if err != nil {
		return summary, err
	}
	if len(records) == 0 {
		return summary, ledger.ErrEmptyInventory
	}

	if err := opts.Store.ClearSideLedgers(ctx); err != nil {
		return summary, err
	}

	records, dropped, err := settleDuplicates(ctx, records, opts)
	if err != nil {
		return summary, err
	}
	summary.DroppedDuplicates = dropped
	summary.Total = len(records)

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}
	if opts.Mode == archive.ModeCopy {
		var required int64
		for _, rec := range records {
			required += rec.Size
		}
		if err := archive.CheckFreeSpace(opts.Output, required); err != nil {
			return summary, err
		}
	}

	currentYear := opts.Now().Year()
	if err := archive.EnsureCategoryDirs(opts.Output, opts.Routes); err != nil {
		return summary, err
	}
	if err := archive.EnsureMonthDirs(opts.Output, opts.Routes, opts.FloorYear, currentYear); err != nil {
		return summary, err
	}

	planner, err := archive.NewPlanner(archive.PlannerOptions{
		Root:     opts.Output,
		Routes:   opts.Routes,
		EXIFKeys: opts.EXIFKeys,
		MetaKeys: opts.MetaKeys,
		Prefer:   opts.Prefer,
	})
	if err != nil {
		return summary, err
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(records)), "tidy")
	}
	summary.ByClassification = make(map[datestamp.Classification]int)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if err := place(ctx, rec, planner, opts, &summary); err != nil {
			return summary, err
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := archive.RemoveEmptyMonthDirs(opts.Output, opts.Routes, opts.FloorYear, currentYear); err != nil {
		return summary, err
	}

	opts.Logger.Info("tidy finished",
		"placed", summary.Placed,
		"failed", summary.Failed,
		"quarantined", summary.Quarantined,
		"dropped_duplicates", summary.DroppedDuplicates)
	return summary, nil
}

// settleDuplicates records the duplicate groups in the side ledger and
// applies the configured decision.
func settleDuplicates(ctx context.Context, records []ledger.Record, opts Options) ([]ledger.Record, int, error) {
	groups, err := opts.Store.DuplicateGroups(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(groups) == 0 {
		return records, 0, nil
	}
	if err := opts.Store.ReplaceDuplicateCandidates(ctx, groups); err != nil {
		return nil, 0, err
	}
	if opts.Duplicates == nil {
		return nil, 0, fmt.Errorf("tidy: %d duplicate groups present and no duplicate decision configured", len(groups))
	}
	drop, err := opts.Duplicates(groups)
	if err != nil {
		return nil, 0, err
	}
	if !drop {
		opts.Logger.Info("duplicates kept", "groups", len(groups))
		return records, 0, nil
	}

	// Keep the first occurrence of each group, in ledger order. The
	// dropped rows leave the inventory too; their identities survive in
	// the duplicate-candidates side ledger.
	redundant := make(map[int64]struct{})
	var redundantIDs []int64
	for _, group := range groups {
		for _, rec := range group.Records[1:] {
			redundant[rec.ID] = struct{}{}
			redundantIDs = append(redundantIDs, rec.ID)
		}
	}
	kept := records[:0]
	for _, rec := range records {
		if _, drop := redundant[rec.ID]; drop {
			continue
		}
		kept = append(kept, rec)
	}
	if _, err := opts.Store.RemoveRecords(ctx, redundantIDs); err != nil {
		return nil, 0, err
	}
	opts.Logger.Info("duplicates dropped", "groups", len(groups), "records", len(redundantIDs))
	return kept, len(redundantIDs), nil
}

// place plans and executes one record. Placement problems are recorded
// in the failure ledger and never abort the run; only ledger write
// errors do.
func place(ctx context.Context, rec ledger.Record, planner *archive.Planner, opts Options, summary *Summary) error {
	log := opts.Logger.With("path", rec.Path)

	dst, err := planner.Plan(rec)
	if err != nil {
		log.Warn("planning failed", "error", err)
		summary.Failed++
		return opts.Store.AppendFailure(ctx, ledger.FailureRow{
			RunID:        opts.RunID,
			OriginalPath: rec.Path,
			Mode:         string(opts.Mode),
			Size:         rec.Size,
			Reason:       err.Error(),
		})
	}

	if err := archive.Place(rec.Path, dst, opts.Mode); err != nil {
		log.Warn("placement failed", "target", dst.Path(), "error", err)
		planner.Invalidate(dst)
		summary.Failed++
		return opts.Store.AppendFailure(ctx, ledger.FailureRow{
			RunID:        opts.RunID,
			OriginalPath: rec.Path,
			TargetPath:   dst.Path(),
			Mode:         string(opts.Mode),
			Size:         rec.Size,
			Reason:       err.Error(),
		})
	}
	planner.Advance(dst)
	summary.Placed++
	summary.BytesPlaced += rec.Size
	summary.ByClassification[rec.Classification]++

	if rec.Classification == datestamp.ClassYearRange {
		summary.Quarantined++
		if err := opts.Store.AppendYearAudit(ctx, ledger.YearAuditRow{
			OriginalPath: rec.Path,
			TargetPath:   dst.Path(),
			Size:         rec.Size,
			EXIFKey:      rec.EXIFKey,
			EXIFRaw:      rec.EXIFRaw,
			EXIFLong:     rec.EXIFLong,
			MetaKey:      rec.MetaKey,
			MetaRaw:      rec.MetaRaw,
			MetaLong:     rec.MetaLong,
		}); err != nil {
			return err
		}
	}
	return nil
}

// IsEmptyInventory reports whether err means there is nothing to tidy.
func IsEmptyInventory(err error) bool {
	return errors.Is(err, ledger.ErrEmptyInventory)
}
