package ledger

import (
	"context"
	"fmt"
)

// ReplaceDuplicateCandidates rewrites the duplicate-candidates side
// ledger with the current groups.
func (s *Store) ReplaceDuplicateCandidates(ctx context.Context, groups []DuplicateGroup) error {
	if _, err := s.exec(ctx, builder.Delete("duplicate_candidates")); err != nil {
		return fmt.Errorf("clear duplicate candidates: %w", err)
	}
	for grp, group := range groups {
		for _, rec := range group.Records {
			if _, err := s.exec(ctx, builder.
				Insert("duplicate_candidates").
				Columns("grp", "path", "ext", "size", "hash").
				Values(grp+1, rec.Path, rec.Ext, rec.Size, rec.Hash)); err != nil {
				return fmt.Errorf("insert duplicate candidate: %w", err)
			}
		}
	}
	return nil
}

// AppendYearAudit records a quarantined file in the audit side ledger.
func (s *Store) AppendYearAudit(ctx context.Context, row YearAuditRow) error {
	if _, err := s.exec(ctx, builder.
		Insert("year_audit").
		Columns("original_path", "target_path", "size",
			"exif_key", "exif_raw", "exif_long",
			"meta_key", "meta_raw", "meta_long").
		Values(row.OriginalPath, row.TargetPath, row.Size,
			row.EXIFKey, row.EXIFRaw, row.EXIFLong,
			row.MetaKey, row.MetaRaw, row.MetaLong)); err != nil {
		return fmt.Errorf("insert year audit row: %w", err)
	}
	return nil
}

// AppendFailure records a file that could not be placed.
func (s *Store) AppendFailure(ctx context.Context, row FailureRow) error {
	if _, err := s.exec(ctx, builder.
		Insert("failures").
		Columns("run_id", "original_path", "target_path", "mode", "size", "reason").
		Values(row.RunID, row.OriginalPath, row.TargetPath, row.Mode, row.Size, row.Reason)); err != nil {
		return fmt.Errorf("insert failure row: %w", err)
	}
	return nil
}

// ListYearAudit returns the year-range audit rows in insertion order.
func (s *Store) ListYearAudit(ctx context.Context) ([]YearAuditRow, error) {
	rows, err := s.query(ctx, builder.
		Select("original_path", "target_path", "size",
			"exif_key", "exif_raw", "exif_long",
			"meta_key", "meta_raw", "meta_long").
		From("year_audit").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list year audit: %w", err)
	}
	defer rows.Close()

	var out []YearAuditRow
	for rows.Next() {
		var row YearAuditRow
		if err := rows.Scan(&row.OriginalPath, &row.TargetPath, &row.Size,
			&row.EXIFKey, &row.EXIFRaw, &row.EXIFLong,
			&row.MetaKey, &row.MetaRaw, &row.MetaLong); err != nil {
			return nil, fmt.Errorf("scan year audit row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListFailures returns the placement failure rows in insertion order.
func (s *Store) ListFailures(ctx context.Context) ([]FailureRow, error) {
	rows, err := s.query(ctx, builder.
		Select("run_id", "original_path", "target_path", "mode", "size", "reason").
		From("failures").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var out []FailureRow
	for rows.Next() {
		var row FailureRow
		if err := rows.Scan(&row.RunID, &row.OriginalPath, &row.TargetPath, &row.Mode, &row.Size, &row.Reason); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListDuplicateCandidates returns the duplicate side ledger grouped by
// group number.
func (s *Store) ListDuplicateCandidates(ctx context.Context) (map[int][]string, error) {
	rows, err := s.query(ctx, builder.
		Select("grp", "path").
		From("duplicate_candidates").
		OrderBy("grp", "id"))
	if err != nil {
		return nil, fmt.Errorf("list duplicate candidates: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]string)
	for rows.Next() {
		var grp int
		var path string
		if err := rows.Scan(&grp, &path); err != nil {
			return nil, fmt.Errorf("scan duplicate candidate: %w", err)
		}
		out[grp] = append(out[grp], path)
	}
	return out, rows.Err()
}

// ClearSideLedgers empties the side ledgers ahead of a tidy run so the
// tables reflect only the latest run.
func (s *Store) ClearSideLedgers(ctx context.Context) error {
	for _, table := range []string{"duplicate_candidates", "year_audit", "failures"} {
		if _, err := s.exec(ctx, builder.Delete(table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
