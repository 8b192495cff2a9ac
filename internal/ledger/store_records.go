package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
)

// InsertRecord appends one inventory row and returns its identifier.
func (s *Store) InsertRecord(ctx context.Context, rec *Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := s.exec(ctx, builder.
		Insert("inventory").
		Columns(append(append([]string{}, inventoryColumns...), "created_at")...).
		Values(
			rec.Path, string(rec.Category), rec.Ext, rec.Size, rec.Hash,
			string(rec.Classification),
			rec.EXIFKey, rec.EXIFRaw, rec.EXIFShort, rec.EXIFLong,
			rec.MetaKey, rec.MetaRaw, rec.MetaShort, rec.MetaLong,
			rec.CreatedAt.Format(time.RFC3339Nano),
		))
	if err != nil {
		return 0, fmt.Errorf("insert inventory row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ClearInventory removes all inventory rows so a fresh collection run
// starts from an empty ledger.
func (s *Store) ClearInventory(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, builder.Delete("inventory"))
	if err != nil {
		return 0, fmt.Errorf("clear inventory: %w", err)
	}
	return res.RowsAffected()
}

func recordSelect() sq.SelectBuilder {
	cols := append([]string{"id"}, inventoryColumns...)
	cols = append(cols, "created_at")
	return builder.Select(cols...).From("inventory")
}

// ListRecords returns all inventory rows in original ledger order.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.query(ctx, recordSelect().OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountRecords returns the number of inventory rows.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	query, args, err := builder.Select("COUNT(*)").From("inventory").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return count, nil
}

// CountByColumn returns per-value row counts for one inventory column.
// Used by the stage summaries (category, extension, classification,
// matched tag keys).
func (s *Store) CountByColumn(ctx context.Context, column string) (map[string]int, error) {
	allowed := map[string]struct{}{
		"category": {}, "ext": {}, "classification": {}, "exif_key": {}, "meta_key": {},
	}
	if _, ok := allowed[column]; !ok {
		return nil, fmt.Errorf("count by unsupported column %q", column)
	}

	rows, err := s.query(ctx, builder.
		Select(column, "COUNT(*)").
		From("inventory").
		GroupBy(column))
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[value] = count
	}
	return counts, rows.Err()
}

// DuplicateGroups returns the inventory rows that share an
// (ext, size, hash) identity with at least one other row, grouped and
// ordered by original ledger order.
func (s *Store) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := s.query(ctx, builder.
		Select("ext", "size", "hash").
		From("inventory").
		GroupBy("ext", "size", "hash").
		Having("COUNT(*) > 1").
		OrderBy("MIN(id)"))
	if err != nil {
		return nil, fmt.Errorf("find duplicate identities: %w", err)
	}
	defer rows.Close()

	var keys []DuplicateKey
	for rows.Next() {
		var key DuplicateKey
		if err := rows.Scan(&key.Ext, &key.Size, &key.Hash); err != nil {
			return nil, fmt.Errorf("scan duplicate identity: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]DuplicateGroup, 0, len(keys))
	for _, key := range keys {
		memberRows, err := s.query(ctx, recordSelect().
			Where(sq.Eq{"ext": key.Ext, "size": key.Size, "hash": key.Hash}).
			OrderBy("id"))
		if err != nil {
			return nil, fmt.Errorf("load duplicate group: %w", err)
		}
		records, err := scanRecords(memberRows)
		memberRows.Close()
		if err != nil {
			return nil, err
		}
		groups = append(groups, DuplicateGroup{Key: key, Records: records})
	}
	return groups, nil
}

// RemoveRecords deletes the given inventory rows.
func (s *Store) RemoveRecords(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.exec(ctx, builder.Delete("inventory").Where(sq.Eq{"id": ids}))
	if err != nil {
		return 0, fmt.Errorf("remove inventory rows: %w", err)
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec       Record
			category  string
			class     string
			createdAt string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Path, &category, &rec.Ext, &rec.Size, &rec.Hash, &class,
			&rec.EXIFKey, &rec.EXIFRaw, &rec.EXIFShort, &rec.EXIFLong,
			&rec.MetaKey, &rec.MetaRaw, &rec.MetaShort, &rec.MetaLong,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		rec.Category = extreg.Category(category)
		rec.Classification = datestamp.Classification(class)
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
