package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureCategoryDirs creates every routed top-level directory under
// root.
func EnsureCategoryDirs(root string, routes Routes) error {
	for _, dir := range routes.All() {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("create category dir %q: %w", dir, err)
		}
	}
	return nil
}

// EnsureMonthDirs pre-creates the year/month subtree for every dated
// base, covering floorYear through currentYear inclusive. Dated files
// are then placed by rename or copy without per-file mkdir calls.
func EnsureMonthDirs(root string, routes Routes, floorYear, currentYear int) error {
	if floorYear > currentYear {
		return fmt.Errorf("year range %d..%d is empty", floorYear, currentYear)
	}
	for _, base := range routes.DatedBases() {
		for year := floorYear; year <= currentYear; year++ {
			for month := 1; month <= 12; month++ {
				dir := filepath.Join(root, base, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create month dir %q: %w", dir, err)
				}
			}
		}
	}
	return nil
}

// RemoveEmptyMonthDirs removes the year/month directories that received
// no files, then any year directory left empty. Non-empty directories
// are kept untouched.
func RemoveEmptyMonthDirs(root string, routes Routes, floorYear, currentYear int) error {
	for _, base := range routes.DatedBases() {
		for year := floorYear; year <= currentYear; year++ {
			yearDir := filepath.Join(root, base, fmt.Sprintf("%04d", year))
			for month := 1; month <= 12; month++ {
				if err := removeIfEmpty(filepath.Join(yearDir, fmt.Sprintf("%02d", month))); err != nil {
					return err
				}
			}
			if err := removeIfEmpty(yearDir); err != nil {
				return err
			}
		}
	}
	return nil
}

func removeIfEmpty(dir string) error {
	empty, err := dirIsEmpty(dir)
	if err != nil || !empty {
		return err
	}
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("remove empty dir %q: %w", dir, err)
	}
	return nil
}

func dirIsEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open dir %q: %w", dir, err)
	}
	defer f.Close()

	_, err = f.ReadDir(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read dir %q: %w", dir, err)
	}
	return false, nil
}
