// Package collect implements the collection stage: walk a source tree,
// categorize every file, fingerprint it, resolve its capture date, and
// rebuild the inventory ledger.
package collect

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
	"mediatidy/internal/ledger"
)

// Options configures one collection run.
type Options struct {
	// Source is the directory to walk.
	Source   string
	Store    *ledger.Store
	Registry *extreg.Registry
	Resolver *datestamp.Resolver
	// Categorize settles extensions the registry has not seen. Nil makes
	// unknown extensions a run error.
	Categorize extreg.Resolver
	Logger     *slog.Logger
	// ShowProgress renders a terminal progress bar over the file pass.
	ShowProgress bool
}

// Summary reports what one collection run ingested.
type Summary struct {
	Scanned          int
	Failed           int
	TotalBytes       int64
	ByCategory       map[extreg.Category]int
	ByClassification map[datestamp.Classification]int
}

// Run walks the source tree and rebuilds the inventory ledger from
// scratch. Per-file extraction failures degrade that file's record and
// are counted, never fatal; only source, ledger, and registry errors
// abort the run.
func Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	if opts.Store == nil || opts.Registry == nil || opts.Resolver == nil {
		return summary, fmt.Errorf("collect: store, registry and resolver are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info, err := os.Stat(opts.Source)
	if err != nil {
		return summary, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("source %q is not a directory", opts.Source)
	}

	files, err := gather(opts.Source)
	if err != nil {
		return summary, err
	}
	opts.Logger.Info("collection starting", "source", opts.Source, "files", len(files))

	// Settle unknown extensions up front so interactive prompts finish
	// before the file pass starts.
	if err := categorize(files, opts.Registry, opts.Categorize); err != nil {
		return summary, err
	}
	if err := opts.Registry.Save(); err != nil {
		return summary, err
	}

	if _, err := opts.Store.ClearInventory(ctx); err != nil {
		return summary, err
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(files)), "collect")
	}

	summary.ByCategory = make(map[extreg.Category]int)
	summary.ByClassification = make(map[datestamp.Classification]int)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		rec, err := ingest(ctx, path, opts)
		if err != nil {
			opts.Logger.Warn("file skipped", "path", path, "error", err)
			summary.Failed++
			continue
		}
		if _, err := opts.Store.InsertRecord(ctx, rec); err != nil {
			return summary, err
		}

		summary.Scanned++
		summary.TotalBytes += rec.Size
		summary.ByCategory[rec.Category]++
		summary.ByClassification[rec.Classification]++
	}
	if bar != nil {
		_ = bar.Finish()
	}

	opts.Logger.Info("collection finished",
		"scanned", summary.Scanned,
		"failed", summary.Failed,
		"bytes", summary.TotalBytes)
	return summary, nil
}

// gather lists the regular files under source in walk order.
func gather(source string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source: %w", err)
	}
	return files, nil
}

// categorize resolves every distinct extension in files against the
// registry. Extensionless files are always "other" and never prompt.
func categorize(files []string, registry *extreg.Registry, resolve extreg.Resolver) error {
	seen := make(map[string]struct{})
	for _, path := range files {
		ext := extOf(path)
		if ext == "" {
			continue
		}
		if _, done := seen[ext]; done {
			continue
		}
		seen[ext] = struct{}{}
		if _, err := registry.Resolve(ext, resolve); err != nil {
			return err
		}
	}
	return nil
}

func ingest(ctx context.Context, path string, opts Options) (*ledger.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	ext := extOf(path)
	category := extreg.CategoryOther
	if ext != "" {
		category, _ = opts.Registry.Lookup(ext)
	}

	hash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}

	rec := &ledger.Record{
		Path:           path,
		Category:       category,
		Ext:            ext,
		Size:           info.Size(),
		Hash:           hash,
		Classification: datestamp.ClassNone,
	}

	if category == extreg.CategoryImage || category == extreg.CategoryVideo {
		ds := opts.Resolver.Resolve(ctx, path)
		rec.Classification = ds.Classification
		rec.EXIFKey = ds.EXIF.TagKey
		rec.EXIFRaw = ds.EXIF.Raw
		rec.EXIFShort = ds.EXIF.Short
		rec.EXIFLong = ds.EXIF.Long
		rec.MetaKey = ds.Meta.TagKey
		rec.MetaRaw = ds.Meta.Raw
		rec.MetaShort = ds.Meta.Short
		rec.MetaLong = ds.Meta.Long
	}
	return rec, nil
}

func extOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
