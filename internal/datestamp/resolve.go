package datestamp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// Classification describes how the two metadata sources agreed on a
// date. The string values are what the inventory ledger stores.
type Classification string

const (
	// ClassBoth means both sources produced the same long-form date.
	ClassBoth Classification = "BOTH"
	// ClassEXIF and ClassMeta mean exactly one source produced a valid date.
	ClassEXIF Classification = "EXIF"
	ClassMeta Classification = "META"
	// ClassMismatch means both sources are valid but disagree.
	ClassMismatch Classification = "D_ERR"
	// ClassYearRange means the filing year falls outside the accepted
	// window; the underlying values are retained for audit.
	ClassYearRange Classification = "Y_ERR"
	// ClassNone means neither source yielded a valid date.
	ClassNone Classification = "NONE"
)

// Record aggregates both extraction results for one file.
type Record struct {
	Path           string
	EXIF           ExtractionResult
	Meta           ExtractionResult
	Classification Classification
	// Confidence is the tier code used in archive file names, e.g.
	// EXIF_0, BOTH_1 or D_META_2.
	Confidence string
	// Preferred is the side whose date files the record. Meaningful
	// for every dated classification, including mismatches.
	Preferred Source
}

// Dated reports whether the record carries a usable filing date.
func (r Record) Dated() bool {
	switch r.Classification {
	case ClassBoth, ClassEXIF, ClassMeta, ClassMismatch:
		return true
	}
	return false
}

func (r Record) preferredResult() ExtractionResult {
	if r.Preferred == SourceMeta {
		return r.Meta
	}
	return r.EXIF
}

// FilingShort returns the preferred side's YYYY/MM form.
func (r Record) FilingShort() string { return r.preferredResult().Short }

// FilingLong returns the preferred side's YYYYMMDD_HHMMSS form.
func (r Record) FilingLong() string { return r.preferredResult().Long }

// ResolverOptions configures a Resolver. Zero fields fall back to the
// defaults documented on each field.
type ResolverOptions struct {
	EXIF Extractor
	Meta Extractor
	// EXIFKeys and MetaKeys are the per-source priority slots: index 0
	// is the most authoritative ("original"), 1 "digitized", 2 the
	// generic fallback.
	EXIFKeys []string
	MetaKeys []string
	// FloorYear is the oldest filing year accepted. Default 2000.
	FloorYear int
	// Prefer breaks mismatch ties when both sources matched the same
	// slot. Default SourceEXIF.
	Prefer Source
	// Now supplies the current-year ceiling. Default time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Resolver reconciles the two extractors into one classified record
// per file.
type Resolver struct {
	opts ResolverOptions
}

// NewResolver builds a resolver. EXIF, Meta, EXIFKeys and MetaKeys are
// required.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.EXIF == nil || opts.Meta == nil {
		return nil, fmt.Errorf("resolver: both extractors are required")
	}
	if len(opts.EXIFKeys) == 0 || len(opts.MetaKeys) == 0 {
		return nil, fmt.Errorf("resolver: tag key slots are required")
	}
	if opts.FloorYear == 0 {
		opts.FloorYear = 2000
	}
	if opts.Prefer == "" {
		opts.Prefer = SourceEXIF
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{opts: opts}, nil
}

// Resolve runs both extractors against path and reconciles the
// outcome. Extraction and normalization failures degrade the record;
// they never surface as errors, so a batch is never aborted by one
// file.
func (r *Resolver) Resolve(ctx context.Context, path string) Record {
	log := r.opts.Logger.With("path", path)

	exif := r.normalized(r.opts.EXIF.Extract(ctx, path, r.opts.EXIFKeys), log)
	meta := r.normalized(r.opts.Meta.Extract(ctx, path, r.opts.MetaKeys), log)

	rec := Record{Path: path, EXIF: exif, Meta: meta}
	rec.Classification = classify(exif, meta)
	if code, side, ok := Confidence(rec.Classification, exif.TagKey, meta.TagKey, r.opts.EXIFKeys, r.opts.MetaKeys, r.opts.Prefer); ok {
		rec.Confidence = code
		rec.Preferred = side
	}

	if rec.Dated() {
		if year, err := filingYear(rec.FilingShort()); err != nil {
			log.Warn("unparsable filing year", "short", rec.FilingShort(), "error", err)
			rec.Classification = ClassYearRange
		} else if year < r.opts.FloorYear || year > r.opts.Now().Year() {
			log.Debug("filing year outside accepted range", "year", year, "floor", r.opts.FloorYear)
			rec.Classification = ClassYearRange
		}
	}

	log.Debug("resolved date",
		"classification", rec.Classification,
		"confidence", rec.Confidence,
		"exif_status", exif.Status,
		"meta_status", meta.Status)
	return rec
}

// normalized runs a raw extraction through the normalizer, rendering
// the short and long forms or downgrading the status to invalid_date.
func (r *Resolver) normalized(res ExtractionResult, log *slog.Logger) ExtractionResult {
	if res.Status != StatusOK {
		log.Debug("source yielded no date", "source", res.Source, "status", res.Status)
		return res
	}
	c, err := Normalize(res.Raw)
	if err != nil {
		log.Debug("normalization failed", "source", res.Source, "raw", res.Raw, "error", err)
		res.Status = StatusInvalidDate
		return res
	}
	res.Short = c.ShortForm()
	res.Long = c.LongForm()
	return res
}

// classify is a pure function of the two post-normalization results.
func classify(exif, meta ExtractionResult) Classification {
	switch {
	case exif.Valid() && meta.Valid():
		if exif.Long == meta.Long {
			return ClassBoth
		}
		return ClassMismatch
	case exif.Valid():
		return ClassEXIF
	case meta.Valid():
		return ClassMeta
	default:
		return ClassNone
	}
}

// Confidence derives the tier code and the side whose date files the
// record. It is pure so the tidy stage can recompute it from a ledger
// row using the same slot lists the collection stage used. The third
// return is false for classifications that carry no date.
func Confidence(class Classification, exifKey, metaKey string, exifKeys, metaKeys []string, prefer Source) (string, Source, bool) {
	exifSlot := slotIndex(exifKeys, exifKey)
	metaSlot := slotIndex(metaKeys, metaKey)

	switch class {
	case ClassEXIF:
		if exifSlot < 0 {
			return "", "", false
		}
		return fmt.Sprintf("EXIF_%d", exifSlot), SourceEXIF, true
	case ClassMeta:
		if metaSlot < 0 {
			return "", "", false
		}
		return fmt.Sprintf("META_%d", metaSlot), SourceMeta, true
	case ClassBoth:
		tier := minSlot(exifSlot, metaSlot)
		if tier < 0 {
			return "", "", false
		}
		// Both long forms are equal; EXIF is the nominal side.
		return fmt.Sprintf("BOTH_%d", tier), SourceEXIF, true
	case ClassMismatch:
		for tier := 0; tier < maxSlots(exifKeys, metaKeys); tier++ {
			exifAt := exifSlot == tier
			metaAt := metaSlot == tier
			switch {
			case exifAt && metaAt:
				return fmt.Sprintf("D_%s_%d", prefer, tier), prefer, true
			case exifAt:
				return fmt.Sprintf("D_%s_%d", SourceEXIF, tier), SourceEXIF, true
			case metaAt:
				return fmt.Sprintf("D_%s_%d", SourceMeta, tier), SourceMeta, true
			}
		}
		return "", "", false
	default:
		return "", "", false
	}
}

func slotIndex(keys []string, key string) int {
	if key == "" {
		return -1
	}
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func minSlot(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func maxSlots(a, b []string) int {
	if len(a) > len(b) {
		return len(a)
	}
	return len(b)
}

func filingYear(short string) (int, error) {
	if len(short) < 4 {
		return 0, fmt.Errorf("short form %q too short", short)
	}
	return strconv.Atoi(short[:4])
}
