package ledger

import (
	"time"

	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
)

// inventoryColumns is the fixed 14-column layout of the inventory
// ledger, in order. Consumers validate this exact set before
// processing.
var inventoryColumns = []string{
	"path",
	"category",
	"ext",
	"size",
	"hash",
	"classification",
	"exif_key",
	"exif_raw",
	"exif_short",
	"exif_long",
	"meta_key",
	"meta_raw",
	"meta_short",
	"meta_long",
}

// Record is one inventory row: a file, its category, its content
// identity, and both sources' date projections.
type Record struct {
	ID             int64
	Path           string
	Category       extreg.Category
	Ext            string
	Size           int64
	Hash           string
	Classification datestamp.Classification
	EXIFKey        string
	EXIFRaw        string
	EXIFShort      string
	EXIFLong       string
	MetaKey        string
	MetaRaw        string
	MetaShort      string
	MetaLong       string
	CreatedAt      time.Time
}

// DateRecord rebuilds the resolver's view of the row so the tidy stage
// can recompute confidence codes and filing forms with the same pure
// functions the collection stage used.
func (r Record) DateRecord() datestamp.Record {
	exifStatus := datestamp.StatusNoDateField
	if r.EXIFLong != "" {
		exifStatus = datestamp.StatusOK
	}
	metaStatus := datestamp.StatusNoDateField
	if r.MetaLong != "" {
		metaStatus = datestamp.StatusOK
	}
	return datestamp.Record{
		Path: r.Path,
		EXIF: datestamp.ExtractionResult{
			Source: datestamp.SourceEXIF,
			Status: exifStatus,
			TagKey: r.EXIFKey,
			Raw:    r.EXIFRaw,
			Short:  r.EXIFShort,
			Long:   r.EXIFLong,
		},
		Meta: datestamp.ExtractionResult{
			Source: datestamp.SourceMeta,
			Status: metaStatus,
			TagKey: r.MetaKey,
			Raw:    r.MetaRaw,
			Short:  r.MetaShort,
			Long:   r.MetaLong,
		},
		Classification: r.Classification,
	}
}

// DuplicateKey is the identity triple two records must share to be
// duplicate candidates.
type DuplicateKey struct {
	Ext  string
	Size int64
	Hash string
}

// DuplicateGroup is a set of records sharing one identity triple,
// ordered by original ledger order.
type DuplicateGroup struct {
	Key     DuplicateKey
	Records []Record
}

// YearAuditRow records a quarantined file for manual review.
type YearAuditRow struct {
	OriginalPath string
	TargetPath   string
	Size         int64
	EXIFKey      string
	EXIFRaw      string
	EXIFLong     string
	MetaKey      string
	MetaRaw      string
	MetaLong     string
}

// FailureRow records a file that could not be placed.
type FailureRow struct {
	RunID        string
	OriginalPath string
	TargetPath   string
	Mode         string
	Size         int64
	Reason       string
}
