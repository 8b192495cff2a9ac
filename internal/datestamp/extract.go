package datestamp

import "context"

// Source identifies which metadata block a date came from.
type Source string

const (
	// SourceEXIF is per-image date/time tags stored inside the image file.
	SourceEXIF Source = "EXIF"
	// SourceMeta is the media container's general metadata block.
	SourceMeta Source = "META"
)

// ExtractionStatus is the outcome of pulling a date tag from one source.
type ExtractionStatus string

const (
	StatusOK ExtractionStatus = "ok"
	// StatusUnreadable means the file itself could not be opened or decoded.
	StatusUnreadable ExtractionStatus = "unreadable"
	// StatusNoTags means the file decoded but carries no tag set at all.
	StatusNoTags ExtractionStatus = "no_tags"
	// StatusNoDateField means a tag set exists but none of the requested
	// keys are present.
	StatusNoDateField ExtractionStatus = "no_date_field"
	// StatusInvalidDate means a tag matched but its value failed
	// normalization.
	StatusInvalidDate ExtractionStatus = "invalid_date"
)

// ExtractionResult is the per-source outcome for one file. It is built
// once by the resolver and never mutated afterwards. Short and Long are
// only set when Status is ok.
type ExtractionResult struct {
	Source Source
	Status ExtractionStatus
	TagKey string
	Raw    string
	Short  string
	Long   string
}

// Valid reports whether the result carries a usable normalized date.
func (r ExtractionResult) Valid() bool {
	return r.Status == StatusOK && r.Long != ""
}

// Extractor pulls one raw date string from a file. Implementations
// must return the first key in orderedTagKeys (list order is priority
// order) present in the file's decoded tag set, or the matching
// absence status. Extractors are side-effect-free; the two sources can
// run in any order.
type Extractor interface {
	Extract(ctx context.Context, path string, orderedTagKeys []string) ExtractionResult
}
