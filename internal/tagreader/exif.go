package tagreader

import (
	"context"
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"mediatidy/internal/datestamp"
)

// DefaultEXIFKeys are the priority slots for embedded photo metadata:
// original capture time, digitization time, then the generic field.
var DefaultEXIFKeys = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}

// EXIFReader extracts date tags embedded in image files.
type EXIFReader struct{}

// Extract returns the first requested EXIF tag present in the file.
func (EXIFReader) Extract(ctx context.Context, path string, orderedTagKeys []string) datestamp.ExtractionResult {
	res := datestamp.ExtractionResult{Source: datestamp.SourceEXIF, Status: datestamp.StatusUnreadable}
	if err := ctx.Err(); err != nil {
		return res
	}

	f, err := os.Open(path)
	if err != nil {
		return res
	}
	defer f.Close()

	decoded, err := exif.Decode(f)
	if err != nil || decoded == nil {
		res.Status = datestamp.StatusNoTags
		return res
	}

	for _, key := range orderedTagKeys {
		tag, err := decoded.Get(exif.FieldName(key))
		if err != nil || tag == nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil || value == "" {
			continue
		}
		res.Status = datestamp.StatusOK
		res.TagKey = key
		res.Raw = value
		return res
	}

	res.Status = datestamp.StatusNoDateField
	return res
}
