package datestamp_test

import (
	"context"
	"testing"
	"time"

	"mediatidy/internal/datestamp"
)

var (
	exifKeys = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}
	metaKeys = []string{"com.apple.quicktime.creationdate", "creation_time", "date"}
)

// stubExtractor returns a fixed result regardless of path.
type stubExtractor struct {
	source datestamp.Source
	status datestamp.ExtractionStatus
	slot   int
	raw    string
}

func (s stubExtractor) Extract(_ context.Context, _ string, keys []string) datestamp.ExtractionResult {
	res := datestamp.ExtractionResult{Source: s.source, Status: s.status}
	if s.status == datestamp.StatusOK {
		res.TagKey = keys[s.slot]
		res.Raw = s.raw
	}
	return res
}

func exifOK(slot int, raw string) stubExtractor {
	return stubExtractor{source: datestamp.SourceEXIF, status: datestamp.StatusOK, slot: slot, raw: raw}
}

func metaOK(slot int, raw string) stubExtractor {
	return stubExtractor{source: datestamp.SourceMeta, status: datestamp.StatusOK, slot: slot, raw: raw}
}

func exifMiss(status datestamp.ExtractionStatus) stubExtractor {
	return stubExtractor{source: datestamp.SourceEXIF, status: status}
}

func metaMiss(status datestamp.ExtractionStatus) stubExtractor {
	return stubExtractor{source: datestamp.SourceMeta, status: status}
}

func newResolver(t *testing.T, opts datestamp.ResolverOptions) *datestamp.Resolver {
	t.Helper()
	if opts.EXIFKeys == nil {
		opts.EXIFKeys = exifKeys
	}
	if opts.MetaKeys == nil {
		opts.MetaKeys = metaKeys
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	}
	r, err := datestamp.NewResolver(opts)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	return r
}

func TestResolveClassificationTable(t *testing.T) {
	cases := []struct {
		name  string
		exif  stubExtractor
		meta  stubExtractor
		class datestamp.Classification
		long  string
		code  string
	}{
		{
			name:  "both agree",
			exif:  exifOK(0, "2021:01:01 12:00:00"),
			meta:  metaOK(0, "2021-01-01 12:00:00"),
			class: datestamp.ClassBoth,
			long:  "20210101_120000",
			code:  "BOTH_0",
		},
		{
			name:  "both valid but differ",
			exif:  exifOK(0, "2021:01:01 12:00:00"),
			meta:  metaOK(0, "2021:01:02 12:00:00"),
			class: datestamp.ClassMismatch,
			long:  "20210101_120000",
			code:  "D_EXIF_0",
		},
		{
			name:  "exif only",
			exif:  exifOK(1, "2022:04:01 15:25:38"),
			meta:  metaMiss(datestamp.StatusNoDateField),
			class: datestamp.ClassEXIF,
			long:  "20220401_152538",
			code:  "EXIF_1",
		},
		{
			name:  "meta only",
			exif:  exifMiss(datestamp.StatusNoTags),
			meta:  metaOK(2, "2022:04:01 15:25:38"),
			class: datestamp.ClassMeta,
			long:  "20220401_152538",
			code:  "META_2",
		},
		{
			name:  "exif invalid leaves meta",
			exif:  exifOK(0, "not a date"),
			meta:  metaOK(0, "2021:01:01 12:00:00"),
			class: datestamp.ClassMeta,
			long:  "20210101_120000",
			code:  "META_0",
		},
		{
			name:  "both invalid",
			exif:  exifOK(0, "not a date"),
			meta:  metaOK(0, "also junk"),
			class: datestamp.ClassNone,
		},
		{
			name:  "both absent",
			exif:  exifMiss(datestamp.StatusUnreadable),
			meta:  metaMiss(datestamp.StatusNoTags),
			class: datestamp.ClassNone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newResolver(t, datestamp.ResolverOptions{EXIF: tc.exif, Meta: tc.meta})
			rec := r.Resolve(context.Background(), "photo.jpg")
			if rec.Classification != tc.class {
				t.Fatalf("classification = %s, want %s", rec.Classification, tc.class)
			}
			if rec.FilingLong() != tc.long {
				t.Fatalf("filing long = %q, want %q", rec.FilingLong(), tc.long)
			}
			if rec.Confidence != tc.code {
				t.Fatalf("confidence = %q, want %q", rec.Confidence, tc.code)
			}
		})
	}
}

func TestResolveNormalizationFailureDowngradesStatus(t *testing.T) {
	r := newResolver(t, datestamp.ResolverOptions{
		EXIF: exifOK(0, "garbage"),
		Meta: metaMiss(datestamp.StatusNoTags),
	})
	rec := r.Resolve(context.Background(), "photo.jpg")
	if rec.EXIF.Status != datestamp.StatusInvalidDate {
		t.Fatalf("exif status = %s, want %s", rec.EXIF.Status, datestamp.StatusInvalidDate)
	}
	// The three-way absence distinction must survive on the other side.
	if rec.Meta.Status != datestamp.StatusNoTags {
		t.Fatalf("meta status = %s, want %s", rec.Meta.Status, datestamp.StatusNoTags)
	}
}

func TestResolveMismatchPrefersMostAuthoritativeSlot(t *testing.T) {
	// META matched slot 0, EXIF only slot 1: META's date must file the
	// record even though EXIF is the default tie-break side.
	r := newResolver(t, datestamp.ResolverOptions{
		EXIF: exifOK(1, "2021:01:01 12:00:00"),
		Meta: metaOK(0, "2021:05:05 12:00:00"),
	})
	rec := r.Resolve(context.Background(), "clip.mov")
	if rec.Classification != datestamp.ClassMismatch {
		t.Fatalf("classification = %s, want %s", rec.Classification, datestamp.ClassMismatch)
	}
	if rec.Confidence != "D_META_0" {
		t.Fatalf("confidence = %q, want D_META_0", rec.Confidence)
	}
	if rec.FilingLong() != "20210505_120000" {
		t.Fatalf("filing long = %q, want META side", rec.FilingLong())
	}
}

func TestResolveMismatchTieBreakIsConfigurable(t *testing.T) {
	exif := exifOK(0, "2021:01:01 12:00:00")
	meta := metaOK(0, "2021:05:05 12:00:00")

	r := newResolver(t, datestamp.ResolverOptions{EXIF: exif, Meta: meta})
	rec := r.Resolve(context.Background(), "clip.mov")
	if rec.Confidence != "D_EXIF_0" || rec.FilingLong() != "20210101_120000" {
		t.Fatalf("default tie-break should prefer EXIF, got %q / %q", rec.Confidence, rec.FilingLong())
	}

	r = newResolver(t, datestamp.ResolverOptions{EXIF: exif, Meta: meta, Prefer: datestamp.SourceMeta})
	rec = r.Resolve(context.Background(), "clip.mov")
	if rec.Confidence != "D_META_0" || rec.FilingLong() != "20210505_120000" {
		t.Fatalf("meta tie-break not honored, got %q / %q", rec.Confidence, rec.FilingLong())
	}
}

func TestResolveYearGate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want datestamp.Classification
	}{
		{"below floor", "1999:06:01 10:00:00", datestamp.ClassYearRange},
		{"after current year", "2025:06:01 10:00:00", datestamp.ClassYearRange},
		{"floor year accepted", "2000:06:01 10:00:00", datestamp.ClassBoth},
		{"current year accepted", "2024:06:01 10:00:00", datestamp.ClassBoth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newResolver(t, datestamp.ResolverOptions{
				EXIF: exifOK(0, tc.raw),
				Meta: metaOK(0, tc.raw),
			})
			rec := r.Resolve(context.Background(), "photo.jpg")
			if rec.Classification != tc.want {
				t.Fatalf("classification = %s, want %s", rec.Classification, tc.want)
			}
			if tc.want == datestamp.ClassYearRange && rec.EXIF.Raw != tc.raw {
				t.Fatal("raw values must be retained for audit")
			}
		})
	}
}

func TestResolveYearGateHonorsFloorOverride(t *testing.T) {
	r := newResolver(t, datestamp.ResolverOptions{
		EXIF:      exifOK(0, "1995:06:01 10:00:00"),
		Meta:      metaOK(0, "1995:06:01 10:00:00"),
		FloorYear: 1990,
	})
	rec := r.Resolve(context.Background(), "scan.jpg")
	if rec.Classification != datestamp.ClassBoth {
		t.Fatalf("classification = %s, want %s", rec.Classification, datestamp.ClassBoth)
	}
}

func TestConfidenceBothUsesMostAuthoritativeSlot(t *testing.T) {
	code, side, ok := datestamp.Confidence(datestamp.ClassBoth, exifKeys[2], metaKeys[1], exifKeys, metaKeys, datestamp.SourceEXIF)
	if !ok || code != "BOTH_1" || side != datestamp.SourceEXIF {
		t.Fatalf("got %q/%s/%v, want BOTH_1/EXIF/true", code, side, ok)
	}
}
