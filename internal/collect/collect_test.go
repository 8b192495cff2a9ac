package collect_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mediatidy/internal/collect"
	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
	"mediatidy/internal/ledger"
	"mediatidy/internal/testsupport"
)

var (
	testEXIFKeys = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}
	testMetaKeys = []string{"com.apple.quicktime.creationdate", "creation_time", "date"}
)

// stubExtractor serves canned raw dates keyed by file basename.
type stubExtractor struct {
	source datestamp.Source
	dates  map[string]string
}

func (s stubExtractor) Extract(_ context.Context, path string, keys []string) datestamp.ExtractionResult {
	res := datestamp.ExtractionResult{Source: s.source, Status: datestamp.StatusNoDateField}
	if raw, ok := s.dates[filepath.Base(path)]; ok {
		res.Status = datestamp.StatusOK
		res.TagKey = keys[0]
		res.Raw = raw
	}
	return res
}

func newResolver(t *testing.T, exifDates, metaDates map[string]string) *datestamp.Resolver {
	t.Helper()
	resolver, err := datestamp.NewResolver(datestamp.ResolverOptions{
		EXIF:     stubExtractor{source: datestamp.SourceEXIF, dates: exifDates},
		Meta:     stubExtractor{source: datestamp.SourceMeta, dates: metaDates},
		EXIFKeys: testEXIFKeys,
		MetaKeys: testMetaKeys,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	return resolver
}

func loadRegistry(t *testing.T) *extreg.Registry {
	t.Helper()
	reg, err := extreg.Load(filepath.Join(t.TempDir(), "extensions.yaml"))
	if err != nil {
		t.Fatalf("Load registry failed: %v", err)
	}
	return reg
}

func TestRunBuildsInventory(t *testing.T) {
	source := testsupport.WriteTree(t, map[string]string{
		"a.jpg":        "photo-a",
		"nested/b.mp4": "video-b",
		"notes.txt":    "not media",
	})
	store := testsupport.MustOpenStore(t)
	registry := loadRegistry(t)
	resolver := newResolver(t,
		map[string]string{"a.jpg": "2022:04:01 15:25:38"},
		map[string]string{"b.mp4": "2021-12-31 23:59:59"},
	)

	summary, err := collect.Run(context.Background(), collect.Options{
		Source:     source,
		Store:      store,
		Registry:   registry,
		Resolver:   resolver,
		Categorize: extreg.StaticResolver(extreg.CategoryOther),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Scanned != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.ByCategory[extreg.CategoryImage] != 1 ||
		summary.ByCategory[extreg.CategoryVideo] != 1 ||
		summary.ByCategory[extreg.CategoryOther] != 1 {
		t.Fatalf("category counts = %v", summary.ByCategory)
	}
	if summary.ByClassification[datestamp.ClassEXIF] != 1 ||
		summary.ByClassification[datestamp.ClassMeta] != 1 ||
		summary.ByClassification[datestamp.ClassNone] != 1 {
		t.Fatalf("classification counts = %v", summary.ByClassification)
	}

	records, err := store.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}

	byBase := make(map[string]ledger.Record)
	for _, rec := range records {
		byBase[filepath.Base(rec.Path)] = rec
	}
	photo := byBase["a.jpg"]
	if photo.Classification != datestamp.ClassEXIF || photo.EXIFLong != "20220401_152538" {
		t.Fatalf("photo record = %+v", photo)
	}
	if photo.EXIFKey != "DateTimeOriginal" || photo.EXIFShort != "2022/04" {
		t.Fatalf("photo projections = %+v", photo)
	}
	if photo.Hash == "" || photo.Size != int64(len("photo-a")) {
		t.Fatalf("photo identity = %+v", photo)
	}
	video := byBase["b.mp4"]
	if video.Classification != datestamp.ClassMeta || video.MetaLong != "20211231_235959" {
		t.Fatalf("video record = %+v", video)
	}
	other := byBase["notes.txt"]
	if other.Category != extreg.CategoryOther || other.Classification != datestamp.ClassNone {
		t.Fatalf("other record = %+v", other)
	}
}

func TestRunResolvesUnknownExtensionsOnce(t *testing.T) {
	source := testsupport.WriteTree(t, map[string]string{
		"a.webp": "x",
		"b.webp": "y",
	})
	store := testsupport.MustOpenStore(t)
	registry := loadRegistry(t)
	resolver := newResolver(t, nil, nil)

	asked := 0
	summary, err := collect.Run(context.Background(), collect.Options{
		Source:   source,
		Store:    store,
		Registry: registry,
		Resolver: resolver,
		Categorize: func(ext string) (extreg.Category, error) {
			asked++
			if ext != "webp" {
				t.Fatalf("asked about %q", ext)
			}
			return extreg.CategoryImage, nil
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if asked != 1 {
		t.Fatalf("resolver invoked %d times, want 1", asked)
	}
	if summary.ByCategory[extreg.CategoryImage] != 2 {
		t.Fatalf("category counts = %v", summary.ByCategory)
	}
	if category, ok := registry.Lookup("webp"); !ok || category != extreg.CategoryImage {
		t.Fatal("resolved extension was not recorded")
	}
}

func TestRunReplacesPreviousInventory(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	registry := loadRegistry(t)
	resolver := newResolver(t, nil, nil)

	first := testsupport.WriteTree(t, map[string]string{"old.jpg": "old"})
	if _, err := collect.Run(context.Background(), collect.Options{
		Source: first, Store: store, Registry: registry, Resolver: resolver,
	}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	second := testsupport.WriteTree(t, map[string]string{"new.jpg": "new"})
	if _, err := collect.Run(context.Background(), collect.Options{
		Source: second, Store: store, Registry: registry, Resolver: resolver,
	}); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	records, err := store.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 || filepath.Base(records[0].Path) != "new.jpg" {
		t.Fatalf("inventory not replaced: %+v", records)
	}
}

func TestRunRejectsMissingSource(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	registry := loadRegistry(t)
	resolver := newResolver(t, nil, nil)

	_, err := collect.Run(context.Background(), collect.Options{
		Source: filepath.Join(t.TempDir(), "missing"), Store: store, Registry: registry, Resolver: resolver,
	})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
