package archive_test

import (
	"os"
	"path/filepath"
	"testing"

	"mediatidy/internal/archive"
	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
	"mediatidy/internal/ledger"
)

var (
	testEXIFKeys = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}
	testMetaKeys = []string{"com.apple.quicktime.creationdate", "creation_time", "date"}
)

func testRoutes() archive.Routes {
	return archive.Routes{
		DatedImages:   "Photos_bydt",
		DatedVideos:   "Photos_bydt",
		UndatedImages: "Photos_nodt",
		UndatedVideos: "Videos_nodt",
		Other:         "Other_files",
		Quarantine:    "Year_err",
	}
}

func newPlanner(t *testing.T, root string) *archive.Planner {
	t.Helper()
	planner, err := archive.NewPlanner(archive.PlannerOptions{
		Root:     root,
		Routes:   testRoutes(),
		EXIFKeys: testEXIFKeys,
		MetaKeys: testMetaKeys,
	})
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	return planner
}

func datedRecord(path string) ledger.Record {
	return ledger.Record{
		Path:           path,
		Category:       extreg.CategoryImage,
		Ext:            "jpg",
		Size:           1024,
		Classification: datestamp.ClassEXIF,
		EXIFKey:        "DateTimeOriginal",
		EXIFRaw:        "2022:04:01 15:25:38",
		EXIFShort:      "2022/04",
		EXIFLong:       "20220401_152538",
	}
}

func TestPlanDatedNaming(t *testing.T) {
	root := t.TempDir()
	monthDir := filepath.Join(root, "Photos_bydt", "2022", "04")
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		t.Fatal(err)
	}
	planner := newPlanner(t, root)

	dst, err := planner.Plan(datedRecord("/in/照片 a.jpg"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if dst.Dir != monthDir {
		t.Fatalf("dir = %q, want %q", dst.Dir, monthDir)
	}
	if dst.Name != "IMG_20220401_152538_EXIF_0_00001.jpg" {
		t.Fatalf("name = %q", dst.Name)
	}
}

func TestPlanSequenceAdvancesPerPlacement(t *testing.T) {
	root := t.TempDir()
	monthDir := filepath.Join(root, "Photos_bydt", "2022", "04")
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		t.Fatal(err)
	}
	planner := newPlanner(t, root)

	want := []string{
		"IMG_20220401_152538_EXIF_0_00001.jpg",
		"IMG_20220401_152538_EXIF_0_00002.jpg",
		"IMG_20220401_152538_EXIF_0_00003.jpg",
	}
	for i, name := range want {
		dst, err := planner.Plan(datedRecord("/in/a.jpg"))
		if err != nil {
			t.Fatalf("Plan %d failed: %v", i, err)
		}
		if dst.Name != name {
			t.Fatalf("plan %d name = %q, want %q", i, dst.Name, name)
		}
		if err := os.WriteFile(dst.Path(), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		planner.Advance(dst)
	}
}

func TestPlanSequenceCountsExistingEntries(t *testing.T) {
	root := t.TempDir()
	monthDir := filepath.Join(root, "Photos_bydt", "2022", "04")
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Two files already present from an earlier run.
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if err := os.WriteFile(filepath.Join(monthDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	planner := newPlanner(t, root)

	dst, err := planner.Plan(datedRecord("/in/a.jpg"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if dst.Name != "IMG_20220401_152538_EXIF_0_00003.jpg" {
		t.Fatalf("name = %q, want sequence 00003", dst.Name)
	}
}

func TestPlanInvalidateRecountsFromDisk(t *testing.T) {
	root := t.TempDir()
	monthDir := filepath.Join(root, "Photos_bydt", "2022", "04")
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		t.Fatal(err)
	}
	planner := newPlanner(t, root)

	first, err := planner.Plan(datedRecord("/in/a.jpg"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	// Placement failed, nothing landed on disk.
	planner.Invalidate(first)

	second, err := planner.Plan(datedRecord("/in/b.jpg"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if second.Name != first.Name {
		t.Fatalf("sequence advanced across a failed placement: %q then %q", first.Name, second.Name)
	}
}

func TestPlanUndatedUsesFragment(t *testing.T) {
	root := t.TempDir()
	planner := newPlanner(t, root)

	rec := ledger.Record{
		Path:           "/in/IMG 2345 copy.jpg",
		Category:       extreg.CategoryImage,
		Ext:            "jpg",
		Classification: datestamp.ClassNone,
	}
	dst, err := planner.Plan(rec)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if dst.Dir != filepath.Join(root, "Photos_nodt") {
		t.Fatalf("dir = %q", dst.Dir)
	}
	if dst.Name != "IMG_2345_NODT_00001.jpg" {
		t.Fatalf("name = %q", dst.Name)
	}
}

func TestPlanQuarantineKeepsStem(t *testing.T) {
	root := t.TempDir()
	planner := newPlanner(t, root)

	rec := datedRecord("/in/scan.jpg")
	rec.Classification = datestamp.ClassYearRange
	rec.EXIFRaw = "1988:01:01 00:00:00"
	rec.EXIFShort = "1988/01"
	rec.EXIFLong = "19880101_000000"

	dst, err := planner.Plan(rec)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if dst.Dir != filepath.Join(root, "Year_err") {
		t.Fatalf("dir = %q", dst.Dir)
	}
	if dst.Name != "scan_00001.jpg" {
		t.Fatalf("name = %q", dst.Name)
	}
}

func TestPlanOtherKeepsStem(t *testing.T) {
	root := t.TempDir()
	planner := newPlanner(t, root)

	rec := ledger.Record{
		Path:     "/in/notes.txt",
		Category: extreg.CategoryOther,
		Ext:      "txt",
	}
	dst, err := planner.Plan(rec)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if dst.Dir != filepath.Join(root, "Other_files") || dst.Name != "notes_00001.txt" {
		t.Fatalf("destination = %q/%q", dst.Dir, dst.Name)
	}
}

func TestPlanMismatchUsesPreferredSide(t *testing.T) {
	root := t.TempDir()
	planner := newPlanner(t, root)

	rec := datedRecord("/in/a.jpg")
	rec.Classification = datestamp.ClassMismatch
	rec.MetaKey = "creation_time"
	rec.MetaRaw = "2021:12:31 23:59:59"
	rec.MetaShort = "2021/12"
	rec.MetaLong = "20211231_235959"

	// EXIF sits at tier 0, META at tier 1: the EXIF date files the record.
	dst, err := planner.Plan(rec)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	wantDir := filepath.Join(root, "Photos_bydt", "2022", "04")
	if dst.Dir != wantDir {
		t.Fatalf("dir = %q, want %q", dst.Dir, wantDir)
	}
	if dst.Name != "IMG_20220401_152538_D_EXIF_0_00001.jpg" {
		t.Fatalf("name = %q", dst.Name)
	}
}

func TestFragment(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"IMG 2345 copy", "2345"},
		{"照片_2345__底片", "2345"},
		{"__2345--67__", "2345--67"},
		{"screenshot", ""},
		{"20220401", "20220401"},
	}
	for _, tt := range tests {
		if got := archive.Fragment(tt.stem); got != tt.want {
			t.Errorf("Fragment(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}
