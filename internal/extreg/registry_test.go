package extreg

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileSeedsDefaults(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "extensions.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if category, ok := reg.Lookup("JPG"); !ok || category != CategoryImage {
		t.Fatalf("jpg lookup = %q/%v, want image/true", category, ok)
	}
	if category, ok := reg.Lookup(".mov"); !ok || category != CategoryVideo {
		t.Fatalf("mov lookup = %q/%v, want video/true", category, ok)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "extensions.yaml")
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg.Assign("cr2", CategoryImage)
	if err := reg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if category, ok := reloaded.Lookup("cr2"); !ok || category != CategoryImage {
		t.Fatalf("cr2 lookup after reload = %q/%v", category, ok)
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extensions.yaml")
	if err := os.WriteFile(path, []byte("raw: document\n"), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestResolveRecordsAnswer(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "extensions.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	calls := 0
	resolver := func(ext string) (Category, error) {
		calls++
		if ext != "webm" {
			t.Fatalf("resolver got %q, want webm", ext)
		}
		return CategoryVideo, nil
	}

	for i := 0; i < 2; i++ {
		category, err := reg.Resolve(".WEBM", resolver)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if category != CategoryVideo {
			t.Fatalf("category = %q, want video", category)
		}
	}
	if calls != 1 {
		t.Fatalf("resolver called %d times, want 1", calls)
	}
}

func TestResolveWithoutResolverFails(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "extensions.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := reg.Resolve("xyz", nil); err == nil {
		t.Fatal("expected error when no resolver is configured")
	}
}

func TestPromptResolverReasksUntilValid(t *testing.T) {
	in := strings.NewReader("document\nvideo\n")
	var out strings.Builder
	resolve := PromptResolver(in, &out)

	category, err := resolve("webm")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if category != CategoryVideo {
		t.Fatalf("category = %q, want video", category)
	}
	if !strings.Contains(out.String(), "Please enter image, video or other.") {
		t.Fatal("expected re-ask message")
	}
}

func TestPromptResolverErrorsOnEOF(t *testing.T) {
	resolve := PromptResolver(strings.NewReader(""), &strings.Builder{})
	if _, err := resolve("webm"); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF error, got %v", err)
	}
}
