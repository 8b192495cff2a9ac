// Package extreg maintains the editable extension-to-category registry
// used to decide whether a file is an image, a video, or something
// else. The registry is a YAML file so operators can edit it by hand;
// unknown extensions are settled through an injectable resolver so
// batch and interactive runs share one code path.
package extreg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category buckets a file extension.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryOther Category = "other"
)

// Known reports whether c is one of the three accepted categories.
func (c Category) Known() bool {
	switch c {
	case CategoryImage, CategoryVideo, CategoryOther:
		return true
	}
	return false
}

// Resolver settles the category of an extension the registry has not
// seen before. Returning an error aborts categorization for that run.
type Resolver func(ext string) (Category, error)

// Registry maps lower-case extensions (without the dot) to categories.
type Registry struct {
	path    string
	entries map[string]Category
	dirty   bool
}

func defaults() map[string]Category {
	return map[string]Category{
		"jpg":  CategoryImage,
		"jpeg": CategoryImage,
		"png":  CategoryImage,
		"bmp":  CategoryImage,
		"gif":  CategoryImage,
		"heic": CategoryImage,
		"mp4":  CategoryVideo,
		"mov":  CategoryVideo,
	}
}

// Load reads the registry from path. A missing file yields a registry
// seeded with the built-in defaults, marked dirty so the first Save
// persists them.
func Load(path string) (*Registry, error) {
	reg := &Registry{path: path, entries: defaults(), dirty: true}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return reg, nil
		}
		return nil, fmt.Errorf("read extension registry: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse extension registry: %w", err)
	}

	entries := make(map[string]Category, len(raw))
	for ext, value := range raw {
		category := Category(strings.ToLower(strings.TrimSpace(value)))
		if !category.Known() {
			return nil, fmt.Errorf("extension registry: %q maps to unknown category %q", ext, value)
		}
		entries[normalizeExt(ext)] = category
	}
	reg.entries = entries
	reg.dirty = false
	return reg, nil
}

// Save persists the registry when it changed since loading.
func (r *Registry) Save() error {
	if !r.dirty {
		return nil
	}
	raw := make(map[string]string, len(r.entries))
	for ext, category := range r.entries {
		raw[ext] = string(category)
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode extension registry: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registry directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write extension registry: %w", err)
	}
	r.dirty = false
	return nil
}

// Lookup returns the category for an extension if already registered.
func (r *Registry) Lookup(ext string) (Category, bool) {
	category, ok := r.entries[normalizeExt(ext)]
	return category, ok
}

// Assign registers an extension's category.
func (r *Registry) Assign(ext string, category Category) {
	r.entries[normalizeExt(ext)] = category
	r.dirty = true
}

// Resolve returns the extension's category, invoking the resolver for
// extensions the registry has not seen and recording the answer.
func (r *Registry) Resolve(ext string, resolve Resolver) (Category, error) {
	if category, ok := r.Lookup(ext); ok {
		return category, nil
	}
	if resolve == nil {
		return "", fmt.Errorf("extension %q is not registered and no resolver is configured", normalizeExt(ext))
	}
	category, err := resolve(normalizeExt(ext))
	if err != nil {
		return "", err
	}
	if !category.Known() {
		return "", fmt.Errorf("resolver returned unknown category %q for %q", category, ext)
	}
	r.Assign(ext, category)
	return category, nil
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
