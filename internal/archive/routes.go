package archive

import (
	"sort"

	"mediatidy/internal/config"
	"mediatidy/internal/extreg"
)

// Routes is the category routing table: which tree a file lands in
// given its category and whether it carries a filing date. Quarantine
// is independent of category.
type Routes struct {
	DatedImages   string
	DatedVideos   string
	UndatedImages string
	UndatedVideos string
	Other         string
	Quarantine    string
}

// RoutesFromConfig maps the configuration's archive section onto a
// routing table.
func RoutesFromConfig(cfg config.Archive) Routes {
	return Routes{
		DatedImages:   cfg.DatedImagesDir,
		DatedVideos:   cfg.DatedVideosDir,
		UndatedImages: cfg.UndatedImagesDir,
		UndatedVideos: cfg.UndatedVideosDir,
		Other:         cfg.OtherDir,
		Quarantine:    cfg.QuarantineDir,
	}
}

// DatedBase returns the tree for dated files of the given category.
func (r Routes) DatedBase(category extreg.Category) (string, bool) {
	switch category {
	case extreg.CategoryImage:
		return r.DatedImages, true
	case extreg.CategoryVideo:
		return r.DatedVideos, true
	}
	return "", false
}

// UndatedBase returns the tree for undated files of the given category.
func (r Routes) UndatedBase(category extreg.Category) (string, bool) {
	switch category {
	case extreg.CategoryImage:
		return r.UndatedImages, true
	case extreg.CategoryVideo:
		return r.UndatedVideos, true
	}
	return "", false
}

// All returns every routed directory name, deduplicated and sorted.
func (r Routes) All() []string {
	return dedupe([]string{r.DatedImages, r.DatedVideos, r.UndatedImages, r.UndatedVideos, r.Other, r.Quarantine})
}

// DatedBases returns the trees that receive year/month subdirectories,
// deduplicated (dated images and videos may share one tree).
func (r Routes) DatedBases() []string {
	return dedupe([]string{r.DatedImages, r.DatedVideos})
}

func dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}
