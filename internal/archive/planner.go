package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"mediatidy/internal/datestamp"
	"mediatidy/internal/extreg"
	"mediatidy/internal/ledger"
)

// Destination is a planned target for one file.
type Destination struct {
	Dir  string
	Name string
}

// Path returns the full target path.
func (d Destination) Path() string { return filepath.Join(d.Dir, d.Name) }

// PlannerOptions configures a Planner.
type PlannerOptions struct {
	// Root is the output directory the routed trees live under.
	Root      string
	Routes    Routes
	Sequencer *Sequencer
	// EXIFKeys, MetaKeys and Prefer must match the values the
	// collection stage resolved with, so recomputed confidence codes
	// agree with the classifications in the ledger.
	EXIFKeys []string
	MetaKeys []string
	Prefer   datestamp.Source
}

// Planner maps classified inventory rows to collision-free archive
// destinations.
type Planner struct {
	opts PlannerOptions
}

// NewPlanner builds a planner. Root and the tag key slots are required.
func NewPlanner(opts PlannerOptions) (*Planner, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("planner: output root is required")
	}
	if len(opts.EXIFKeys) == 0 || len(opts.MetaKeys) == 0 {
		return nil, fmt.Errorf("planner: tag key slots are required")
	}
	if opts.Sequencer == nil {
		opts.Sequencer = NewSequencer()
	}
	if opts.Prefer == "" {
		opts.Prefer = datestamp.SourceEXIF
	}
	return &Planner{opts: opts}, nil
}

// Plan computes the destination for one inventory row. Quarantine wins
// over category; non-media files keep their stem; dated media files are
// renamed to the long form plus confidence code; undated media files
// keep a letter-stripped fragment of their stem.
func (p *Planner) Plan(rec ledger.Record) (Destination, error) {
	stem := strings.TrimSuffix(filepath.Base(rec.Path), filepath.Ext(rec.Path))

	switch {
	case rec.Classification == datestamp.ClassYearRange:
		return p.sequenced(filepath.Join(p.opts.Root, p.opts.Routes.Quarantine), stem, rec.Ext)
	case rec.Category == extreg.CategoryOther:
		return p.sequenced(filepath.Join(p.opts.Root, p.opts.Routes.Other), stem, rec.Ext)
	}

	ds := rec.DateRecord()
	if !ds.Dated() {
		base, ok := p.opts.Routes.UndatedBase(rec.Category)
		if !ok {
			return Destination{}, fmt.Errorf("plan %q: no undated tree for category %q", rec.Path, rec.Category)
		}
		dir := filepath.Join(p.opts.Root, base)
		n, err := p.opts.Sequencer.Next(dir)
		if err != nil {
			return Destination{}, err
		}
		name := fmt.Sprintf("IMG_%s_NODT_%05d.%s", Fragment(stem), n, rec.Ext)
		return Destination{Dir: dir, Name: name}, nil
	}

	code, side, ok := datestamp.Confidence(rec.Classification, rec.EXIFKey, rec.MetaKey,
		p.opts.EXIFKeys, p.opts.MetaKeys, p.opts.Prefer)
	if !ok {
		return Destination{}, fmt.Errorf("plan %q: no confidence tier for %s (exif_key=%q, meta_key=%q)",
			rec.Path, rec.Classification, rec.EXIFKey, rec.MetaKey)
	}
	ds.Preferred = side

	base, ok := p.opts.Routes.DatedBase(rec.Category)
	if !ok {
		return Destination{}, fmt.Errorf("plan %q: no dated tree for category %q", rec.Path, rec.Category)
	}
	dir := filepath.Join(p.opts.Root, base, ds.FilingShort())
	n, err := p.opts.Sequencer.Next(dir)
	if err != nil {
		return Destination{}, err
	}
	name := fmt.Sprintf("IMG_%s_%s_%05d.%s", ds.FilingLong(), code, n, rec.Ext)
	return Destination{Dir: dir, Name: name}, nil
}

func (p *Planner) sequenced(dir, stem, ext string) (Destination, error) {
	n, err := p.opts.Sequencer.Next(dir)
	if err != nil {
		return Destination{}, err
	}
	return Destination{Dir: dir, Name: fmt.Sprintf("%s_%05d.%s", stem, n, ext)}, nil
}

// Advance records a successful placement at dst so the next plan for
// the same directory takes the following sequence number.
func (p *Planner) Advance(dst Destination) {
	p.opts.Sequencer.Advance(dst.Dir)
}

// Invalidate discards the cached count for dst's directory after a
// failed placement.
func (p *Planner) Invalidate(dst Destination) {
	p.opts.Sequencer.Invalidate(dst.Dir)
}
