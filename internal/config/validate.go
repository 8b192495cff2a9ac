package config

import (
	"errors"
	"fmt"
	"strings"
)

const tagSlots = 3

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDates(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LedgerPath == "" {
		return errors.New("paths.ledger_path must be set")
	}
	if c.Paths.RegistryPath == "" {
		return errors.New("paths.registry_path must be set")
	}
	return nil
}

func (c *Config) validateDates() error {
	if c.Dates.FloorYear < 1900 || c.Dates.FloorYear > 2050 {
		return fmt.Errorf("dates.floor_year %d outside supported range 1900-2050", c.Dates.FloorYear)
	}
	switch c.Dates.MismatchPreference {
	case "exif", "meta":
	default:
		return fmt.Errorf("dates.mismatch_preference must be %q or %q, got %q", "exif", "meta", c.Dates.MismatchPreference)
	}
	for name, keys := range map[string][]string{
		"dates.exif_keys": c.Dates.EXIFKeys,
		"dates.meta_keys": c.Dates.MetaKeys,
	} {
		if len(keys) != tagSlots {
			return fmt.Errorf("%s must list exactly %d priority slots, got %d", name, tagSlots, len(keys))
		}
		for _, key := range keys {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("%s contains an empty slot", name)
			}
		}
	}
	return nil
}

func (c *Config) validateArchive() error {
	dirs := map[string]string{
		"archive.dated_images_dir":   c.Archive.DatedImagesDir,
		"archive.dated_videos_dir":   c.Archive.DatedVideosDir,
		"archive.undated_images_dir": c.Archive.UndatedImagesDir,
		"archive.undated_videos_dir": c.Archive.UndatedVideosDir,
		"archive.other_dir":          c.Archive.OtherDir,
		"archive.quarantine_dir":     c.Archive.QuarantineDir,
	}
	for name, dir := range dirs {
		if dir == "" {
			return fmt.Errorf("%s must be set", name)
		}
		if strings.Contains(dir, "..") {
			return fmt.Errorf("%s must stay inside the output directory", name)
		}
	}
	// The quarantine tree holds files excluded from normal routing and
	// must not be shared with any category tree.
	for name, dir := range dirs {
		if name == "archive.quarantine_dir" {
			continue
		}
		if dir == c.Archive.QuarantineDir {
			return fmt.Errorf("archive.quarantine_dir collides with %s", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
