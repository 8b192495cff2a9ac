package config

import "strings"

// normalize expands paths and fills empty fields with defaults so a
// partially specified file behaves predictably.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaults.Paths.LedgerPath
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	if strings.TrimSpace(c.Paths.RegistryPath) == "" {
		c.Paths.RegistryPath = defaults.Paths.RegistryPath
	}

	for _, field := range []*string{&c.Paths.LedgerPath, &c.Paths.LogDir, &c.Paths.RegistryPath} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Dates.FloorYear == 0 {
		c.Dates.FloorYear = defaults.Dates.FloorYear
	}
	c.Dates.MismatchPreference = strings.ToLower(strings.TrimSpace(c.Dates.MismatchPreference))
	if c.Dates.MismatchPreference == "" {
		c.Dates.MismatchPreference = defaults.Dates.MismatchPreference
	}
	if len(c.Dates.EXIFKeys) == 0 {
		c.Dates.EXIFKeys = defaults.Dates.EXIFKeys
	}
	if len(c.Dates.MetaKeys) == 0 {
		c.Dates.MetaKeys = defaults.Dates.MetaKeys
	}

	trimDir := func(field *string, fallback string) {
		*field = strings.Trim(strings.TrimSpace(*field), "/")
		if *field == "" {
			*field = fallback
		}
	}
	trimDir(&c.Archive.DatedImagesDir, defaults.Archive.DatedImagesDir)
	trimDir(&c.Archive.DatedVideosDir, defaults.Archive.DatedVideosDir)
	trimDir(&c.Archive.UndatedImagesDir, defaults.Archive.UndatedImagesDir)
	trimDir(&c.Archive.UndatedVideosDir, defaults.Archive.UndatedVideosDir)
	trimDir(&c.Archive.OtherDir, defaults.Archive.OtherDir)
	trimDir(&c.Archive.QuarantineDir, defaults.Archive.QuarantineDir)

	if strings.TrimSpace(c.Probe.Binary) == "" {
		c.Probe.Binary = defaults.Probe.Binary
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
