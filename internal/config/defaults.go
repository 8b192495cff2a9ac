package config

const (
	defaultLedgerPath   = "~/.local/share/mediatidy/ledger.db"
	defaultLogDir       = "~/.local/share/mediatidy/logs"
	defaultRegistryPath = "~/.config/mediatidy/extensions.yaml"

	defaultFloorYear          = 2000
	defaultMismatchPreference = "exif"

	defaultDatedImagesDir   = "Photos_bydt"
	defaultDatedVideosDir   = "Photos_bydt"
	defaultUndatedImagesDir = "Photos_nodt"
	defaultUndatedVideosDir = "Videos_nodt"
	defaultOtherDir         = "Other_files"
	defaultQuarantineDir    = "Year_err"

	defaultProbeBinary = "ffprobe"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

func defaultEXIFKeys() []string {
	return []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}
}

func defaultMetaKeys() []string {
	return []string{"com.apple.quicktime.creationdate", "creation_time", "date"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LedgerPath:   defaultLedgerPath,
			LogDir:       defaultLogDir,
			RegistryPath: defaultRegistryPath,
		},
		Dates: Dates{
			FloorYear:          defaultFloorYear,
			MismatchPreference: defaultMismatchPreference,
			EXIFKeys:           defaultEXIFKeys(),
			MetaKeys:           defaultMetaKeys(),
		},
		Archive: Archive{
			DatedImagesDir:   defaultDatedImagesDir,
			DatedVideosDir:   defaultDatedVideosDir,
			UndatedImagesDir: defaultUndatedImagesDir,
			UndatedVideosDir: defaultUndatedVideosDir,
			OtherDir:         defaultOtherDir,
			QuarantineDir:    defaultQuarantineDir,
		},
		Probe: Probe{
			Binary: defaultProbeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
