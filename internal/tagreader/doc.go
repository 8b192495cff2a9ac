// Package tagreader provides the two concrete date-tag sources: EXIF
// tags decoded from image files and container-level metadata read via
// an ffprobe subprocess. Both implement datestamp.Extractor and report
// the three-way absence distinction (unreadable file, no tag set,
// no requested key) the resolver logs for operator diagnosis.
package tagreader
