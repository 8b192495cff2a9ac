package tagreader

import (
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"strings"

	"mediatidy/internal/datestamp"
)

// DefaultMetaKeys are the priority slots for container metadata. The
// QuickTime creation date carries the camera's local time, so it
// outranks the generic creation_time most muxers stamp at write time.
var DefaultMetaKeys = []string{"com.apple.quicktime.creationdate", "creation_time", "date"}

// probeFormat is the subset of ffprobe's -show_format JSON we consume.
type probeFormat struct {
	Format struct {
		Tags map[string]string `json:"tags"`
	} `json:"format"`
}

// ProbeReader extracts container-level date tags by shelling out to
// ffprobe.
type ProbeReader struct {
	// Binary overrides the ffprobe executable name. Empty means "ffprobe".
	Binary string
}

// Extract inspects the container's format tags and returns the first
// requested key present. Tag names are matched case-insensitively
// because muxers disagree on casing.
func (p ProbeReader) Extract(ctx context.Context, path string, orderedTagKeys []string) datestamp.ExtractionResult {
	res := datestamp.ExtractionResult{Source: datestamp.SourceMeta, Status: datestamp.StatusUnreadable}

	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return res
	}

	var decoded probeFormat
	if err := json.Unmarshal(output, &decoded); err != nil {
		return res
	}

	if len(decoded.Format.Tags) == 0 {
		res.Status = datestamp.StatusNoTags
		return res
	}

	lowered := make(map[string]string, len(decoded.Format.Tags))
	for key, value := range decoded.Format.Tags {
		lowered[strings.ToLower(key)] = value
	}

	for _, key := range orderedTagKeys {
		value, ok := lowered[strings.ToLower(key)]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		res.Status = datestamp.StatusOK
		res.TagKey = key
		res.Raw = renderTagValue(value)
		return res
	}

	res.Status = datestamp.StatusNoDateField
	return res
}

var isoSeparator = regexp.MustCompile(`(\d)T(\d)`)

// renderTagValue converts ISO-8601 "date T time" values into the
// space-separated rendering the normalizer's shape match expects.
func renderTagValue(value string) string {
	return isoSeparator.ReplaceAllString(strings.TrimSpace(value), "$1 $2")
}
