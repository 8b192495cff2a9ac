package archive

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	fragmentNoise  = regexp.MustCompile(`[\x{4E00}-\x{9FA5}A-Za-z]`)
	underscoreRuns = regexp.MustCompile(`_{2,}`)
)

// Fragment reduces an original file stem to the part worth keeping in
// an undated archive name: CJK and Latin letters are stripped, spaces
// become underscores, runs of underscores collapse to one, and leading
// and trailing underscores are trimmed.
func Fragment(stem string) string {
	s := norm.NFC.String(stem)
	s = fragmentNoise.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
