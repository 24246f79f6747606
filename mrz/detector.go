// Package mrz detects and parses the two-line TD3 machine-readable zone
// printed on passports, as recovered from OCR text.
package mrz

import (
	"regexp"
	"strings"
)

// LineLength is the fixed width of a TD3 MRZ line.
const LineLength = 44

var td3Line = regexp.MustCompile(`^[A-Z0-9<]{44}$`)

// Lines holds one candidate MRZ block: exactly two 44-character lines.
// It is produced by Detect and consumed immediately by Parse.
type Lines struct {
	Line1 string
	Line2 string
}

// Detect scans raw OCR text for the first adjacent pair of TD3 lines.
// Lines are uppercased and trimmed before matching; anything shorter than 44
// characters is discarded up front. The first line of a pair must carry the
// P or I document-type discriminator.
//
// The second return value is false when no MRZ block exists. That is the
// common case for non-passport uploads and is not an error.
func Detect(text string) (Lines, bool) {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToUpper(strings.TrimSpace(line))
		if len(line) < LineLength {
			continue
		}
		candidates = append(candidates, line)
	}

	for i := 0; i+1 < len(candidates); i++ {
		first, second := candidates[i], candidates[i+1]
		if first[0] != 'P' && first[0] != 'I' {
			continue
		}
		if !td3Line.MatchString(first) || !td3Line.MatchString(second) {
			continue
		}
		return Lines{Line1: first, Line2: second}, true
	}
	return Lines{}, false
}
