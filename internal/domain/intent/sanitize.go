package intent

import (
	"regexp"
	"strings"
	"time"
)

const (
	storageNameMin = 3
	storageNameMax = 24

	// shortNamePrefix replaces storage names too short to keep.
	shortNamePrefix = "stg"
	suffixLayout    = "150405"
)

var notStorageChar = regexp.MustCompile(`[^a-z0-9]`)

// StorageNamePattern is the Azure storage account naming rule.
var StorageNamePattern = regexp.MustCompile(`^[a-z0-9]{3,24}$`)

// TimeSuffix formats the time based suffix appended to synthesized names.
func TimeSuffix(now time.Time) string {
	return now.Format(suffixLayout)
}

// SanitizeStorageName lowercases name and strips everything but ASCII
// letters and digits. Names shorter than 3 are replaced by a synthesized
// one; longer than 24 are truncated.
func SanitizeStorageName(name string, now time.Time) string {
	name = notStorageChar.ReplaceAllString(strings.ToLower(name), "")
	if len(name) < storageNameMin {
		name = shortNamePrefix + TimeSuffix(now)
	}
	if len(name) > storageNameMax {
		name = name[:storageNameMax]
	}
	return name
}
