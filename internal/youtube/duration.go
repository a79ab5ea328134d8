package youtube

import (
	"regexp"
	"strconv"
)

// isoDuration matches the PT forms the Data API emits (PT4M13S, PT1H2M30S).
// Day/week designators do not occur in video durations.
var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 video duration to whole seconds.
// Malformed or empty input yields 0.
func ParseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours := atoi(m[1])
	minutes := atoi(m[2])
	seconds := atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
