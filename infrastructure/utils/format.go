package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration converts a YouTube contentDetails duration (PT1H2M3S) into whole seconds.
// Missing components count as zero; anything unparsable yields 0.
func ParseISODuration(iso string) int {
	match := isoDurationPattern.FindStringSubmatch(iso)
	if match == nil {
		return 0
	}
	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			continue
		}
		total += n * unit
	}
	return total
}

// ParseViewCount reads the provider's decimal view count string. Unparsable values are 0.
func ParseViewCount(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatViewCount renders 1234567 as "1.2M" and 12345 as "12.3K".
func FormatViewCount(raw string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || n < 0 {
		return "0"
	}
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	default:
		return strconv.FormatInt(int64(n), 10)
	}
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
