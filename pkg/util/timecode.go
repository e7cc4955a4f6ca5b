package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimecode converts a media position to seconds. Accepted forms:
// plain seconds ("12.5"), "MM:SS" and "HH:MM:SS" with optional fractional
// seconds up to microsecond precision.
func ParseTimecode(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timecode")
	}

	if !strings.Contains(value, ":") {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		return seconds, nil
	}

	parts := strings.Split(value, ":")
	var hours, minutes, seconds float64
	var err error
	switch len(parts) {
	case 3:
		if hours, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		if minutes, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
	case 2:
		if minutes, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		if seconds, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
	default:
		return 0, fmt.Errorf("invalid timecode %q: expected HH:MM:SS or MM:SS", value)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// FormatTimecode renders seconds as "HH:MM:SS.ffffff" with microsecond
// resolution, the canonical representation for scene boundaries.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	micros := int64(seconds*1e6 + 0.5)
	h := micros / 3_600_000_000
	micros -= h * 3_600_000_000
	m := micros / 60_000_000
	micros -= m * 60_000_000
	s := micros / 1_000_000
	micros -= s * 1_000_000
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, micros)
}

// FormatSeconds renders seconds with millisecond precision for ffmpeg
// command-line arguments.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
