// Package timecode implements the HH:MM:SS,mmm timestamp format used by
// SRT subtitle files and whisper transcript output.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when a string matches neither HH:MM:SS,mmm
// nor HH:MM:SS.
var ErrInvalidFormat = errors.New("timecode: invalid format, want HH:MM:SS or HH:MM:SS,mmm")

var (
	fullPattern  = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2},\d{3}$`)
	shortPattern = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}$`)
)

// TimeCode is an immutable timestamp with millisecond resolution. The zero
// value is 00:00:00,000.
type TimeCode struct {
	code string
}

// Zero is the 00:00:00,000 timestamp.
var Zero = TimeCode{}

// Parse accepts the canonical HH:MM:SS,mmm form unchanged, or HH:MM:SS with
// milliseconds taken as zero. Hours may exceed two digits.
func Parse(s string) (TimeCode, error) {
	switch {
	case fullPattern.MatchString(s):
		return TimeCode{code: s}, nil
	case shortPattern.MatchString(s):
		return TimeCode{code: s + ",000"}, nil
	default:
		return TimeCode{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// FromSeconds builds a timecode from a seconds value. The fractional part is
// rounded half away from zero to the nearest millisecond; negative input is
// clamped to zero.
func FromSeconds(seconds float64) TimeCode {
	if seconds <= 0 {
		return Zero
	}
	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int(math.Round((seconds - float64(whole)) * 1000))
	if millis >= 1000 {
		millis -= 1000
		secs++
		if secs == 60 {
			secs = 0
			minutes++
			if minutes == 60 {
				minutes = 0
				hours++
			}
		}
	}
	return TimeCode{code: fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)}
}

// String returns the canonical HH:MM:SS,mmm form.
func (tc TimeCode) String() string {
	if tc.code == "" {
		return "00:00:00,000"
	}
	return tc.code
}

// WithoutMillis returns the HH:MM:SS form, for tools that reject sub-second
// precision (ffmpeg -ss/-to during codec-copy trims).
func (tc TimeCode) WithoutMillis() string {
	prefix, _, _ := strings.Cut(tc.String(), ",")
	return prefix
}

// Seconds converts the timecode to a total seconds value.
func (tc TimeCode) Seconds() float64 {
	var hours, minutes, secs, millis int
	parts := strings.SplitN(tc.String(), ":", 3)
	hours, _ = strconv.Atoi(parts[0])
	minutes, _ = strconv.Atoi(parts[1])
	rest, ms, _ := strings.Cut(parts[2], ",")
	secs, _ = strconv.Atoi(rest)
	millis, _ = strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(secs) + float64(millis)/1000
}

// IsZero reports whether the timecode is 00:00:00,000.
func (tc TimeCode) IsZero() bool {
	return tc.code == "" || tc.code == "00:00:00,000"
}

// Add returns the timecode at the sum of both timestamps.
func (tc TimeCode) Add(other TimeCode) TimeCode {
	return FromSeconds(tc.Seconds() + other.Seconds())
}
