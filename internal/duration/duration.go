// Package duration parses the free-form cook/prep time text stored alongside
// recipes. Strict ISO-8601 parsing is tried first; lenient fallbacks accept
// clock notation ("1:30"), unit suffixes ("1h30m") and bare minutes ("90").
package duration

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipehub/internal/apperrors"
)

var (
	isoPattern   = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)
	unitPattern  = regexp.MustCompile(`(?i)^\s*(?:(\d+)\s*h(?:ours?)?)?\s*(?:(\d+)\s*m(?:in(?:utes?)?)?)?\s*(?:(\d+)\s*s(?:ec(?:onds?)?)?)?\s*$`)
	barePattern  = regexp.MustCompile(`^\d+$`)
)

// Parse converts duration text into a time.Duration. ISO-8601 is tried
// first, then the lenient fallbacks. Validation of new input must go through
// Parse so that bad text is rejected; only re-reads of stored values may use
// ParseOrZero.
func Parse(text string) (time.Duration, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &apperrors.FormatError{Input: text}
	}

	if d, ok := parseISO(s); ok {
		return d, nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if m[3] != "" {
			third, _ := strconv.Atoi(m[3])
			return time.Duration(first)*time.Hour +
				time.Duration(second)*time.Minute +
				time.Duration(third)*time.Second, nil
		}
		// Two fields: H:MM when the first looks like an hour, MM:SS otherwise.
		if first <= 23 {
			return time.Duration(first)*time.Hour + time.Duration(second)*time.Minute, nil
		}
		return time.Duration(first)*time.Minute + time.Duration(second)*time.Second, nil
	}

	if m := unitPattern.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "" || m[3] != "") {
		return time.Duration(atoi(m[1]))*time.Hour +
			time.Duration(atoi(m[2]))*time.Minute +
			time.Duration(atoi(m[3]))*time.Second, nil
	}

	if barePattern.MatchString(s) {
		mins, err := strconv.Atoi(s)
		if err != nil {
			return 0, &apperrors.FormatError{Input: text}
		}
		return time.Duration(mins) * time.Minute, nil
	}

	return 0, &apperrors.FormatError{Input: text}
}

func parseISO(s string) (time.Duration, bool) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		// "P" or "PT" with no components is not a duration.
		return 0, false
	}
	return time.Duration(atoi(m[1]))*24*time.Hour +
		time.Duration(atoi(m[2]))*time.Hour +
		time.Duration(atoi(m[3]))*time.Minute +
		time.Duration(atoi(m[4]))*time.Second, true
}

// atoi treats an empty (unmatched) capture group as zero.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// ParseOrZero never fails: corrupt or legacy stored text is logged and
// treated as zero so that it cannot block unrelated updates.
func ParseOrZero(text string, logger *zap.Logger) time.Duration {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	d, err := Parse(text)
	if err != nil {
		if logger != nil {
			logger.Warn("Unparseable stored duration, treating as zero",
				zap.String("text", text))
		}
		return 0
	}
	return d
}

// Format renders a duration in canonical ISO-8601 form, e.g. "PT1H30M".
// The zero duration renders as "PT0S".
func Format(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	total := int64(d / time.Second)
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		b.WriteString(strconv.FormatInt(hours, 10))
		b.WriteString("H")
	}
	if mins > 0 {
		b.WriteString(strconv.FormatInt(mins, 10))
		b.WriteString("M")
	}
	if secs > 0 || (hours == 0 && mins == 0) {
		b.WriteString(strconv.FormatInt(secs, 10))
		b.WriteString("S")
	}
	return b.String()
}
