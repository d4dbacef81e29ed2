package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/cohortpulse/cohortpulse/schema"
)

// Color variables for console output, keyed by classification tier.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold)
	GoodColor      = color.New(color.FgCyan)
	AverageColor   = color.New(color.FgYellow)
	NeedsWorkColor = color.New(color.FgMagenta)
	AtRiskColor    = color.New(color.FgRed, color.Bold)
)

// GetColorLabel returns the classification with console coloring applied.
func GetColorLabel(classification string) string {
	switch classification {
	case schema.ClassExcellent:
		return ExcellentColor.Sprint(classification)
	case schema.ClassGood:
		return GoodColor.Sprint(classification)
	case schema.ClassAverage:
		return AverageColor.Sprint(classification)
	case schema.ClassNeedsImprovement:
		return NeedsWorkColor.Sprint(classification)
	default:
		return AtRiskColor.Sprint(classification)
	}
}

// FormatMergeTime renders an average merge time in hours as a human string:
// "N/A" for zero, minutes under an hour, hours under a day, days otherwise.
func FormatMergeTime(hours float64) string {
	switch {
	case hours == 0:
		return "N/A"
	case hours < 1:
		return fmt.Sprintf("%.0f min", hours*60)
	case hours < 24:
		return fmt.Sprintf("%.1f hrs", hours)
	default:
		return fmt.Sprintf("%.1f days", hours/24)
	}
}

// FormatPercent renders a 0-1 rate as a whole percent string.
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// TruncateComment caps a comment body at limit characters for display,
// appending an ellipsis suffix when truncated. The cut is rune-based so a
// multi-byte character is never split.
func TruncateComment(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}

// SelectOutputFile returns the appropriate file handle for output. An empty
// path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s\n", msg)
}

// SplitRepo splits an "owner/name" string. A missing slash yields the whole
// value as owner and an empty name, which downstream fetches report as a
// degraded result rather than a panic.
func SplitRepo(full string) (owner, name string) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// EqualsFold reports whether two usernames refer to the same account.
func EqualsFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// DayOf extracts the YYYY-MM-DD prefix of an RFC3339 timestamp.
func DayOf(timestamp string) string {
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}
