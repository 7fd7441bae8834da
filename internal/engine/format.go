package engine

import "fmt"

// FormatElapsed renders elapsed seconds as a human summary. Minutes come
// from integer division, seconds are the remainder, and an all-zero duration
// renders as "0 minutes" rather than disappearing.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	remainder := seconds % 60
	switch {
	case minutes == 0 && remainder == 0:
		return "0 minutes"
	case minutes == 0:
		return fmt.Sprintf("%d %s", remainder, plural(remainder, "second"))
	case remainder == 0:
		return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
	default:
		return fmt.Sprintf("%d %s %d %s", minutes, plural(minutes, "minute"), remainder, plural(remainder, "second"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
