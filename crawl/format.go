package crawl

import (
	"fmt"
	"time"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatRate formats throughput in pages per minute.
func FormatRate(completed int, elapsed time.Duration) string {
	if elapsed <= 0 || completed == 0 {
		return "0.0 pages/min"
	}
	return fmt.Sprintf("%.1f pages/min", float64(completed)/elapsed.Minutes())
}

// FormatAverage formats the mean time spent per item.
func FormatAverage(total int, elapsed time.Duration) string {
	if total <= 0 {
		return "0.00s"
	}
	return fmt.Sprintf("%.2fs", (elapsed / time.Duration(total)).Seconds())
}
