package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatAddress truncates an address for display purposes
func FormatAddress(address string, prefixLen, suffixLen int) string {
	if len(address) <= prefixLen+suffixLen {
		return address
	}

	return address[:prefixLen] + "..." + address[len(address)-suffixLen:]
}

// FormatAddressWithName formats an address with an optional label
func FormatAddressWithName(address, name string) string {
	if name != "" {
		return fmt.Sprintf("%s (%s)", name, FormatAddress(address, 6, 4))
	}
	return FormatAddress(address, 10, 8)
}

// TruncateString truncates a string to a maximum length with ellipsis
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}

// FormatCount pluralises a noun for a count
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// FormatKeyHelp joins key bindings into a help line
func FormatKeyHelp(bindings [][2]string) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("[%s] %s", b[0], b[1]))
	}
	return strings.Join(parts, " ")
}

// FormatTimeAgo formats a time as "X ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", minutes)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
