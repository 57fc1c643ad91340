package main

import (
	"fmt"
	"strings"
)

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 3 || len([]rune(value)) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-3]) + "..."
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
