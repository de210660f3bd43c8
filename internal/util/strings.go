// Package util holds small string helpers shared by the CLI and doctor output.
package util

import "strings"

// JoinOrNone joins items with ", " or returns "(none)" for an empty list, so
// an empty port or label list still prints something.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins items with ", " or returns def for an empty list.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
