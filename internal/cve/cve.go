package cve

import "strings"

const prefix = "CVE-"

// IsValid reports whether candidate has the form CVE-<digits>-<digits>.
// It only checks syntax: no year range, no length bound.
func IsValid(candidate string) bool {
	if !strings.HasPrefix(candidate, prefix) {
		return false
	}
	parts := strings.Split(candidate, "-")
	if len(parts) != 3 {
		return false
	}
	return isDigits(parts[1]) && isDigits(parts[2])
}

// Normalize trims surrounding whitespace from user input.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Add validates text and appends it to ids. The list is owned by the caller;
// on rejection ids is returned unchanged.
func Add(ids []string, text string) ([]string, bool) {
	id := Normalize(text)
	if !IsValid(id) {
		return ids, false
	}
	return append(ids, id), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
