// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

// MaxOptions is the number of single-letter labels available.
const MaxOptions = 26

// Label returns the display label for the option at index: "a" for 0 through
// "z" for 25. Indexes outside that range have no label.
func Label(index int) string {
	if index < 0 || index >= MaxOptions {
		return ""
	}
	return string(rune('a' + index))
}

// ParseLabel maps a single letter, in either case, to an option index.
func ParseLabel(label string) (int, bool) {
	if len(label) != 1 {
		return 0, false
	}
	c := label[0]
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	default:
		return 0, false
	}
}
