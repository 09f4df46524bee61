package export

import "strings"

// Port names sort naturally: "Ethernet4" before "Ethernet10". Names are
// compared run by run, numeric runs by value and text runs case-insensitively.

// NaturalCompare compares two strings with numeric runs ordered by value.
// It returns -1, 0, or 1.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		ar, an := nextRun(a)
		br, bn := nextRun(b)

		var c int
		switch {
		case an && bn:
			c = compareNumeric(ar, br)
		default:
			c = strings.Compare(strings.ToLower(ar), strings.ToLower(br))
		}
		if c != 0 {
			return c
		}
		a, b = a[len(ar):], b[len(br):]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextRun returns the leading run of a - all digits or all non-digits -
// and whether it is numeric.
func nextRun(s string) (string, bool) {
	numeric := isDigit(s[0])
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != numeric {
			return s[:i], numeric
		}
	}
	return s, numeric
}

// compareNumeric compares two digit runs by value without overflow:
// strip leading zeros, then shorter is smaller, then lexicographic.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
