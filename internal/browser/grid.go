package browser

import (
	"errors"
	"strconv"
	"strings"
)

const (
	// DefaultGridSize is used for rows and cols when a value is missing or
	// not a number.
	DefaultGridSize = 2
	// MaxGridSize bounds rows and cols.
	MaxGridSize = 8
)

// ParseGrid reads the rows and cols query parameters. Missing or
// non-numeric values fall back to DefaultGridSize; numbers are clamped to
// 1..MaxGridSize.
func ParseGrid(rows, cols string) (int, int) {
	return parseDimension(rows), parseDimension(cols)
}

func parseDimension(v string) int {
	digits := leadingDigits(strings.TrimSpace(v))
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		// Out of int range but still a number: clamp like any other.
		if strings.HasPrefix(digits, "-") {
			return 1
		}
		return MaxGridSize
	}
	if err != nil {
		return DefaultGridSize
	}
	switch {
	case n < 1:
		return 1
	case n > MaxGridSize:
		return MaxGridSize
	default:
		return n
	}
}

// leadingDigits keeps an optional sign and the digits that follow it, so
// "3x" reads as 3 the way a browser's parseInt does.
func leadingDigits(v string) string {
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	return v[:end]
}
