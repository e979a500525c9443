package nflverse

import (
	"math"
	"strconv"
	"strings"
)

// parseValue converts a CSV cell into a JSON-friendly value: missing markers become nil,
// whole numbers int64, decimals float64, TRUE/FALSE bool, anything else stays a string.
// Identifiers with leading zeros ("00-0033873", "0012") are kept as strings.
func parseValue(raw string) any {
	v := strings.TrimSpace(raw)
	switch v {
	case "", "NA", "NaN", "nan", "NULL":
		return nil
	case "TRUE", "True", "true":
		return true
	case "FALSE", "False", "false":
		return false
	}

	if !looksNumeric(v) {
		return v
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return v
}

func looksNumeric(v string) bool {
	digits := strings.TrimLeft(v, "+-")
	if digits == "" {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == 'e', r == 'E', r == '-', r == '+':
		default:
			return false
		}
	}
	return true
}
