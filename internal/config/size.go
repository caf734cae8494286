package config

import (
	"fmt"
	"strconv"
	"strings"
)

// sizeUnits maps size suffixes to byte multipliers.
var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

// ParseSize parses a human-readable size string like "1MB" or "512KB"
// into a byte count. A bare number is interpreted as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	for _, unit := range []string{"GB", "MB", "KB", "B"} {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, unit))
		if num == "" {
			return 0, fmt.Errorf("missing number in size string %q", s)
		}
		value, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size string %q: %w", s, err)
		}
		if value < 0 {
			return 0, fmt.Errorf("size cannot be negative: %q", s)
		}
		return int64(value * float64(sizeUnits[unit])), nil
	}

	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size string %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("size cannot be negative: %q", s)
	}
	return value, nil
}
