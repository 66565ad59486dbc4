package fdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHumanSize parses byte counts such as "512", "4k", "2M" or "1.5GB".
// Suffixes are binary multiples; zero is allowed.
func ParseHumanSize(sizeStr string) (int64, error) {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	split := strings.IndexFunc(sizeStr, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	numPart, suffix := sizeStr, ""
	if split >= 0 {
		numPart, suffix = sizeStr[:split], sizeStr[split:]
	}
	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	var multiplier float64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1 << 10
	case "M", "MB":
		multiplier = 1 << 20
	case "G", "GB":
		multiplier = 1 << 30
	case "T", "TB":
		multiplier = 1 << 40
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := num * multiplier
	if result > math.MaxInt64 {
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}
	return int64(result), nil
}

// FormatSize formats a byte count as a human-readable string
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// TotalSize sums the sizes of the complete records of inv
func (inv Inventory) TotalSize() int64 {
	var total int64
	for _, r := range inv {
		if !r.Degraded {
			total += r.Size
		}
	}
	return total
}
