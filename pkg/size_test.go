package fdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHumanSize(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
		valid    bool
	}{
		{"0", 0, true},
		{"512", 512, true},
		{"4k", 4096, true},
		{"2M", 2 << 20, true},
		{"1.5GB", 3 << 29, true},
		{" 10b ", 10, true},
		{"", 0, false},
		{"K", 0, false},
		{"12X", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			size, err := ParseHumanSize(tc.input)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, size)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1023 B", FormatSize(1023))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "1.5 MB", FormatSize(3<<19))
}

func TestInventoryTotalSize(t *testing.T) {
	inv := sampleInventory("/ab", "01", "/abcd", "02")
	inv = append(inv, DegradedRecord("/x"))
	assert.Equal(t, int64(3+5), inv.TotalSize())
}
