package fdb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	zone := time.FixedZone("test", 2*3600)
	inv := Inventory{
		NewRecord("/tree/a.txt", time.Date(2023, 1, 2, 3, 4, 5, 6, zone), time.Date(2023, 1, 2, 3, 4, 5, 999999999, zone), 42, []byte{0xde, 0xad, 0xbe, 0xef}),
		DegradedRecord("/tree/locked"),
		NewRecord("/tree/with,comma \"quoted\".md", time.Unix(0, 0).UTC(), time.Unix(1700000000, 5).UTC(), 0, HashBytes(nil, nil)),
	}

	path := filepath.Join(t.TempDir(), "db.csv")
	require.NoError(t, WriteInventory(path, inv))

	loaded, err := ReadInventory(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(inv))
	for i := range inv {
		assert.Equal(t, MarshalRow(inv[i]), MarshalRow(loaded[i]))
		assert.Equal(t, inv[i].Degraded, loaded[i].Degraded)
		assert.True(t, inv[i].Modified.Equal(loaded[i].Modified))
	}

	// rewriting the loaded inventory reproduces the file byte for byte
	again := filepath.Join(t.TempDir(), "again.csv")
	require.NoError(t, WriteInventory(again, loaded))
	original, err := os.ReadFile(path)
	require.NoError(t, err)
	rewritten, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, original, rewritten)
}

func TestWriteInventoryFormat(t *testing.T) {
	ts := time.Date(2024, 5, 17, 10, 30, 0, 120000000, time.UTC)
	inv := Inventory{
		NewRecord("/t/a.txt", ts, ts, 3, []byte{0x90, 0x01}),
		DegradedRecord("/t/b"),
	}

	var out bytes.Buffer
	require.NoError(t, EncodeInventory(&out, inv))
	assert.Equal(t,
		"filename,extension,created,modified,size,hash\r\n"+
			"/t/a.txt,.txt,2024-05-17T10:30:00.120000000Z,2024-05-17T10:30:00.120000000Z,3,9001\r\n"+
			"/t/b,NA,NA,NA,NA,NA\r\n",
		out.String())
}

func TestCarriageReturnInPath(t *testing.T) {
	ts := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	inv := Inventory{
		NewRecord("/photos/Icon\r", ts, ts, 0, []byte{0x01}),
		NewRecord("/photos/two\nlines", ts, ts, 1, []byte{0x02}),
	}

	var out bytes.Buffer
	require.NoError(t, EncodeInventory(&out, inv))
	assert.Contains(t, out.String(), "\"/photos/Icon\r\",,")
	assert.True(t, strings.HasSuffix(out.String(), ",1,02\r\n"))

	loaded, err := DecodeInventory(&out)
	require.NoError(t, err)
	assert.Equal(t, []string{"/photos/Icon\r", "/photos/two\nlines"}, loaded.Paths())

	path := filepath.Join(t.TempDir(), "icons.csv")
	require.NoError(t, WriteInventory(path, inv))
	fromDisk, err := ReadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, inv.Paths(), fromDisk.Paths())
}

func TestWriteInventoryRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

	err := WriteInventory(path, Inventory{})
	require.Error(t, err)
	assert.True(t, IsUsageError(err))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(content))
}

func TestWriteInventoryManyRows(t *testing.T) {
	// more rows than one writev call accepts
	inv := make(Inventory, 0, 3000)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < cap(inv); i++ {
		inv = append(inv, NewRecord(fmt.Sprintf("/t/f%04d.dat", i), ts, ts, int64(i), HashBytes([]byte{byte(i)}, nil)))
	}

	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, WriteInventory(path, inv))

	var expected bytes.Buffer
	require.NoError(t, EncodeInventory(&expected, inv))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected.Bytes(), written)

	loaded, err := ReadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, inv.Paths(), loaded.Paths())
}

func TestReadInventoryMissing(t *testing.T) {
	_, err := ReadInventory(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}

func TestDecodeInventory(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		paths   []string
		wantErr string
	}{
		{
			name:  "header only",
			input: "filename,extension,created,modified,size,hash\r\n",
			paths: []string{},
		},
		{
			name:  "path header and legacy timestamps",
			input: "path,extension,created,modified,size,hash\n/a.txt,.txt,2020-01-02 03:04:05.123456,2020-01-02 03:04:05,5,abcd\n",
			paths: []string{"/a.txt"},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: "missing header",
		},
		{
			name:    "wrong header",
			input:   "name,ext,c,m,s,h\n",
			wantErr: "header column 1",
		},
		{
			name:    "wrong field count",
			input:   "filename,extension,created,modified,size,hash\n/a,.txt,NA\n",
			wantErr: "wrong number of fields",
		},
		{
			name:    "partial sentinel",
			input:   "filename,extension,created,modified,size,hash\n/a,NA,NA,NA,NA,abcd\n",
			wantErr: "line 2",
		},
		{
			name:    "bad size",
			input:   "filename,extension,created,modified,size,hash\n/a,,2020-01-02 03:04:05,2020-01-02 03:04:05,big,abcd\n",
			wantErr: "invalid size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := DecodeInventory(strings.NewReader(tc.input))
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.paths, inv.Paths())
		})
	}
}

func TestUnmarshalRowLegacyTimestamp(t *testing.T) {
	rec, err := UnmarshalRow([]string{"/a", "", "2020-01-02 03:04:05.5", "2020-01-02 03:04:05", "1", "ab"})
	require.NoError(t, err)
	assert.Equal(t, 500000000, rec.Created.Nanosecond())
	assert.Equal(t, time.Local, rec.Modified.Location())
}
