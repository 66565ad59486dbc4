package fdb

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFileKnownDigests(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/tree/empty": "",
		"/tree/abc":   "abc",
		"/tree/fox":   "The quick brown fox jumps over the lazy dog",
	})

	testCases := []struct {
		path     string
		expected string
	}{
		{"/tree/empty", "d41d8cd98f00b204e9800998ecf8427e"},
		{"/tree/abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"/tree/fox", "9e107d9d372bb6826bd81d3542a419d6"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			digest, err := HashFile(context.Background(), fsys, tc.path, nil)
			require.NoError(t, err)
			assert.Len(t, digest, HashSizeMD5)
			assert.Equal(t, tc.expected, hex.EncodeToString(digest))
		})
	}
}

func TestHashFileDeterministic(t *testing.T) {
	// larger than one buffer so the read loop runs more than once
	content := strings.Repeat("0123456789abcdef", HashBufferSize/8+3)
	fsys := newTree(t, map[string]string{"/tree/big": content})

	first, err := HashFile(context.Background(), fsys, "/tree/big", nil)
	require.NoError(t, err)
	second, err := HashFile(context.Background(), fsys, "/tree/big", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, HashBytes([]byte(content), nil), first)
}

func TestHashFileAlgorithms(t *testing.T) {
	fsys := newTree(t, map[string]string{"/tree/abc": "abc"})

	testCases := []struct {
		name     string
		expected string
	}{
		{"md5", "900150983cd24fb0d6963f7d28e17f72"},
		{"sha1", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"sha256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			alg, err := GetHashAlgorithm(tc.name)
			require.NoError(t, err)
			digest, err := HashFile(context.Background(), fsys, "/tree/abc", alg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, hex.EncodeToString(digest))
			assert.Len(t, digest, alg.Size)
		})
	}
}

func TestGetHashAlgorithm(t *testing.T) {
	_, err := GetHashAlgorithm("blake3")
	assert.Error(t, err)

	alg, err := GetHashAlgorithm("SHA512")
	require.NoError(t, err)
	assert.Equal(t, "sha512", alg.Name)
	assert.Equal(t, HashSizeSHA512, alg.Size)
}

func TestHashFileClosesOnEveryPath(t *testing.T) {
	fsys := newFaultFS(newTree(t, map[string]string{"/tree/a": "a"}))

	_, err := HashFile(context.Background(), fsys, "/tree/a", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, fsys.openFiles())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = HashFile(ctx, fsys, "/tree/a", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fsys.openFiles())
	assert.Equal(t, 2, fsys.opened)
}

func TestHashFileErrors(t *testing.T) {
	fsys := newFaultFS(newTree(t, map[string]string{"/tree/locked": "x"}))
	fsys.denied["/tree/locked"] = true

	_, err := HashFile(context.Background(), fsys, "/tree/locked", nil)
	require.Error(t, err)
	assert.Equal(t, KindPermission, classifyFileError("hash", "/tree/locked", err).Kind)

	_, err = HashFile(context.Background(), fsys, "/tree/missing", nil)
	require.Error(t, err)
	assert.Equal(t, KindFatalIO, classifyFileError("hash", "/tree/missing", err).Kind)
}
