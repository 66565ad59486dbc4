package fdb

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "fdb", "config")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	all := config.GetAllConfig()
	assert.Equal(t, "md5", all.Hash.Default)
	assert.Equal(t, "", all.Inventory.Ignore)
	assert.Equal(t, "warning", all.Log.Level)
	assert.Equal(t, "text", all.Log.Format)
	assert.Equal(t, 4, all.Performance.HashWorkers)
	assert.Equal(t, "human", all.Output.Format)
	require.NoError(t, config.Validate())

	// loading never creates the file
	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestConfigLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(configPath, []byte(`[filehash]
default = sha256

[inventory]
ignore = .DS_Store,Icon\r

[performance]
hash_workers = 8
`), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, config.Path())

	all := config.GetAllConfig()
	assert.Equal(t, "sha256", all.Hash.Default)
	assert.Equal(t, `.DS_Store,Icon\r`, all.Inventory.Ignore)
	assert.Equal(t, 8, all.Performance.HashWorkers)
	// missing sections fall back to defaults
	assert.Equal(t, "warning", all.Log.Level)
	assert.Equal(t, "human", all.Output.Format)

	ignore, err := ParseIgnoreList(all.Inventory.Ignore)
	require.NoError(t, err)
	assert.True(t, ignore.Contains("Icon\r"))
}

func TestConfigOverrides(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	err = config.ApplyOverrides([]string{
		"default:sha1",
		"ignore: padded ",
		"level:debug",
		"log_format:json",
		"hash_workers:2",
		"format:fdupes",
	})
	require.NoError(t, err)

	all := config.GetAllConfig()
	assert.Equal(t, "sha1", all.Hash.Default)
	assert.Equal(t, " padded ", all.Inventory.Ignore)
	assert.Equal(t, "debug", all.Log.Level)
	assert.Equal(t, "json", all.Log.Format)
	assert.Equal(t, 2, all.Performance.HashWorkers)
	assert.Equal(t, "fdupes", all.Output.Format)
	require.NoError(t, config.Validate())
}

func TestConfigOverrideErrors(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	err = config.ApplyOverrides([]string{"no-colon"})
	require.Error(t, err)
	assert.True(t, IsUsageError(err))

	err = config.ApplyOverrides([]string{"symlink:none"})
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		override string
		valid    bool
	}{
		{"default:sha512", true},
		{"default:crc32", false},
		{"level:critical", true},
		{"level:loud", false},
		{"log_format:logfmt", true},
		{"log_format:yaml", false},
		{"hash_workers:64", true},
		{"hash_workers:0", false},
		{"hash_workers:65", false},
		{"hash_workers:many", false},
		{"format:json", true},
		{"format:xml", false},
	}

	for _, tc := range testCases {
		t.Run(tc.override, func(t *testing.T) {
			config, err := LoadConfig("")
			require.NoError(t, err)
			require.NoError(t, config.ApplyOverrides([]string{tc.override}))

			err = config.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, IsUsageError(err))
			}
		})
	}
}

func TestConfigSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")
	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NoError(t, config.ApplyOverrides([]string{"hash_workers:6"}))
	require.NoError(t, config.Save())

	reloaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.GetPerformanceConfig().HashWorkers)

	var out bytes.Buffer
	_, err = reloaded.WriteTo(&out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[performance]")
	assert.Contains(t, out.String(), "hash_workers")

	unsaved, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, IsUsageError(unsaved.Save()))
}

func TestConfigLoadInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(configPath, []byte("[unterminated\n"), 0644))

	_, err := LoadConfig(configPath)
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}
