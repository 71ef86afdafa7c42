package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ";", cfg.Detector.Prefix)
	assert.Equal(t, 100, cfg.Detector.MaxTriggerLength)
	assert.False(t, cfg.Detector.CaseSensitive)
	assert.True(t, cfg.Snippets.Watch)
	assert.Equal(t, 48, cfg.CLI.MaxPreview)
}

func TestPrefixRune(t *testing.T) {
	testCases := []struct {
		prefix string
		want   rune
	}{
		{";", ';'},
		{"/", '/'},
		{"", ';'},
		{";;", ';'},
	}
	for _, tc := range testCases {
		dc := DetectorConfig{Prefix: tc.prefix}
		assert.Equal(t, tc.want, dc.PrefixRune(), "prefix %q", tc.prefix)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[detector]
prefix = "/"
max_trigger_length = 40
case_sensitive = true

[snippets]
file = "/tmp/snips.toml"
watch = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.Detector.Prefix)
	assert.Equal(t, 40, cfg.Detector.MaxTriggerLength)
	assert.True(t, cfg.Detector.CaseSensitive)
	assert.Equal(t, "/tmp/snips.toml", cfg.Snippets.File)
	assert.False(t, cfg.Snippets.Watch)
	// Untouched sections keep their defaults.
	assert.Equal(t, 48, cfg.CLI.MaxPreview)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[detector]
max_trigger_length = 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Detector.MaxTriggerLength)
	assert.Equal(t, ";", cfg.Detector.Prefix)
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.Detector.Prefix)
	assert.FileExists(t, path)

	// Second call reads the file it just wrote.
	again, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Detector, again.Detector)
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	prefix := "/"
	maxLen := 30
	caseSensitive := true
	require.NoError(t, cfg.Update(path, &prefix, &maxLen, &caseSensitive))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/", loaded.Detector.Prefix)
	assert.Equal(t, 30, loaded.Detector.MaxTriggerLength)
	assert.True(t, loaded.Detector.CaseSensitive)
}

func TestUpdateNilFieldsKeepValues(t *testing.T) {
	cfg := DefaultConfig()
	maxLen := 12
	require.NoError(t, cfg.Update("", nil, &maxLen, nil))
	assert.Equal(t, ";", cfg.Detector.Prefix)
	assert.Equal(t, 12, cfg.Detector.MaxTriggerLength)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
[detector]
prefix = "!"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, activePath, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, activePath)
	assert.Equal(t, "!", cfg.Detector.Prefix)
}
