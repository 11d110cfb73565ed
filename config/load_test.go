package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stupid-simple/mediaextract/config"
)

var goodConfig = `
{
	"jobs": [
		{
			"backup_dir": "backup1",
			"export_dir": "export1",
			"csv_output": "files1.csv",
			"enable": true,
			"cron": "0 3 * * *",
			"limit": 10
		},
		{
			"backup_dir": "backup2",
			"export_dir": "export2",
			"csv_output": "files2.csv",
			"media_extensions": [".jpg"],
			"enable": false,
			"cron": "@hourly",
			"dry_run": true
		}
	]
}
`

var badConfig = `
[]
`

func TestLoad_Good(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.json")
	require.NoError(t, os.WriteFile(testFile, []byte(goodConfig), 0600))

	cfg, err := config.LoadFromFile(testFile)
	require.NoError(t, err)
	require.Len(t, cfg.Jobs, 2)

	assert.Equal(t, "backup1", cfg.Jobs[0].BackupDir)
	assert.Equal(t, "export1", cfg.Jobs[0].ExportDir)
	assert.Equal(t, "files1.csv", cfg.Jobs[0].ManifestOutput)
	assert.True(t, cfg.Jobs[0].Enable)
	assert.Equal(t, "0 3 * * *", cfg.Jobs[0].Schedule)
	assert.Equal(t, 10, cfg.Jobs[0].Limit)

	assert.Equal(t, []string{".jpg"}, cfg.Jobs[1].Extensions())
	assert.False(t, cfg.Jobs[1].Enable)
	assert.True(t, cfg.Jobs[1].DryRun)
}

func TestLoad_Bad(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.json")
	require.NoError(t, os.WriteFile(testFile, []byte(badConfig), 0600))

	_, err := config.LoadFromFile(testFile)
	assert.Error(t, err)
}

func TestLoad_NoFile(t *testing.T) {
	_, err := config.LoadFromFile("unexisting")
	assert.Error(t, err)
}

func TestLoad_Unreadable(t *testing.T) {
	_, err := config.LoadFromFile(t.TempDir())
	assert.Error(t, err)
}
