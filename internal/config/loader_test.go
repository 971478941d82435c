package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultFreqThreshold, cfg.FreqThreshold)
	assert.False(t, cfg.Quiet)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
output: out/db
freq_threshold: 50
csv_encoding: CP1252
quiet: true
folders:
  - path: ./data
    id: src
    name: Source
    include: ["*.csv"]
databases:
  - conn: sqlite:///company.db
    schema: main
    sample_size: 1000
datasets:
  - path: ./extra/ref.parquet
    folder: Reference
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "out/db", cfg.Output)
	assert.Equal(t, 50, cfg.FreqThreshold)
	assert.Equal(t, "CP1252", cfg.CSVEncoding)
	assert.True(t, cfg.Quiet)

	require.Len(t, cfg.Folders, 1)
	assert.Equal(t, "./data", cfg.Folders[0].Path)
	assert.Equal(t, "src", cfg.Folders[0].ID)
	assert.Equal(t, []string{"*.csv"}, cfg.Folders[0].Include)

	require.Len(t, cfg.Databases, 1)
	assert.Equal(t, "sqlite:///company.db", cfg.Databases[0].Conn)
	assert.Equal(t, 1000, cfg.Databases[0].SampleSize)

	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "Reference", cfg.Datasets[0].Folder)
}

func TestLoad_ExplicitZeroThresholdSurvives(t *testing.T) {
	path := writeConfig(t, "freq_threshold: 0\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.FreqThreshold)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "output: from-file\n")
	t.Setenv("DATANNUR_OUTPUT", "from-env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, "output: from-file\nfreq_threshold: 10\n")
	t.Setenv("DATANNUR_OUTPUT", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("out", "o", "", "")
	flags.Int("freq-threshold", 0, "")
	require.NoError(t, flags.Parse([]string{"--out", "from-flag", "--freq-threshold", "7"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Output)
	assert.Equal(t, 7, cfg.FreqThreshold)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "output: from-file\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("out", "o", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Output)
}
