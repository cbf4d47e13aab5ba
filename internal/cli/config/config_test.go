package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultManifestPath, cfg.ManifestPath)
	assert.Equal(t, DefaultCatalogPath, cfg.CatalogPath)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FromFile(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, `
manifest: custom/manifest.json
catalog: custom/catalog.json
output_dir: looker/views
view_prefix: stg
workers: 8
tags:
  - looker
skip_explores: true
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "custom/manifest.json", cfg.ManifestPath)
	assert.Equal(t, "custom/catalog.json", cfg.CatalogPath)
	assert.Equal(t, "looker/views", cfg.OutputDir)
	assert.Equal(t, "stg", cfg.ViewPrefix)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"looker"}, cfg.Tags)
	assert.True(t, cfg.SkipExplores)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, "output_dir: from_file\n")
	t.Setenv("LOOKGEN_OUTPUT_DIR", "from_env")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.OutputDir)
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, "output_dir: from_file\n")
	t.Setenv("LOOKGEN_OUTPUT_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output-dir", "", "")
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--output-dir", "from_flag"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.OutputDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers, "unset flags do not override")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, "output_dir: [unclosed\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestFindConfigFile(t *testing.T) {
	assert.Equal(t, "explicit.yaml", findConfigFile("explicit.yaml"))

	t.Chdir(t.TempDir())
	assert.Empty(t, findConfigFile(""))

	require.NoError(t, os.WriteFile("lookgen.yml", []byte("workers: 1\n"), 0644))
	assert.Equal(t, "lookgen.yml", findConfigFile(""))

	require.NoError(t, os.WriteFile("lookgen.yaml", []byte("workers: 1\n"), 0644))
	assert.Equal(t, "lookgen.yaml", findConfigFile(""), "yaml takes priority over yml")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		ManifestPath: "m.json",
		CatalogPath:  "c.json",
		OutputDir:    "out",
		Workers:      4,
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing manifest", mutate: func(c *Config) { c.ManifestPath = "" }, errSubstr: "manifest"},
		{name: "missing catalog", mutate: func(c *Config) { c.CatalogPath = "" }, errSubstr: "catalog"},
		{name: "missing output dir", mutate: func(c *Config) { c.OutputDir = "" }, errSubstr: "output_dir"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, errSubstr: "workers"},
		{name: "zero workers ok", mutate: func(c *Config) { c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestConfig_ValidateInputs(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.json")
	catalog := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(manifest, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(catalog, []byte("{}"), 0644))

	cfg := Config{ManifestPath: manifest, CatalogPath: catalog}
	assert.NoError(t, cfg.ValidateInputs())

	cfg.ManifestPath = filepath.Join(dir, "missing.json")
	err := cfg.ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest does not exist")
	assert.Contains(t, err.Error(), "dbt docs generate")

	cfg.ManifestPath = manifest
	cfg.CatalogPath = filepath.Join(dir, "missing.json")
	err = cfg.ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog does not exist")
}

func TestGetLogger_FallsBackToDiscard(t *testing.T) {
	logger := GetLogger(t.Context())
	require.NotNil(t, logger)
}
