package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfigMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadProjectConfig(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfigParsesFields(t *testing.T) {
	dir := t.TempDir()
	contents := "root: ./vendor\nplatform: linux\ndefines:\n  - DEBUG\n  - FEATURE_X\n"
	require.NoError(t, os.WriteFile(dir+"/rill.yaml", []byte(contents), 0o644))

	cfg, err := loadProjectConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "./vendor", cfg.Root)
	assert.Equal(t, "linux", cfg.Platform)
	assert.Equal(t, []string{"DEBUG", "FEATURE_X"}, cfg.Defines)
}

func TestLoadProjectConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/rill.yaml", []byte("root: [unterminated"), 0o644))

	_, err := loadProjectConfig(dir)
	assert.Error(t, err)
}
