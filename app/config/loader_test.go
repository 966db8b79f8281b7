package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "phi3:mini", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 220, cfg.LLM.NumPredict)
	assert.Equal(t, 300*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Resolver.MaxRetries)

	assert.Equal(t, "ai-rg", cfg.Defaults.RGName)
	assert.Equal(t, "Central India", cfg.Defaults.Location)
	assert.Equal(t, "ai-vm", cfg.Defaults.VMName)
	assert.Equal(t, "Standard_B1s", cfg.Defaults.VMSize)
	assert.Equal(t, "aistorage", cfg.Defaults.StoragePrefix)

	assert.Equal(t, dir, cfg.Paths.Repo)
	assert.Equal(t, filepath.Join(dir, "env"), cfg.Paths.EnvDir)
	assert.Equal(t, filepath.Join(dir, "env", "main.tf"), cfg.TFPath())
	assert.Equal(t, filepath.Join(dir, "templates", "vm.tf.tpl"), cfg.Paths.Templates["create_vm"])
	assert.Equal(t, filepath.Join(dir, "templates", "storage.tf.tpl"), cfg.Paths.Templates["create_storage"])

	assert.Equal(t, []string{".gitignore", "env/main.tf", "templates"}, cfg.Publisher.Paths)
	assert.Equal(t, "origin", cfg.Publisher.Remote)
	assert.Equal(t, "main", cfg.Publisher.Branch)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AIINFRA_LLM_MODEL", "llama3:8b")
	t.Setenv("AIINFRA_LLM_TIMEOUT", "90s")
	t.Setenv("AIINFRA_RESOLVER_MAX_RETRIES", "5")
	t.Setenv("AIINFRA_DEFAULTS_LOCATION", "West Europe")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "llama3:8b", cfg.LLM.Model)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Resolver.MaxRetries)
	assert.Equal(t, "West Europe", cfg.Defaults.Location)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
llm:
  model: qwen2.5:3b
publisher:
  branch: infra
paths:
  env_dir: /srv/infra/env
log:
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aiinfra.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5:3b", cfg.LLM.Model)
	assert.Equal(t, "infra", cfg.Publisher.Branch)
	assert.Equal(t, "/srv/infra/env", cfg.Paths.EnvDir)
	assert.Equal(t, []string{".gitignore", "templates"}, cfg.Publisher.Paths)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ArtifactPathIsPublished(t *testing.T) {
	t.Setenv("AIINFRA_PATHS_TF_FILE", "infra.tf")
	t.Setenv("AIINFRA_PATHS_ENV_DIR", "stacks")
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "stacks", "infra.tf"), cfg.TFPath())
	rel, ok := cfg.ArtifactRelPath()
	require.True(t, ok)
	assert.Equal(t, "stacks/infra.tf", rel)
	assert.Equal(t, []string{".gitignore", "stacks/infra.tf", "templates"}, cfg.Publisher.Paths)
}

func TestLoad_ArtifactAppendedToCustomAllowList(t *testing.T) {
	dir := t.TempDir()
	yaml := `
paths:
  tf_file: vm.tf
publisher:
  paths: [README.md, templates]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aiinfra.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "templates", "env/vm.tf"}, cfg.Publisher.Paths)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AIINFRA_PUBLISHER_REMOTE=upstream\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("AIINFRA_PUBLISHER_REMOTE") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "upstream", cfg.Publisher.Remote)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("AIINFRA_RESOLVER_MAX_RETRIES", "0")
	t.Setenv("AIINFRA_LOG_FORMAT", "xml")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver.max_retries")
	assert.Contains(t, err.Error(), "log.format")
}
