package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearWorkerEnv(t *testing.T) {
	t.Helper()
	vars := append([]string{"PORT", "HOST", "LOG_LEVEL", "LOG_FORMAT", "LLM_MODEL", "AWS_REGION"}, requiredVars...)
	for _, v := range vars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearWorkerEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "us-east-2", cfg.AWSRegion)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearWorkerEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 8080\n  host: 127.0.0.1\nlog:\n  level: warn\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	clearWorkerEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearWorkerEnv(t)
	t.Setenv("PORT", "99999")

	_, err := Load("")
	require.Error(t, err)
}

func TestMissing(t *testing.T) {
	clearWorkerEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.ElementsMatch(t, requiredVars, cfg.Missing())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET", "bucket")
	t.Setenv("WORKER_CALLBACK_URL", "https://example.com/cb")
	t.Setenv("WORKER_CALLBACK_SECRET", "s3cr3t")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Missing())
}
