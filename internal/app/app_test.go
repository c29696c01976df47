package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-risk-mcp-server/internal/domain"
)

func writeConfig(t *testing.T, artifactsDir, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf("artifacts:\n  dir: %q\nlogging:\n  output: stderr\n  level: warn\n%s", artifactsDir, extra)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testdataDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "artifacts", "testdata"))
	require.NoError(t, err)
	return dir
}

func TestBootstrap_Ready(t *testing.T) {
	a, err := Bootstrap(writeConfig(t, testdataDir(t), ""))
	require.NoError(t, err)
	defer a.Close()

	status := a.Predictor.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 22, status.FeatureCount)
	assert.Equal(t, os.Stderr, a.Logger.Out)
}

func TestBootstrap_MissingArtifactsIsNotFatal(t *testing.T) {
	a, err := Bootstrap(writeConfig(t, t.TempDir(), ""))
	require.NoError(t, err)
	defer a.Close()

	status := a.Predictor.Status()
	assert.False(t, status.Ready)
	require.NotNil(t, status.Diagnostic)
	assert.Equal(t, domain.ErrArtifactMissing, status.Diagnostic.Code)
}

func TestBootstrap_DefaultArtifactsDirStartsDisabled(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HEART_RISK_LOGGING_OUTPUT", "stderr")

	a, err := Bootstrap("")
	require.NoError(t, err)
	defer a.Close()

	status := a.Predictor.Status()
	assert.False(t, status.Ready)
	assert.Equal(t, filepath.Join("saved_models", "logistic_regression_model.json"), status.ModelPath)
	require.NotNil(t, status.Diagnostic)
	assert.Equal(t, domain.ErrArtifactMissing, status.Diagnostic.Code)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	_, err := Bootstrap(writeConfig(t, testdataDir(t), "features:\n  unknown_category_policy: loose\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	_, err = Bootstrap(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBootstrap_StderrLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf("artifacts:\n  dir: %q\nlogging:\n  output: stdout\n", testdataDir(t))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	a, err := Bootstrap(path, WithStderrLogs())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, os.Stderr, a.Logger.Out)
}
