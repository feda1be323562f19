package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("WF_LOGGING_LEVEL", "error")
}

// A nil slice must not make cobra read the process arguments.
func TestExecuteNilArgs(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), nil, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, usage+"\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestExecuteMissingArgs(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{}, {"only-input.txt"}} {
		var stdout, stderr bytes.Buffer
		code := execute(context.Background(), args, &stdout, &stderr)
		assert.Equal(t, 0, code)
		assert.Equal(t, usage+"\n", stdout.String())
		assert.Empty(t, stderr.String())
	}
}

func TestExecuteMissingInput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "nope.txt")
	output := filepath.Join(dir, "out.txt")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{input, output}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Input file '"+input+"' not found.\n", stderr.String())
	assert.NoFileExists(t, output)
}

func TestExecuteCountsFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	output := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(input, []byte("This is a test. This test is simple."), 0o644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{input, output}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Processing complete. Output written to: "+output)

	sep := report.LineSeparator()
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "This,2"+sep+"is,2"+sep+"test,2"+sep+"a,1"+sep+"simple,1"+sep, string(data))
}

func TestExecuteDashPrefixedPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{input, "--out.txt"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(dir, "--out.txt"))
}

func TestExecuteWriteFailure(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{input, filepath.Join(dir, "no", "out.txt")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: ")
}

func TestExecuteBadConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("counter:\n  mode: sideways\n"), 0o644))
	t.Setenv(config.EnvConfigPath, cfgPath)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"in.txt", "out.txt"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "loading config")
}

func TestExecuteMetricsTextfile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("a b a"), 0o644))
	prom := filepath.Join(dir, "wordfreq.prom")
	t.Setenv("WF_METRICS_TEXTFILE", prom)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute(context.Background(), []string{input, filepath.Join(dir, "out.txt")}, &stdout, &stderr))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wordfreq_tokens_counted_total 3")
	assert.Contains(t, string(data), `wordfreq_runs_total{status="success"} 1`)
}

func TestExecuteMetricsPortBusy(t *testing.T) {
	isolate(t)
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	cfgYAML := fmt.Sprintf("metrics:\n  enabled: true\n  port: %d\n", ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	t.Setenv(config.EnvConfigPath, cfgPath)
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("a b a"), 0o644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{input, filepath.Join(dir, "out.txt")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(dir, "out.txt"))
}
