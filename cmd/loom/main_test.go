package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loom.yaml"), []byte(content), 0o644))
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--dir", dir, "render", "counter")
	require.NoError(t, err)
	assert.Contains(t, out, "Clicked 0 times")
	assert.NotContains(t, out, "data-lid")

	out, err = run(t, "--dir", dir, "render", "todo", "--ids")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, `data-lid="`)
}

func TestRenderPageToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.html")

	_, err := run(t, "--dir", dir, "render", "todo", "--page", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"), html)
	assert.Contains(t, html, "<title>loom</title>")
	assert.Contains(t, html, "Walk the dog")
}

func TestRenderUnknownApp(t *testing.T) {
	_, err := run(t, "--dir", t.TempDir(), "render", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown app "nope"`)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Contains(t, e.Suggestion, "counter, todo")
	assert.Contains(t, e.Format(), "counter, todo")
}

func TestInvalidConfig(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 70000\n")
	_, err := run(t, "--dir", dir, "render")
	assert.True(t, errors.IsCode(err, "E122"), "err = %v", err)

	_, err = run(t, "--config", filepath.Join(dir, "missing.json"), "render")
	assert.True(t, errors.IsCode(err, "E121"), "err = %v", err)

	_, err = run(t, "--dir", t.TempDir(), "--log-level", "loud", "render")
	assert.True(t, errors.IsCode(err, "E122"), "err = %v", err)
}

func TestSnapshotFileStore(t *testing.T) {
	dir := writeConfig(t, "snapshot:\n  store: file\n  dir: "+filepath.Join(t.TempDir(), "snaps")+"\n")

	_, err := run(t, "--dir", dir, "snapshot", "capture", "counter", "--key", "counter")
	require.NoError(t, err)
	_, err = run(t, "--dir", dir, "snapshot", "capture", "todo")
	require.NoError(t, err)

	out, err := run(t, "--dir", dir, "snapshot", "list")
	require.NoError(t, err)
	assert.Equal(t, "counter\nlatest\n", out)

	out, err = run(t, "--dir", dir, "snapshot", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "Learn Go")

	out, err = run(t, "--dir", dir, "snapshot", "get", "counter", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "counter"`)
	assert.Contains(t, out, `"pass": 1`)

	_, err = run(t, "--dir", dir, "snapshot", "delete", "counter")
	require.NoError(t, err)
	_, err = run(t, "--dir", dir, "snapshot", "get", "counter")
	assert.True(t, errors.IsCode(err, "E151"), "err = %v", err)

	_, err = run(t, "--dir", dir, "snapshot", "capture", "--key", "../escape")
	assert.True(t, errors.IsCode(err, "E150"), "err = %v", err)
}

func TestSnapshotWithoutStore(t *testing.T) {
	_, err := run(t, "--dir", t.TempDir(), "snapshot", "list")
	assert.True(t, errors.IsCode(err, "E122"), "err = %v", err)
}
