package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alumi/internal/errors"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCollectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.al":         "x := 1\n",
		"a.al":         "y := 2\n",
		"notes.txt":    "not a source\n",
		"nested/c.al":  "noop\n",
		"nested/d.alu": "noop\n",
	})

	files, err := CollectFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.al"),
		filepath.Join(root, "b.al"),
		filepath.Join(root, "nested", "c.al"),
	}, files)
}

func TestCompileSource(t *testing.T) {
	u := CompileSource("ok.al", "main := fn(env Environment) -> ResultCode:\n   noop\n")
	require.NotNil(t, u.Document)
	assert.False(t, u.Failed())

	u = CompileSource("lex.al", "x := 1 ; 2\n")
	assert.Nil(t, u.Document)
	require.Len(t, u.Diagnostics, 1)
	assert.Equal(t, errors.ErrorUnexpectedCodepoint, u.Diagnostics[0].Code)

	u = CompileSource("syntax.al", "x := := 3\ny := 2\n")
	require.NotNil(t, u.Document)
	assert.True(t, u.Failed())
}

func TestProcessPathDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.al":       "x := 1\n",
		"bad.al":        "x := 1 ; 2\n",
		"deep/again.al": "if x:\n   noop\n",
	})

	var progress bytes.Buffer
	units, err := ProcessPath(context.Background(), zap.NewNop(), root, Options{Progress: &progress, Workers: 2})
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, filepath.Join(root, "bad.al"), units[0].Path)
	assert.True(t, units[0].Failed())
	assert.Equal(t, filepath.Join(root, "deep", "again.al"), units[1].Path)
	assert.False(t, units[1].Failed())
	assert.Equal(t, filepath.Join(root, "good.al"), units[2].Path)
	assert.False(t, units[2].Failed())
	assert.NotEmpty(t, progress.String())
}

func TestProcessPathMissing(t *testing.T) {
	units, err := ProcessPath(context.Background(), zap.NewNop(), filepath.Join(t.TempDir(), "missing.al"), Options{})
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Len(t, units[0].Diagnostics, 1)
	assert.Equal(t, errors.ErrorUnreadableSource, units[0].Diagnostics[0].Code)
}

func TestProcessPathsCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.al": "x := 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessPaths(ctx, zap.NewNop(), []string{root}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
