package toolrun

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_Lifecycle(t *testing.T) {
	w, err := NewWorkspace("toolrun-test")
	require.NoError(t, err)

	require.NoError(t, w.WriteFile("in.txt", []byte("hello")))
	data, err := w.ReadFile("in.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	dir := filepath.Dir(w.Path("in.txt"))
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "toolrun-test-"))

	require.NoError(t, w.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "workspace removed")
}

func TestWorkspace_ReadMissing(t *testing.T) {
	w, err := NewWorkspace("toolrun-test")
	require.NoError(t, err)
	defer w.Close()

	data, err := w.ReadFile("never-written")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRun(t *testing.T) {
	out, err := Run(context.Background(), "/bin/sh", "-c", "printf ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
}

func TestRun_Failure(t *testing.T) {
	_, err := Run(context.Background(), "/bin/sh", "-c", "echo broken chain >&2; exit 3")
	require.Error(t, err)

	var ee *ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "sh", ee.Command)
	assert.Equal(t, "broken chain", ee.Stderr)
	assert.Contains(t, ee.Error(), "exit status 3")
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "no-such-tool"))
	require.Error(t, err)

	var ee *ExitError
	assert.True(t, errors.As(err, &ee))
}
