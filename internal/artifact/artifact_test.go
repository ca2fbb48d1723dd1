package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampNamer(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	namer := TimestampNamer(func() time.Time { return fixed })

	first, second := namer(), namer()

	assert.Regexp(t, regexp.MustCompile(`^vid_1700000000_[0-9a-f]{8}\.mp4$`), first)
	assert.NotEqual(t, first, second, "same-second names must differ")
}

func TestWorkspaceNew(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	ws, err := NewWorkspace(root, func() string { return "vid_1700000000.mp4" })
	require.NoError(t, err)

	a, err := ws.New()
	require.NoError(t, err)
	b, err := ws.New()
	require.NoError(t, err)

	assert.Equal(t, "vid_1700000000.mp4", a.Name)
	assert.Equal(t, filepath.Join(a.Dir, a.Name), a.Path)
	assert.Equal(t, root, filepath.Dir(a.Dir))
	assert.NotEqual(t, a.Dir, b.Dir, "identical names still get separate directories")
	assert.DirExists(t, a.Dir)

	_, err = a.Stat()
	assert.True(t, os.IsNotExist(err), "New must not create the file")
}

func TestArtifactRelease(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), nil)
	require.NoError(t, err)

	a, err := ws.New()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(a.Path, []byte{0x00, 0x01, 0x02}, 0o644))
	require.NoError(t, os.WriteFile(a.Path+".part", []byte("partial"), 0o644))

	f, size, err := a.Open()
	require.NoError(t, err)
	assert.EqualValues(t, 3, size)
	require.NoError(t, f.Close())

	require.NoError(t, a.Release())
	assert.NoDirExists(t, a.Dir)
	assert.NoFileExists(t, a.Path)

	assert.NoError(t, a.Release(), "second release is a no-op")
}

func TestReleaseDoesNotTouchOtherArtifacts(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), nil)
	require.NoError(t, err)

	a, err := ws.New()
	require.NoError(t, err)
	b, err := ws.New()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(a.Path, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b.Path, []byte("b"), 0o644))

	require.NoError(t, a.Release())

	assert.NoFileExists(t, a.Path)
	assert.FileExists(t, b.Path)
}

func TestWorkspaceSweep(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root, nil)
	require.NoError(t, err)

	stale, err := ws.New()
	require.NoError(t, err)
	fresh, err := ws.New()
	require.NoError(t, err)

	unrelated := filepath.Join(root, "keep-me")
	require.NoError(t, os.Mkdir(unrelated, 0o755))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale.Dir, old, old))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	removed, err := ws.Sweep(time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NoDirExists(t, stale.Dir)
	assert.DirExists(t, fresh.Dir)
	assert.DirExists(t, unrelated)
}

func TestCheckWritable(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, ws.CheckWritable())

	entries, err := os.ReadDir(ws.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")
}
