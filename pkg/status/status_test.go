package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	logger := zerolog.Nop()
	return New(dir, &logger), dir
}

func TestManager_ReadWriteInPlace(t *testing.T) {
	mgr, dir := newTestManager(t)
	ctx := context.Background()

	path := filepath.Join(dir, "Main.kt")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0600))

	content, err := mgr.ReadFile(ctx, "Main.kt")
	require.NoError(t, err)
	assert.Equal(t, "before", string(content))

	require.NoError(t, mgr.WriteFileInPlace(ctx, "Main.kt", []byte("after")))

	content, err = mgr.ReadFile(ctx, "Main.kt")
	require.NoError(t, err)
	assert.Equal(t, "after", string(content))

	// In-place write keeps the file's permissions
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// No temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestManager_WriteFileInPlaceRequiresExisting(t *testing.T) {
	mgr, _ := newTestManager(t)

	err := mgr.WriteFileInPlace(context.Background(), "missing.kt", []byte("content"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat target file")
}

func TestManager_ReadFileMissing(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.ReadFile(context.Background(), "missing.kt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
}

func TestManager_FileExists(t *testing.T) {
	mgr, dir := newTestManager(t)
	ctx := context.Background()

	exists, err := mgr.FileExists(ctx, "Main.kt")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.kt"), []byte("x"), 0644))

	exists, err = mgr.FileExists(ctx, "Main.kt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestManager_TrackFile(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	mgr.TrackFile(ctx, "a.kt", FileInfo{Path: "a.kt", Status: StatusRewritten, Replacements: 2})
	mgr.TrackFile(ctx, "b.kt", FileInfo{Path: "b.kt", Status: StatusUnchanged})

	info, err := mgr.GetFileInfo(ctx, "a.kt")
	require.NoError(t, err)
	assert.Equal(t, StatusRewritten, info.Status)
	assert.Equal(t, 2, info.Replacements)

	_, err = mgr.GetFileInfo(ctx, "c.kt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not tracked")

	files, err := mgr.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestManager_Progress(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	mgr.StartOperation(ctx, 3)
	mgr.UpdateProgress(ctx, 1)
	mgr.UpdateProgress(ctx, 2)
	mgr.FinishOperation(ctx)

	assert.Equal(t, 3, mgr.total)
	assert.Equal(t, 2, mgr.processed)
}

func TestFileStatus_String(t *testing.T) {
	assert.Equal(t, "rewritten", StatusRewritten.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}
