package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("meeting.mp3"))
	assert.True(t, IsAudioFile("/tmp/Meeting.WAV"))
	assert.True(t, IsAudioFile("call.m4a"))
	assert.False(t, IsAudioFile("notes.txt"))
	assert.False(t, IsAudioFile("meeting"))
}

func TestListAudioFilesSortsByModTime(t *testing.T) {
	dir := t.TempDir()

	newer := filepath.Join(dir, "newer.mp3")
	older := filepath.Join(dir, "older.wav")
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	infos, err := ListAudioFiles(dir)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "older.wav", infos[0].Name)
	assert.Equal(t, "newer.mp3", infos[1].Name)
}

func TestListAudioFilesMissingDir(t *testing.T) {
	_, err := ListAudioFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReadOutputFileTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("  hello world\n\n"), 0o644))

	got, err := ReadOutputFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestSha256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	got, err := Sha256File(path)
	require.NoError(t, err)
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	assert.NoError(t, EnsureDir(dir))
}
