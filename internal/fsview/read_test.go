package fsview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadSmartBuffersSmallFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	v, err := ReadSmart(path)
	require.NoError(t, err)
	defer v.Close()

	require.Equal(t, "hello world", v.String())
}

func TestReadSmartMapsLargeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "large.txt")

	var b strings.Builder
	line := strings.Repeat("x", 100) + "\n"
	for b.Len() <= MmapThreshold {
		b.WriteString(line)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	v, err := ReadSmart(path)
	require.NoError(t, err)
	defer v.Close()

	require.Equal(t, b.String(), v.String())
}

func TestReadSmartMissingFile(t *testing.T) {
	_, err := ReadSmart(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
