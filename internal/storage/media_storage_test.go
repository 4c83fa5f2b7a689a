package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Минимальные сигнатуры, которых достаточно для filetype.
var (
	pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	mp4Header = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0, 0, 0, 0, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
)

func newTestStorage(t *testing.T) *MediaStorage {
	t.Helper()
	s, err := NewMediaStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	return s
}

func TestMediaStorage_SaveImage(t *testing.T) {
	s := newTestStorage(t)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 100)...)

	url, err := s.Save(context.Background(), "user_1", MediaImage, 1024, bytes.NewReader(body))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/user_1/image_"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(strings.TrimPrefix(url, "/media/"))))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	require.NoError(t, s.Delete(context.Background(), url))
	require.NoError(t, s.Delete(context.Background(), url))
}

func TestMediaStorage_RejectsWrongKind(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save(context.Background(), "user_1", MediaVideo, 1024, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(context.Background(), "user_1", MediaImage, 1024, bytes.NewReader(mp4Header))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(context.Background(), "user_1", MediaImage, 1024, strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(context.Background(), "user_1", MediaImage, 1024, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestMediaStorage_EnforcesLimit(t *testing.T) {
	s := newTestStorage(t)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 64)...)

	_, err := s.Save(context.Background(), "user_1", MediaImage, 32, bytes.NewReader(body))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "user_1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMediaStorage_DeleteRejectsForeignPath(t *testing.T) {
	s := newTestStorage(t)
	assert.Error(t, s.Delete(context.Background(), "/etc/passwd"))
	assert.Error(t, s.Delete(context.Background(), "/media/../secret"))
}
