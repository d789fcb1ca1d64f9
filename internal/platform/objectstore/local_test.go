package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/common/errors"
)

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalObjectStore(dir, "http://localhost:8080/proofs/", 1024)
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), []byte("receipt"), "../../etc/my receipt.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/proofs/"))
	assert.True(t, strings.HasSuffix(url, "-my_receipt.png"))

	key := strings.TrimPrefix(url, "http://localhost:8080/proofs/")
	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestUploadRejects(t *testing.T) {
	s, err := NewLocalObjectStore(t.TempDir(), "/proofs", 4)
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), nil, "a.png")
	assert.True(t, errors.IsValidation(err))

	_, err = s.Upload(context.Background(), []byte("12345"), "a.png")
	assert.True(t, errors.IsValidation(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Upload(ctx, []byte("1"), "a.png")
	assert.True(t, errors.IsStorage(err))
}

func TestUploadStorageFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalObjectStore(dir, "/proofs", 0)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Upload(context.Background(), []byte("x"), "a.png")
	assert.True(t, errors.IsStorage(err))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeName("/etc/passwd"))
	assert.Equal(t, "a_b.jpg", SanitizeName(`C:\tmp\a b.jpg`))
	assert.Equal(t, "proof", SanitizeName(".."))
	assert.Equal(t, "proof", SanitizeName(""))
	assert.Equal(t, "htaccess", SanitizeName(".htaccess"))
}
