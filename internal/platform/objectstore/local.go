package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"raffle-sales-backend/internal/common/errors"
)

// LocalObjectStore keeps payment proofs on the local filesystem and serves
// them under a public base URL.
type LocalObjectStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalObjectStore(dir, publicBaseURL string, maxBytes int64) (*LocalObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalObjectStore{
		dir:      dir,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Upload stores data under a unique key derived from name and returns its
// public URL.
func (s *LocalObjectStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", errors.NewValidationError("proof", "file is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", errors.NewValidationError("proof", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", errors.NewStorageError("upload proof", err)
	}

	key := uuid.New().String() + "-" + SanitizeName(name)
	path := filepath.Join(s.dir, key)

	// Write to a temp file first so a crash never leaves a truncated proof
	// behind a URL.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", errors.NewStorageError("upload proof", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.NewStorageError("upload proof", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewStorageError("upload proof", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.NewStorageError("upload proof", err)
	}

	return s.baseURL + "/" + key, nil
}

// SanitizeName reduces a client supplied file name to a safe base name.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "proof"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}
