package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/go-login-portal/internal/logger"
)

// localAvatarStorage keeps photos as files in one directory and serves them
// under [AvatarURLPrefix].
type localAvatarStorage struct {
	dir    string
	logger *logger.Logger
}

// NewLocalAvatarStorage creates dir when missing.
func NewLocalAvatarStorage(dir string, logger *logger.Logger) (AvatarStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("error creating avatar directory: %w", err)
	}

	logger.Debug().Str("dir", dir).Msg("creating local avatar storage")
	return &localAvatarStorage{dir: dir, logger: logger}, nil
}

// Save writes to a temporary file first so a failed upload never leaves a
// partial photo behind.
func (s *localAvatarStorage) Save(ctx context.Context, name, _ string, r io.Reader, size int64) error {
	log := logger.FromContext(ctx)

	if !validAvatarName(name) {
		return ErrInvalidAvatarName
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		log.Err(err).Str("func", "*localAvatarStorage.Save").Msg("error creating temporary file")
		return fmt.Errorf("error saving avatar: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = io.Copy(tmp, io.LimitReader(r, size)); err != nil {
		tmp.Close()
		log.Err(err).Str("func", "*localAvatarStorage.Save").Msg("error writing avatar")
		return fmt.Errorf("error saving avatar: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error saving avatar: %w", err)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		log.Err(err).Str("func", "*localAvatarStorage.Save").Msg("error moving avatar into place")
		return fmt.Errorf("error saving avatar: %w", err)
	}

	return nil
}

func (s *localAvatarStorage) Delete(ctx context.Context, name string) error {
	if !validAvatarName(name) {
		return ErrInvalidAvatarName
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		logger.FromContext(ctx).Err(err).Str("func", "*localAvatarStorage.Delete").Msg("error removing avatar")
		return fmt.Errorf("error removing avatar: %w", err)
	}

	return nil
}

func (s *localAvatarStorage) URL(_ context.Context, name string) (string, error) {
	if !validAvatarName(name) {
		return "", ErrInvalidAvatarName
	}
	return AvatarURLPrefix + name, nil
}

// FileHandler serves stored photos. Directory listings are not exposed.
func (s *localAvatarStorage) FileHandler() http.Handler {
	files := http.StripPrefix(AvatarURLPrefix, http.FileServer(http.Dir(s.dir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, AvatarURLPrefix)
		if !validAvatarName(name) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func validAvatarName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
