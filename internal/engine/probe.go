package engine

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/simonhull/audiometa"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
)

// ProbeFile reads the duration from the file's container metadata.
func ProbeFile(ctx context.Context, path string) (time.Duration, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read-only handle

	return file.Audio.Duration, nil
}

// resolve maps a source to a file on disk.
// Local names must stay inside dir; remote sources must be file:// URLs.
func resolve(dir string, src domain.AudioSource) (string, error) {
	switch src.Kind() {
	case domain.SourceLocal:
		name := src.FileName()
		if name == "" || !filepath.IsLocal(name) {
			return "", errors.Enginef("invalid track name %q", name)
		}
		return filepath.Join(dir, name), nil

	case domain.SourceRemote:
		u := src.URL()
		if u == nil {
			return "", errors.Engine("missing track url")
		}
		if u.Scheme != "file" {
			return "", errors.Enginef("unsupported track url scheme %q", u.Scheme)
		}
		return fileURLPath(u)

	default:
		return "", errors.Engine("empty audio source")
	}
}

func fileURLPath(u *url.URL) (string, error) {
	if u.Host != "" && u.Host != "localhost" {
		return "", errors.Enginef("unsupported file url host %q", u.Host)
	}
	if u.Path == "" {
		return "", errors.Engine("empty file url path")
	}
	return filepath.FromSlash(u.Path), nil
}
