package file

import (
	"context"
	"errors"
	"fmt"
	"imagefilter/internal/core/domain"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Downloader fetches remote files with an upper bound on the body size.
type Downloader struct {
	client   *http.Client
	maxBytes int64
}

func NewDownloader(client *http.Client, maxBytes int64) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{client: client, maxBytes: maxBytes}
}

// DownloadFile returns the byte content of a file on a provided URL.
func (d *Downloader) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	res, err := d.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	if d.maxBytes > 0 && res.ContentLength > d.maxBytes {
		err = fmt.Errorf("%w: content length %d", domain.ErrImageTooLarge, res.ContentLength)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	body := io.Reader(res.Body)
	if d.maxBytes > 0 {
		body = io.LimitReader(res.Body, d.maxBytes+1)
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	if d.maxBytes > 0 && int64(len(buf)) > d.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", domain.ErrImageTooLarge, d.maxBytes)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	return buf, nil
}

// TempDir resolves the directory artifacts are written to. An empty dir means os.TempDir().
func TempDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	return dir
}

// CreateTempFile creates a new, exclusively owned file named <prefix>.<uuid><extension> in dir.
// The caller is responsible for closing and eventually removing it.
func CreateTempFile(dir, prefix, extension string) (*os.File, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	name := id.String() + extension
	if prefix != "" {
		name = prefix + "." + name
	}

	path := filepath.Join(TempDir(dir), name)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		err = fmt.Errorf("error creating temp file %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return f, nil
}

// SaveTempFile saves bytes to a temp location and returns the path.
func SaveTempFile(dir string, data []byte, extension string) (string, error) {
	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("creating temp file")

	f, err := CreateTempFile(dir, "", extension)
	if err != nil {
		return "", err
	}

	defer f.Close()

	if _, err := f.Write(data); err != nil {
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		RemoveTempFile(f.Name())
		return "", err
	}

	log.Debug().Str("path", f.Name()).Msg("created file")

	return f.Name(), nil
}

// RemoveTempFile removes a specified temporary file at the given path and logs success or failure.
// It reports whether the removal failed for a reason other than the file already being gone.
func RemoveTempFile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("temp file already gone")
		return nil
	}
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return err
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
	return nil
}

// Remover is the best-effort cleanup collaborator.
type Remover struct {
	onResult func(err error)
}

// NewRemover returns a Remover. onResult, if set, is called once per removed path with the removal error.
func NewRemover(onResult func(err error)) *Remover {
	return &Remover{onResult: onResult}
}

func (r *Remover) RemoveFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		err := RemoveTempFile(path)
		if r.onResult != nil {
			r.onResult(err)
		}
	}
}
