package converter

import (
	"bytes"
	"context"
	"fmt"
	"imagefilter/internal/adapters/file"
	"imagefilter/internal/core/domain"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const (
	DefaultWidth   = 256
	DefaultHeight  = 256
	DefaultQuality = 60
)

type Downloader interface {
	DownloadFile(ctx context.Context, path string) ([]byte, error)
}

// Options control the output of a filter backend.
type Options struct {
	Width   int
	Height  int
	Quality int
	// Dir is where artifacts are written, os.TempDir() when empty.
	Dir string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// ImagingFilter resizes and greyscales images in process.
type ImagingFilter struct {
	downloader Downloader
	opts       Options
}

func NewImagingFilter(downloader Downloader, opts Options) *ImagingFilter {
	return &ImagingFilter{downloader: downloader, opts: opts.withDefaults()}
}

func (f *ImagingFilter) FilterFromURL(ctx context.Context, imageURL string) (domain.Artifact, error) {
	buf, err := f.downloader.DownloadFile(ctx, imageURL)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		log.Debug().Err(err).Str("imageUrl", imageURL).Msg("could not decode image")
		return domain.Artifact{}, fmt.Errorf("%w: decode: %w", domain.ErrProcessing, err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	img = imaging.Resize(img, f.opts.Width, f.opts.Height, imaging.Lanczos)
	img = imaging.Grayscale(img)

	out, err := file.CreateTempFile(f.opts.Dir, "filtered", ".jpg")
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(f.opts.Quality)); err != nil {
		_ = out.Close()
		_ = file.RemoveTempFile(out.Name())
		return domain.Artifact{}, fmt.Errorf("%w: encode: %w", domain.ErrProcessing, err)
	}

	stat, err := out.Stat()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = file.RemoveTempFile(out.Name())
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	log.Debug().Str("path", out.Name()).Int64("bytes", stat.Size()).Msg("filtered image written")

	return domain.Artifact{Path: out.Name(), ContentType: domain.ContentTypeJPEG, Size: stat.Size()}, nil
}
