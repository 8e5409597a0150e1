package converter

import (
	"context"
	"errors"
	"fmt"
	"imagefilter/internal/adapters/file"
	"imagefilter/internal/core/domain"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
)

// MagickFilter delegates the transformation to an ImageMagick binary.
type MagickFilter struct {
	magickBinary []string
	downloader   Downloader
	opts         Options
}

func NewMagickFilter(downloader Downloader, opts Options) (*MagickFilter, error) {
	binary, err := findMagickBinary()
	if err != nil {
		return nil, err
	}

	return &MagickFilter{magickBinary: binary, downloader: downloader, opts: opts.withDefaults()}, nil
}

func findMagickBinary() ([]string, error) {
	commands := [][]string{{"magick", "convert", "-version"}, {"convert", "-version"}}

	for _, command := range commands {
		_, err := exec.Command(command[0], command[1:]...).Output()
		if err != nil {
			log.Debug().Strs("commands", command).Msg("binary not found")
			continue
		}

		log.Debug().Strs("commands", command).Msg("binary found")
		return command[:len(command)-1], nil
	}

	return nil, errors.New("magick binary not available")
}

func (m *MagickFilter) FilterFromURL(ctx context.Context, imageURL string) (domain.Artifact, error) {
	buf, err := m.downloader.DownloadFile(ctx, imageURL)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	in, err := file.SaveTempFile(m.opts.Dir, buf, inputExtension(imageURL))
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}
	defer file.RemoveTempFile(in)

	out, err := file.CreateTempFile(m.opts.Dir, "filtered", ".jpg")
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}
	_ = out.Close()

	args := slices.Concat(m.magickBinary, m.args(in, out.Name()))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stderr, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Bytes("magickStderr", stderr).Msg("magick commands failed")
		_ = file.RemoveTempFile(out.Name())
		return domain.Artifact{}, fmt.Errorf("%w: magick: %w", domain.ErrProcessing, err)
	}

	log.Debug().Msg("magick commands finished")

	stat, err := os.Stat(out.Name())
	if err != nil {
		_ = file.RemoveTempFile(out.Name())
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrProcessing, err)
	}

	return domain.Artifact{Path: out.Name(), ContentType: domain.ContentTypeJPEG, Size: stat.Size()}, nil
}

func (m *MagickFilter) args(in, out string) []string {
	return []string{
		in,
		"-auto-orient",
		"-resize", fmt.Sprintf("%dx%d!", m.opts.Width, m.opts.Height),
		"-colorspace", "Gray",
		"-quality", strconv.Itoa(m.opts.Quality),
		"jpeg:" + out,
	}
}

// inputExtension keeps the source extension so magick can use it as a format hint.
func inputExtension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".img"
	}

	ext := filepath.Ext(u.Path)
	if ext == "" || len(ext) > 5 {
		return ".img"
	}

	return ext
}
