package port

import (
	"context"
	"imagefilter/internal/core/domain"
)

type ImageFilter interface {
	// FilterFromURL downloads the image at imageURL, applies the filter and returns the artifact written to a
	// unique local path. Failures wrap domain.ErrProcessing. Intermediate files are removed by the implementation.
	FilterFromURL(ctx context.Context, imageURL string) (domain.Artifact, error)
}
