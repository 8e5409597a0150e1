package handler

import (
	"context"
	"errors"
	"fmt"
	"imagefilter/internal/core/domain"
	"imagefilter/internal/core/port"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Image struct {
	filter  port.ImageFilter
	tracker port.ArtifactTracker
	metrics port.MetricsCollector
	timeout time.Duration
}

func NewImage(filter port.ImageFilter, tracker port.ArtifactTracker, metrics port.MetricsCollector,
	timeout time.Duration) *Image {
	return &Image{filter: filter, tracker: tracker, metrics: metrics, timeout: timeout}
}

// Root answers with a usage hint for operators.
func (h *Image) Root(c *gin.Context) {
	c.String(http.StatusOK, domain.MsgUsage)
}

// FilteredImage downloads and filters the image behind the image_url query parameter and streams the
// result. The artifact is released on every path once the filter produced one.
func (h *Image) FilteredImage(c *gin.Context) {
	imageURL, err := domain.ParseImageURL(c.Query("image_url"))
	if errors.Is(err, domain.ErrMissingImageURL) {
		h.respond(c, http.StatusBadRequest, domain.OutcomeBadRequest, domain.MsgImageURLRequired)
		return
	}
	if err != nil {
		log.Debug().Err(err).Msg("rejected image_url")
		h.respond(c, http.StatusBadRequest, domain.OutcomeBadRequest, domain.MsgInvalidImageURL)
		return
	}

	l := log.With().Str("imageUrl", imageURL.String()).Logger()
	l.Info().Msg("handling request")

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	artifact, err := h.filter.FilterFromURL(ctx, imageURL.String())
	if err != nil {
		l.Error().Err(err).Msg("error processing image")
		h.respond(c, http.StatusUnprocessableEntity, domain.OutcomeUnprocessable, domain.MsgUnprocessable)
		return
	}

	h.tracker.Track(artifact.Path)
	defer h.tracker.Release(artifact.Path)

	written, err := sendArtifact(c, artifact)
	if err != nil && !written {
		l.Error().Err(err).Str("path", artifact.Path).Msg("error sending filtered image")
		h.respond(c, http.StatusInternalServerError, domain.OutcomeDeliveryError, domain.MsgDeliveryFailed)
		return
	}
	if err != nil {
		l.Warn().Err(err).Str("path", artifact.Path).Msg("filtered image only partially sent")
		h.record(domain.OutcomeDeliveryError)
		return
	}

	l.Debug().Str("path", artifact.Path).Msg("filtered image sent")
	h.record(domain.OutcomeOK)
}

func (h *Image) respond(c *gin.Context, status int, outcome domain.Outcome, message string) {
	h.record(outcome)
	c.String(status, "%s", message)
}

func (h *Image) record(outcome domain.Outcome) {
	if h.metrics != nil {
		h.metrics.RecordRequest(outcome)
	}
}

// sendArtifact streams the artifact as the response body. written reports whether the status line has been
// sent, after which the response can no longer be replaced by an error.
func sendArtifact(c *gin.Context, artifact domain.Artifact) (written bool, err error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	if stat.IsDir() {
		return false, fmt.Errorf("%w: %s is a directory", domain.ErrDelivery, artifact.Path)
	}

	contentType := artifact.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(stat.Size(), 10))
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	if _, err := io.Copy(c.Writer, f); err != nil {
		return true, fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}

	return true, nil
}
