package domain

import "errors"

var (
	ErrMissingImageURL  = errors.New("missing image_url")
	ErrInvalidImageURL  = errors.New("invalid image_url")
	ErrProcessing       = errors.New("failed to process image")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
	ErrUnexpectedStatus = errors.New("unexpected status code on download")
	ErrDelivery         = errors.New("failed to send filtered image")
)

// Response bodies returned to HTTP clients.
const (
	MsgImageURLRequired = "The image_url query parameter is required."
	MsgInvalidImageURL  = "Invalid URL format."
	MsgUnprocessable    = "Unable to process the image. Please check the provided image URL."
	MsgDeliveryFailed   = "Error sending the filtered image."
	MsgUsage            = "Try GET /filteredimage?image_url={{}}"
)
