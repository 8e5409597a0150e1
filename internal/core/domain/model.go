package domain

const ContentTypeJPEG = "image/jpeg"

// Artifact is a filtered image materialized on local disk. It is owned by exactly one request and must be
// removed once that request has finished sending it.
type Artifact struct {
	Path        string
	ContentType string
	Size        int64
}

type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeBadRequest    Outcome = "bad_request"
	OutcomeUnprocessable Outcome = "unprocessable"
	OutcomeDeliveryError Outcome = "delivery_error"
)
