package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseImageURL validates a raw image_url value. It must be an absolute http(s) URL with a host.
func ParseImageURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingImageURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrInvalidImageURL, raw)
	}

	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err != nil || n > 65535 {
			return nil, fmt.Errorf("%w: port %q out of range", ErrInvalidImageURL, p)
		}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidImageURL, u.Scheme)
	}

	return u, nil
}
