package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		host    string
	}{
		{
			name:  "https url",
			input: "https://example.com/cat.jpg",
			host:  "example.com",
		},
		{
			name:  "http url with port and query",
			input: "http://127.0.0.1:8080/img?id=1",
			host:  "127.0.0.1:8080",
		},
		{
			name:  "surrounding whitespace",
			input: "  https://example.com/cat.jpg ",
			host:  "example.com",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrMissingImageURL,
		},
		{
			name:    "blank",
			input:   "   ",
			wantErr: ErrMissingImageURL,
		},
		{
			name:    "not a url",
			input:   "not a url",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:    "relative path",
			input:   "/images/cat.jpg",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:    "missing host",
			input:   "https:///cat.jpg",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:    "unsupported scheme",
			input:   "ftp://example.com/cat.jpg",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:    "port out of range",
			input:   "https://example.com:99999/cat.jpg",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:    "port just above range",
			input:   "http://example.com:65536/x",
			wantErr: ErrInvalidImageURL,
		},
		{
			name:  "highest port",
			input: "http://example.com:65535/x",
			host:  "example.com:65535",
		},
		{
			name:    "bad escape",
			input:   "http://example.com/%zz",
			wantErr: ErrInvalidImageURL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := ParseImageURL(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, u)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.host, u.Host)
		})
	}
}
