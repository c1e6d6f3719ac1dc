package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpstreamURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "http", url: "http://localhost:8081"},
		{name: "https with path", url: "https://api.example.com/v2"},
		{name: "empty", url: "", wantErr: true},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "bad scheme", url: "ftp://example.com", wantErr: true},
		{name: "no host", url: "http://", wantErr: true},
		{name: "unparsable", url: "http://[::1", wantErr: true},
		{name: "query", url: "http://localhost:8081/?a=1", wantErr: true},
		{name: "fragment", url: "http://localhost:8081/#top", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateUpstreamURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHeaderName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateHeaderName("X-Api-Version"))
	assert.Error(t, ValidateHeaderName(""))
	assert.Error(t, ValidateHeaderName("bad header"))
	assert.Error(t, ValidateHeaderName("X-Version:"))
}

func TestValidateNonNegativePort(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateNonNegativePort(0))
	assert.NoError(t, ValidateNonNegativePort(8080))
	assert.Error(t, ValidateNonNegativePort(-1))
	assert.Error(t, ValidateNonNegativePort(70000))
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "", expected: 0},
		{input: "30s", expected: 30 * time.Second},
		{input: "1m30s", expected: 90 * time.Second},
		{input: "15", expected: 15 * time.Second},
		{input: " 2m ", expected: 2 * time.Minute},
		{input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			d, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestValidateDuration(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateDuration(0))
	assert.Error(t, ValidateDuration(-time.Second))
}

func TestValidateHTTPMethod(t *testing.T) {
	t.Parallel()

	for _, m := range []string{"GET", "post", "Delete", "*"} {
		assert.NoError(t, ValidateHTTPMethod(m), m)
	}
	assert.Error(t, ValidateHTTPMethod("FETCH"))
}

func TestValidateHTTPStatusCode(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateHTTPStatusCode(200))
	assert.Error(t, ValidateHTTPStatusCode(99))
	assert.Error(t, ValidateHTTPStatusCode(600))
}

func TestValidateNonEmpty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateNonEmpty("x", "name"))
	assert.EqualError(t, ValidateNonEmpty("  ", "name"), "name cannot be empty")
}

func TestValidateSamplingRate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSamplingRate(0))
	assert.NoError(t, ValidateSamplingRate(0.25))
	assert.NoError(t, ValidateSamplingRate(1))
	assert.Error(t, ValidateSamplingRate(-0.1))
	assert.Error(t, ValidateSamplingRate(1.5))
}
