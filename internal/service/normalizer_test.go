package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlinkhq/shortlink/internal/service"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/path", "https://example.com/path"},
		{"strips default https port", "https://example.com:443/path", "https://example.com/path"},
		{"strips default http port", "http://example.com:80/path", "http://example.com/path"},
		{"keeps non-default port", "https://example.com:8443/path", "https://example.com:8443/path"},
		{"strips fragment", "https://example.com/path#section", "https://example.com/path"},
		{"preserves query", "https://example.com/path?x=1&y=2", "https://example.com/path?x=1&y=2"},
		{"collapses empty path to slash", "https://example.com", "https://example.com/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.NormalizeURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURL_RejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"ftp://example.com/file",
		"https:///path",
	}

	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := service.NormalizeURL(in)
			assert.Error(t, err)
		})
	}
}
