package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlinkhq/shortlink/internal/service"
)

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := service.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 11)
		assert.False(t, seen[code], "generated duplicate code %q", code)
		seen[code] = true
	}
}

func TestValidateCustomCode(t *testing.T) {
	cases := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid alphanumeric", "abc123", false},
		{"valid with dash and underscore", "abc-123_xyz", false},
		{"too short", "abc12", true},
		{"too long", string(make([]byte, 65)), true},
		{"disallowed character", "abc 123", true},
		{"disallowed slash", "abc/123", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateCustomCode(tc.code)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
