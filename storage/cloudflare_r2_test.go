package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.example.com", "standings/1.json", "https://cdn.example.com/standings/1.json"},
		{"base with trailing slash", "https://cdn.example.com/", "standings/1.json", "https://cdn.example.com/standings/1.json"},
		{"key with leading slash", "https://cdn.example.com/", "/standings/1.json", "https://cdn.example.com/standings/1.json"},
		{"base with path", "https://cdn.example.com/league", "a.json", "https://cdn.example.com/league/a.json"},
		{"empty key", "https://cdn.example.com", "", ""},
		{"empty base", "", "a.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPublicURL(tt.base, tt.key))
		})
	}
}

func TestNewR2UploaderRequiresAllFields(t *testing.T) {
	_, err := NewR2Uploader(context.Background(), R2Config{AccountID: "acc", BucketName: "bucket"})
	require.ErrorIs(t, err, ErrInvalidR2Config)
}
