package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in       string
		useSSL   bool
		wantHost string
		wantSSL  bool
	}{
		{in: "minio:9000", useSSL: false, wantHost: "minio:9000", wantSSL: false},
		{in: "minio:9000", useSSL: true, wantHost: "minio:9000", wantSSL: true},
		{in: "https://s3.example.com", useSSL: false, wantHost: "s3.example.com", wantSSL: true},
		{in: "http://localhost:9000", useSSL: true, wantHost: "localhost:9000", wantSSL: false},
	}

	for _, tt := range tests {
		host, ssl, err := splitEndpoint(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.wantHost, host, tt.in)
		assert.Equal(t, tt.wantSSL, ssl, tt.in)
	}
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBase("https://cdn.example.com", "minio:9000", false, "wishes"))
	assert.Equal(t, "http://minio:9000/wishes", publicBase("", "minio:9000", false, "wishes"))
	assert.Equal(t, "https://s3.example.com/wishes", publicBase("", "s3.example.com", true, "wishes"))
}
