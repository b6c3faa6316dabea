package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3StorageURLs(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "public url wins",
			cfg:  S3Config{Endpoint: "https://abc.r2.cloudflarestorage.com", Bucket: "photos", PublicURL: "https://cdn.example/", Prefix: "fotoflix"},
			want: "https://cdn.example/fotoflix/photo_1.jpg",
		},
		{
			name: "path style for custom endpoint",
			cfg:  S3Config{Endpoint: "minio.local:9000", Bucket: "photos"},
			want: "http://minio.local:9000/photos/photo_1.jpg",
		},
		{
			name: "aws virtual host",
			cfg:  S3Config{Bucket: "photos", Region: "eu-west-1"},
			want: "https://photos.s3.eu-west-1.amazonaws.com/photo_1.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Storage(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.GetURL("photo_1.jpg"))
		})
	}
}
