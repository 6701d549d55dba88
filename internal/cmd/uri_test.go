package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantErr     error
		errContains string
		want        *ObjectURI
	}{
		{
			name: "simple bucket",
			uri:  "s3://my-bucket",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket"},
		},
		{
			name: "bucket with trailing slash",
			uri:  "s3://my-bucket/",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket"},
		},
		{
			name: "bucket with key",
			uri:  "s3://my-bucket/requests/requests-2.31.0-py3-none-any.whl",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "requests/requests-2.31.0-py3-none-any.whl"},
		},
		{
			name: "bucket with prefix",
			uri:  "s3://my-bucket/requests/",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "requests/"},
		},
		{
			name: "star pattern under prefix",
			uri:  "s3://my-bucket/requests/*.whl",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "requests/", Pattern: "requests/*.whl"},
		},
		{
			name: "star pattern at root",
			uri:  "s3://my-bucket/*.whl",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "", Pattern: "*.whl"},
		},
		{
			name: "question mark pattern",
			uri:  "s3://my-bucket/data/file?.csv",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "data/", Pattern: "data/file?.csv"},
		},
		{
			name: "bracket pattern",
			uri:  "s3://my-bucket/data/file[0-9].csv",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "data/", Pattern: "data/file[0-9].csv"},
		},
		{
			name: "braces are literal",
			uri:  "s3://my-bucket/data/{a,b}.csv",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "data/{a,b}.csv"},
		},
		{
			name: "file scheme",
			uri:  "file://pkgs/pkg_a/",
			want: &ObjectURI{Provider: "file", Bucket: "pkgs", Key: "pkg_a/"},
		},
		{
			name: "uppercase scheme",
			uri:  "S3://my-bucket/path",
			want: &ObjectURI{Provider: "s3", Bucket: "my-bucket", Key: "path"},
		},
		{
			name:        "empty URI",
			uri:         "",
			wantErr:     ErrInvalidURI,
			errContains: "empty",
		},
		{
			name:        "missing scheme",
			uri:         "my-bucket/path",
			wantErr:     ErrInvalidURI,
			errContains: "missing scheme",
		},
		{
			name:        "unsupported scheme",
			uri:         "gcs://my-bucket/path",
			wantErr:     ErrUnsupportedProvider,
			errContains: "gcs",
		},
		{
			name:        "missing bucket",
			uri:         "s3:///path",
			wantErr:     ErrMissingBucket,
			errContains: "missing bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectURI_String(t *testing.T) {
	tests := []struct {
		uri  *ObjectURI
		want string
	}{
		{&ObjectURI{Provider: "s3", Bucket: "bucket"}, "s3://bucket/"},
		{&ObjectURI{Provider: "s3", Bucket: "bucket", Key: "pkg/file.whl"}, "s3://bucket/pkg/file.whl"},
		{&ObjectURI{Provider: "file", Bucket: "bucket", Key: "pkg/", Pattern: "pkg/*.whl"}, "file://bucket/pkg/*.whl"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.uri.String())
		})
	}
}

func TestObjectURI_IsPrefix(t *testing.T) {
	assert.True(t, (&ObjectURI{Bucket: "b"}).IsPrefix())
	assert.True(t, (&ObjectURI{Bucket: "b", Key: "pkg/"}).IsPrefix())
	assert.False(t, (&ObjectURI{Bucket: "b", Key: "pkg/file.whl"}).IsPrefix())
}

func TestObjectURI_IsPattern(t *testing.T) {
	assert.False(t, (&ObjectURI{Bucket: "b", Key: "pkg/"}).IsPattern())
	assert.True(t, (&ObjectURI{Bucket: "b", Key: "pkg/", Pattern: "pkg/*.whl"}).IsPattern())
}
