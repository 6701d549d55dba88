//go:build cloudintegration

package s3_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/simpleindex/pkg/listing"
	"github.com/3leaps/simpleindex/pkg/provider"
	"github.com/3leaps/simpleindex/pkg/provider/s3"
	"github.com/3leaps/simpleindex/test/cloudtest"
)

func newMotoProvider(t *testing.T, maxKeys int) *s3.Provider {
	t.Helper()
	p, err := s3.New(context.Background(), s3.Config{
		Region:          cloudtest.Region,
		Endpoint:        cloudtest.Endpoint,
		AccessKeyID:     cloudtest.AccessKeyID,
		SecretAccessKey: cloudtest.SecretAccessKey,
		ForcePathStyle:  true,
		MaxKeys:         maxKeys,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProvider_ListerPaginatesAgainstMoto(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()
	bucket := cloudtest.CreateBucket(t, ctx)

	var keys []string
	for i := 0; i < 25; i++ {
		keys = append(keys, fmt.Sprintf("pkg_%02d/pkg_%02d-1.0-py3-none-any.whl", i, i))
	}
	cloudtest.PutObjects(t, ctx, bucket, keys)

	lister := listing.NewLister(newMotoProvider(t, 10), listing.ListerConfig{MaxKeys: 10})
	got, err := lister.List(ctx, listing.NewKey(bucket))
	require.NoError(t, err)
	assert.Equal(t, keys, got)

	got, err = lister.List(ctx, listing.NewKey(bucket).WithPrefix("pkg_07/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg_07/pkg_07-1.0-py3-none-any.whl"}, got)
}

func TestProvider_GetObjectAgainstMoto(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()
	bucket := cloudtest.CreateBucket(t, ctx)
	cloudtest.PutObject(t, ctx, bucket, "pkg/pkg-1.0-py3-none-any.whl", []byte("wheel"))

	p := newMotoProvider(t, 0)

	body, size, err := p.GetObject(ctx, bucket, "pkg/pkg-1.0-py3-none-any.whl")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "wheel", string(data))
	assert.Equal(t, int64(5), size)

	_, _, err = p.GetObject(ctx, bucket, "pkg/missing.whl")
	assert.True(t, provider.IsNotFound(err), "got %v", err)
}

func TestProvider_MissingBucketAgainstMoto(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)

	_, err := newMotoProvider(t, 0).List(context.Background(), provider.ListOptions{Bucket: "does-not-exist-simpleindex"})
	assert.True(t, provider.IsBucketNotFound(err), "got %v", err)
}
