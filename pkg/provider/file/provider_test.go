package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/simpleindex/pkg/provider"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "wheels/foo/foo-1.0-py3-none-any.whl", "foo-wheel")
	writeFile(t, root, "wheels/foo/foo-1.0.tar.gz", "foo-sdist")
	writeFile(t, root, "wheels/bar/bar-2.0-py3-none-any.whl", "bar-wheel")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	p, err := New(Config{Root: root})
	require.NoError(t, err)
	return p
}

func listAll(t *testing.T, p *Provider, opts provider.ListOptions) []string {
	t.Helper()
	var keys []string
	for {
		res, err := p.List(context.Background(), opts)
		require.NoError(t, err)
		keys = append(keys, res.Keys()...)
		if res.ContinuationToken == "" {
			return keys
		}
		opts.ContinuationToken = res.ContinuationToken
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Root: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestList_IncludesDirectoryMarkers(t *testing.T) {
	p := newTestProvider(t)

	keys := listAll(t, p, provider.ListOptions{Bucket: "wheels"})
	assert.Equal(t, []string{
		"bar/",
		"bar/bar-2.0-py3-none-any.whl",
		"foo/",
		"foo/foo-1.0-py3-none-any.whl",
		"foo/foo-1.0.tar.gz",
	}, keys)
}

func TestList_Prefix(t *testing.T) {
	p := newTestProvider(t)

	keys := listAll(t, p, provider.ListOptions{Bucket: "wheels", Prefix: "foo/"})
	assert.Equal(t, []string{"foo/", "foo/foo-1.0-py3-none-any.whl", "foo/foo-1.0.tar.gz"}, keys)

	keys = listAll(t, p, provider.ListOptions{Bucket: "wheels", Prefix: "fo"})
	assert.Len(t, keys, 3)

	keys = listAll(t, p, provider.ListOptions{Bucket: "wheels", Prefix: "zzz/"})
	assert.Empty(t, keys)
}

func TestList_Paginates(t *testing.T) {
	p := newTestProvider(t)

	first, err := p.List(context.Background(), provider.ListOptions{Bucket: "wheels", MaxKeys: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar/", "bar/bar-2.0-py3-none-any.whl"}, first.Keys())
	assert.True(t, first.IsTruncated)
	assert.Equal(t, "bar/bar-2.0-py3-none-any.whl", first.ContinuationToken)

	keys := listAll(t, p, provider.ListOptions{Bucket: "wheels", MaxKeys: 2})
	assert.Len(t, keys, 5)
}

func TestList_EmptyBucket(t *testing.T) {
	p := newTestProvider(t)

	res, err := p.List(context.Background(), provider.ListOptions{Bucket: "empty"})
	require.NoError(t, err)
	assert.Empty(t, res.Objects)
	assert.Empty(t, res.ContinuationToken)
}

func TestList_BucketNotFound(t *testing.T) {
	p := newTestProvider(t)

	for _, bucket := range []string{"missing", "..", "a/b", ""} {
		_, err := p.List(context.Background(), provider.ListOptions{Bucket: bucket})
		require.Error(t, err, bucket)
	}

	_, err := p.List(context.Background(), provider.ListOptions{Bucket: "missing"})
	assert.True(t, provider.IsBucketNotFound(err))
}

func TestGetObject(t *testing.T) {
	p := newTestProvider(t)

	body, n, err := p.GetObject(context.Background(), "wheels", "foo/foo-1.0.tar.gz")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "foo-sdist", string(data))
	assert.Equal(t, int64(9), n)
}

func TestGetObject_Errors(t *testing.T) {
	p := newTestProvider(t)

	_, _, err := p.GetObject(context.Background(), "wheels", "foo/missing.whl")
	assert.True(t, provider.IsNotFound(err))

	_, _, err = p.GetObject(context.Background(), "wheels", "foo")
	assert.True(t, provider.IsNotFound(err))

	_, _, err = p.GetObject(context.Background(), "wheels", "../../etc/passwd")
	require.Error(t, err)
}

func TestHead(t *testing.T) {
	p := newTestProvider(t)

	meta, err := p.Head(context.Background(), "wheels", "bar/bar-2.0-py3-none-any.whl")
	require.NoError(t, err)
	assert.Equal(t, int64(9), meta.Size)

	_, err = p.Head(context.Background(), "wheels", "bar")
	assert.True(t, provider.IsNotFound(err))
}
