// Package file implements the provider interface over a local directory tree.
//
// Each top-level directory under the root is a bucket. Keys are slash
// separated paths relative to the bucket directory. Every nested directory is
// also reported as a marker key ending in "/", the way folders created from
// object store consoles appear in listings, so a local tree can back the
// bucket index page.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/3leaps/simpleindex/pkg/provider"
)

// DefaultMaxKeys is the page size used when a List call does not set one.
const DefaultMaxKeys = 1000

// Provider implements provider.Provider for local filesystem paths.
type Provider struct {
	root string
}

// Ensure Provider implements provider capability interfaces.
var (
	_ provider.Provider     = (*Provider)(nil)
	_ provider.ObjectGetter = (*Provider)(nil)
)

// Config configures a file provider.
type Config struct {
	// Root is the directory holding one subdirectory per bucket.
	Root string
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root dir is required")
	}
	return nil
}

// New creates a provider rooted at cfg.Root. The root must exist.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root := filepath.Clean(cfg.Root)
	st, err := os.Stat(root)
	if err != nil {
		return nil, &provider.ProviderError{Op: "New", Provider: provider.ProviderFile, Err: err}
	}
	if !st.IsDir() {
		return nil, &provider.ProviderError{Op: "New", Provider: provider.ProviderFile, Err: fmt.Errorf("%s is not a directory", root)}
	}
	return &Provider{root: root}, nil
}

func (p *Provider) Close() error { return nil }

// List returns one page of keys in lexicographic order. The continuation
// token is the last key of the previous page.
func (p *Provider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	bucketDir, err := p.bucketDir(opts.Bucket)
	if err != nil {
		return nil, p.wrapError("List", opts.Bucket, opts.Prefix, err)
	}

	entries, err := collect(ctx, bucketDir, opts.Prefix)
	if err != nil {
		return nil, p.wrapError("List", opts.Bucket, opts.Prefix, err)
	}

	start := 0
	if opts.ContinuationToken != "" {
		start = sort.Search(len(entries), func(i int) bool {
			return entries[i].Key > opts.ContinuationToken
		})
	}

	end := start + maxKeys
	if end > len(entries) {
		end = len(entries)
	}

	res := &provider.ListResult{Objects: entries[start:end]}
	if end < len(entries) {
		res.IsTruncated = true
		res.ContinuationToken = entries[end-1].Key
	}
	return res, nil
}

func (p *Provider) Head(ctx context.Context, bucket, key string) (*provider.ObjectMeta, error) {
	_ = ctx
	full, err := p.objectPath(bucket, key)
	if err != nil {
		return nil, p.wrapError("Head", bucket, key, err)
	}
	st, err := os.Stat(full)
	if err != nil {
		return nil, p.wrapError("Head", bucket, key, err)
	}
	if st.IsDir() {
		return nil, &provider.ProviderError{Op: "Head", Provider: provider.ProviderFile, Bucket: bucket, Key: key, Err: provider.ErrNotFound}
	}

	return &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{Key: key, Size: st.Size(), LastModified: st.ModTime()},
	}, nil
}

func (p *Provider) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	_ = ctx
	full, err := p.objectPath(bucket, key)
	if err != nil {
		return nil, 0, p.wrapError("GetObject", bucket, key, err)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, 0, p.wrapError("GetObject", bucket, key, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, p.wrapError("GetObject", bucket, key, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, 0, &provider.ProviderError{Op: "GetObject", Provider: provider.ProviderFile, Bucket: bucket, Key: key, Err: provider.ErrNotFound}
	}
	return f, st.Size(), nil
}

// bucketDir resolves a bucket name to its directory, rejecting names that
// would escape the root.
func (p *Provider) bucketDir(bucket string) (string, error) {
	if bucket == "" || bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `/\`) {
		return "", fmt.Errorf("invalid bucket name %q", bucket)
	}
	dir := filepath.Join(p.root, bucket)
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return "", provider.ErrBucketNotFound
	}
	return dir, nil
}

func (p *Provider) objectPath(bucket, key string) (string, error) {
	dir, err := p.bucketDir(bucket)
	if err != nil {
		return "", err
	}
	key = strings.TrimPrefix(key, "/")
	// Prevent path traversal.
	clean := strings.TrimPrefix(filepath.Clean("/"+key), "/")
	if clean == "" || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), nil
}

// collect walks the bucket directory and returns every file and directory
// marker whose key starts with prefix, sorted by key.
func collect(ctx context.Context, bucketDir, prefix string) ([]provider.ObjectSummary, error) {
	var entries []provider.ObjectSummary
	err := filepath.WalkDir(bucketDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == bucketDir {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if d.IsDir() {
			key += "/"
		}
		if !strings.HasPrefix(key, prefix) {
			// Skip whole subtrees that cannot contain a match.
			if d.IsDir() && !strings.HasPrefix(prefix, key) {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		obj := provider.ObjectSummary{Key: key, LastModified: info.ModTime()}
		if !d.IsDir() {
			obj.Size = info.Size()
		}
		entries = append(entries, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (p *Provider) wrapError(op, bucket, key string, err error) error {
	wrapped := &provider.ProviderError{Op: op, Provider: provider.ProviderFile, Bucket: bucket, Key: key, Err: err}
	switch {
	case errors.Is(err, provider.ErrBucketNotFound):
	case os.IsNotExist(err):
		wrapped.Err = provider.ErrNotFound
	case os.IsPermission(err):
		wrapped.Err = provider.ErrAccessDenied
	}
	return wrapped
}
