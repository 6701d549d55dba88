package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/3leaps/simpleindex/pkg/match"
	"github.com/3leaps/simpleindex/pkg/provider"
)

// URI parsing errors
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedProvider indicates the URI scheme is not supported.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingBucket indicates the URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// ObjectURI is a parsed store URI.
//
// Example URIs:
//   - s3://bucket/pkg_a/pkg_a-1.0-py3-none-any.whl
//   - s3://bucket/pkg_a/
//   - file://bucket/pkg_a/*.whl
type ObjectURI struct {
	// Provider is the URI scheme: "s3" or "file".
	Provider string

	Bucket string

	// Key is the object key or listing prefix. When Pattern is set, Key is
	// the static prefix of the pattern.
	Key string

	// Pattern is the whole key when it contains wildcards.
	Pattern string
}

// String returns the URI in canonical form.
func (u *ObjectURI) String() string {
	if u.Pattern != "" {
		return fmt.Sprintf("%s://%s/%s", u.Provider, u.Bucket, u.Pattern)
	}
	if u.Key != "" {
		return fmt.Sprintf("%s://%s/%s", u.Provider, u.Bucket, u.Key)
	}
	return fmt.Sprintf("%s://%s/", u.Provider, u.Bucket)
}

// IsPattern reports whether the URI carries a wildcard pattern.
func (u *ObjectURI) IsPattern() bool {
	return u.Pattern != ""
}

// IsPrefix reports whether the URI names a prefix (empty or ending in /).
func (u *ObjectURI) IsPrefix() bool {
	return u.Key == "" || match.HasTrailingSlash(u.Key)
}

// ParseURI parses scheme://bucket[/key] where scheme is s3 or file.
func ParseURI(uri string) (*ObjectURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	// url.Parse would treat '?' in a pattern as a query delimiter.
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd == -1 {
		return nil, fmt.Errorf("%w: missing scheme (expected s3://...)", ErrInvalidURI)
	}

	scheme := strings.ToLower(uri[:schemeEnd])
	switch provider.ProviderType(scheme) {
	case provider.ProviderS3, provider.ProviderFile:
	default:
		return nil, fmt.Errorf("%w: %s (supported: s3, file)", ErrUnsupportedProvider, scheme)
	}

	bucket, key, _ := strings.Cut(uri[schemeEnd+3:], "/")
	if bucket == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}
	if _, err := url.Parse("s3://" + bucket + "/"); err != nil {
		return nil, fmt.Errorf("%w: invalid bucket name %q", ErrInvalidURI, bucket)
	}

	result := &ObjectURI{Provider: scheme, Bucket: bucket, Key: key}
	if match.IsGlobPattern(key) {
		result.Pattern = key
		result.Key = match.DerivePrefix(key)
	}
	return result, nil
}
