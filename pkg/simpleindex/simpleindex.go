// Package simpleindex builds PEP 503 style "simple" index pages from object
// key listings.
//
// A bucket is laid out with one grouping per package:
//
//	requests/
//	requests/requests-2.31.0-py3-none-any.whl
//	urllib3/
//	urllib3/urllib3-2.0.7-py3-none-any.whl
//
// The bucket page links every grouping; a package page links every wheel
// inside one grouping.
package simpleindex

import (
	"context"
	"errors"

	"github.com/3leaps/simpleindex/pkg/listing"
	"github.com/3leaps/simpleindex/pkg/match"
)

const (
	// PackagePattern selects package groupings on the bucket page.
	PackagePattern = "*/"

	// FilePattern selects distributions on a package page.
	FilePattern = "*.whl"
)

// ErrPackageNotFound is returned when a package has no distributions.
var ErrPackageNotFound = errors.New("package not found")

// Link is one anchor on an index page.
type Link struct {
	Href string
	Text string
}

// NameSource returns filtered key listings. *listing.Service implements it.
type NameSource interface {
	Names(ctx context.Context, bucket string, opts ...listing.Option) ([]string, error)
}

// Index produces the links for bucket and package pages.
type Index struct {
	names   NameSource
	visible *match.Matcher
}

// New creates an Index over names. visible, when non-nil, hides keys that
// fail its rules.
func New(names NameSource, visible *match.Matcher) *Index {
	return &Index{names: names, visible: visible}
}

// Packages returns one link per package grouping in bucket. An empty bucket
// yields no links and no error.
func (ix *Index) Packages(ctx context.Context, bucket string) ([]Link, error) {
	names, err := ix.names.Names(ctx, bucket, listing.WithPattern(PackagePattern))
	if err != nil {
		return nil, err
	}
	return BucketLinks(ix.visible.Apply(names)), nil
}

// Files returns one link per distribution of pkg in bucket. It returns
// ErrPackageNotFound when there are none.
func (ix *Index) Files(ctx context.Context, bucket, pkg string) ([]Link, error) {
	names, err := ix.names.Names(ctx, bucket,
		listing.WithPrefix(PackagePrefix(pkg)),
		listing.WithPattern(FilePattern),
	)
	if err != nil {
		return nil, err
	}
	links := PackageLinks(ix.visible.Apply(names))
	if len(links) == 0 {
		return nil, ErrPackageNotFound
	}
	return links, nil
}

// PackagePrefix returns the listing prefix for a package grouping.
func PackagePrefix(pkg string) string {
	return pkg + "/"
}

// ObjectKey returns the key of a distribution file within a package.
func ObjectKey(pkg, file string) string {
	return pkg + "/" + file
}

// BucketLinks links each grouping key to itself, labelled without its
// trailing slash.
func BucketLinks(names []string) []Link {
	links := make([]Link, 0, len(names))
	for _, name := range names {
		links = append(links, Link{Href: name, Text: match.TrimTrailingSlash(name)})
	}
	return links
}

// PackageLinks links each file by its final path segment, which is both the
// href (relative to the package page) and the label.
func PackageLinks(names []string) []Link {
	links := make([]Link, 0, len(names))
	for _, name := range names {
		base := match.BaseName(name)
		links = append(links, Link{Href: base, Text: base})
	}
	return links
}
