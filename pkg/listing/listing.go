// Package listing enumerates object names from a store and memoizes full
// enumerations per (bucket, prefix).
//
// The Lister walks every page of a remote listing. The NameCache holds
// complete, unfiltered enumerations for the life of the process. The Service
// combines the two and applies a shell-style pattern to the result, so the
// same cached enumeration serves any pattern.
package listing

import "strconv"

// DefaultPattern matches every key.
const DefaultPattern = "*"

// Key identifies one enumeration: a bucket plus an optional prefix.
//
// An absent prefix and an empty prefix list the same objects but are
// distinct keys.
type Key struct {
	Bucket    string
	Prefix    string
	HasPrefix bool
}

// NewKey returns the key for bucket with no prefix.
func NewKey(bucket string) Key {
	return Key{Bucket: bucket}
}

// WithPrefix returns a copy of k carrying prefix.
func (k Key) WithPrefix(prefix string) Key {
	k.Prefix = prefix
	k.HasPrefix = true
	return k
}

// String renders the key for logs, e.g. "pkgs" or "pkgs:\"requests/\"".
func (k Key) String() string {
	if !k.HasPrefix {
		return k.Bucket
	}
	return k.Bucket + ":" + strconv.Quote(k.Prefix)
}
