package match

import "strings"

// globMeta holds the characters that open a wildcard in a Glob pattern.
const globMeta = "*?["

// DerivePrefix extracts the longest static prefix from a Glob pattern,
// truncated to the last complete path segment so it can be sent to the store
// as a listing prefix.
//
// Glob patterns have no escape syntax, so every '*', '?' and '[' opens a
// wildcard.
//
// Examples:
//
//	"requests/*.whl"          → "requests/"
//	"*.whl"                   → ""
//	"requests/requests-2.*"   → "requests/"
//	"requests/"               → "requests/"
//	"requests/requests.whl"   → "requests/requests.whl"
func DerivePrefix(pattern string) string {
	idx := strings.IndexAny(pattern, globMeta)
	if idx == -1 {
		return pattern
	}
	lastSlash := strings.LastIndexByte(pattern[:idx], '/')
	if lastSlash < 0 {
		return ""
	}
	return pattern[:lastSlash+1]
}

// IsGlobPattern reports whether the pattern contains a wildcard.
//
//	"requests/*.whl"       → true
//	"requests/[rR]*"       → true
//	"requests/file.whl"    → false
func IsGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, globMeta)
}
