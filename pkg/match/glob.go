package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// Shell-style (fnmatch) matching of whole object keys.
//
// Unlike Matcher, which follows doublestar path semantics, Glob is purely
// textual: '*' crosses '/' boundaries. Supported syntax:
//
//	*       any run of characters, including none
//	?       exactly one character
//	[seq]   one character in seq (ranges such as a-z allowed)
//	[!seq]  one character not in seq
//
// Malformed syntax never fails: an unclosed '[' is a literal '[', reversed
// ranges are dropped, "[]..." treats the first ']' as a member, an empty set
// never matches and a negated empty set matches any character.

// compiledPatternCacheSize bounds the number of compiled patterns retained.
const compiledPatternCacheSize = 32768

var compiled = mustPatternCache()

func mustPatternCache() *ristretto.Cache[string, *regexp.Regexp] {
	c, err := ristretto.NewCache(&ristretto.Config[string, *regexp.Regexp]{
		NumCounters: compiledPatternCacheSize * 10,
		MaxCost:     compiledPatternCacheSize,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("match: pattern cache: %v", err))
	}
	return c
}

// Glob reports whether key matches the shell-style pattern in its entirety.
// Matching is case-sensitive.
func Glob(key, pattern string) bool {
	return compile(pattern).MatchString(key)
}

// Filter returns the keys matching pattern, in their original order. The
// result is always a new slice; keys is never modified.
func Filter(keys []string, pattern string) []string {
	out := make([]string, 0, len(keys))
	if pattern == "*" {
		return append(out, keys...)
	}
	re := compile(pattern)
	for _, k := range keys {
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	return out
}

func compile(pattern string) *regexp.Regexp {
	if re, ok := compiled.Get(pattern); ok {
		return re
	}
	// The translation only emits syntax RE2 accepts.
	re := regexp.MustCompile(Translate(pattern))
	compiled.Set(pattern, re, 1)
	return re
}

// Translate converts a shell-style pattern to an anchored RE2 expression.
func Translate(pattern string) string {
	pat := []rune(pattern)
	n := len(pat)

	var b strings.Builder
	b.WriteString(`(?s)\A`)

	for i := 0; i < n; {
		c := pat[i]
		i++
		switch c {
		case '*':
			// Runs of stars are equivalent to one.
			for i < n && pat[i] == '*' {
				i++
			}
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '[':
			j := i
			if j < n && pat[j] == '!' {
				j++
			}
			if j < n && pat[j] == ']' {
				j++
			}
			for j < n && pat[j] != ']' {
				j++
			}
			if j >= n {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(bracketClass(pat[i:j]))
			i = j + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`\z`)
	return b.String()
}

// matchNothing is an empty RE2 class.
const matchNothing = `[^\x00-\x{10FFFF}]`

// bracketClass renders the body of a [...] expression (without brackets) as
// an RE2 character class.
func bracketClass(body []rune) string {
	negate := false
	if len(body) > 0 && body[0] == '!' {
		negate = true
		body = body[1:]
	}

	type span struct{ lo, hi rune }
	var spans []span
	for k := 0; k < len(body); k++ {
		lo := body[k]
		// A '-' between two members forms a range; leading and trailing
		// hyphens are literal.
		if k+2 < len(body) && body[k+1] == '-' {
			hi := body[k+2]
			k += 2
			if lo <= hi {
				spans = append(spans, span{lo, hi})
			}
			continue
		}
		spans = append(spans, span{lo, lo})
	}

	if len(spans) == 0 {
		if negate {
			return "."
		}
		return matchNothing
	}

	var b strings.Builder
	b.WriteByte('[')
	if negate {
		b.WriteByte('^')
	}
	for _, s := range spans {
		fmt.Fprintf(&b, `\x{%x}`, s.lo)
		if s.hi != s.lo {
			fmt.Fprintf(&b, `-\x{%x}`, s.hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}
