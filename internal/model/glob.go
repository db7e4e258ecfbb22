package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Glob is a compiled shell-style filename pattern supporting "*", "?", and
// character classes ("[abc]", "[a-z]", "[!abc]").
//
// Design decision: We compile patterns to a regular expression rather than
// using filepath.Match because filepath.Match treats "/" as a path
// separator that "*" cannot cross. Directory names in listings carry a
// trailing "/" by convention, so "europarl*" must match "europarl/".
// Shell fnmatch semantics (where "*" matches any character) are what the
// pattern contract promises.
type Glob struct {
	// pattern is the original pattern text, kept for display.
	pattern string

	// re is the compiled pattern. Nil means match-all (empty pattern).
	re *regexp.Regexp
}

// CompileGlob compiles a shell glob pattern. An empty pattern yields a
// Glob that matches every name.
func CompileGlob(pattern string) (*Glob, error) {
	if pattern == "" {
		return &Glob{}, nil
	}

	var b strings.Builder
	b.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
				j++
			}
			// A "]" directly after the opening bracket is a literal member.
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated character class in pattern %q", pattern)
			}
			class := string(runes[i+1 : j])
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &Glob{pattern: pattern, re: re}, nil
}

// Match reports whether name matches the pattern. Matching is against the
// bare entry name (including the trailing "/" of directories), never the
// full URL. A nil or empty Glob matches everything.
func (g *Glob) Match(name string) bool {
	if g == nil || g.re == nil {
		return true
	}
	return g.re.MatchString(name)
}

// String returns the original pattern text.
func (g *Glob) String() string {
	if g == nil {
		return ""
	}
	return g.pattern
}
