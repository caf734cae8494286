package index

import (
	"fmt"
	"regexp"
	"strings"
)

// globPattern is a compiled exclude pattern. '*' matches any run of
// characters, '?' matches a single character. A pattern matches a path when
// it matches the full relative path or any suffix that starts after a '/'.
type globPattern struct {
	raw string
	re  *regexp.Regexp
}

// compileGlob converts a glob pattern into an anchored regular expression.
func compileGlob(pattern string) (*globPattern, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &globPattern{raw: pattern, re: re}, nil
}

// compileGlobs compiles a pattern list.
func compileGlobs(patterns []string) ([]*globPattern, error) {
	compiled := make([]*globPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := compileGlob(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// matches reports whether the pattern matches relPath or any of its
// '/'-suffixes ("a/b/c.go" also tries "b/c.go" and "c.go").
func (g *globPattern) matches(relPath string) bool {
	if g.re.MatchString(relPath) {
		return true
	}
	rest := relPath
	for {
		i := strings.Index(rest, "/")
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
		if g.re.MatchString(rest) {
			return true
		}
	}
}
