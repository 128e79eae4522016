package release

import (
	"regexp"
	"strings"
	"sync"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// PatternCache memoises compiled regular expressions. The zero value is not
// usable; call NewPatternCache. It is safe for concurrent use.
type PatternCache struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// NewPatternCache returns an empty cache.
func NewPatternCache() *PatternCache {
	return &PatternCache{compiled: make(map[string]*regexp.Regexp)}
}

// Compile returns the compiled form of pattern, compiling it on first use.
// Failures are not cached.
func (p *PatternCache) Compile(pattern string) (*regexp.Regexp, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if re, ok := p.compiled[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, lhcerrors.Wrapf(lhcerrors.ErrInvalidPattern, "%q: %v", pattern, err)
	}
	p.compiled[pattern] = re
	return re, nil
}

// CompileAll compiles every pattern, stopping at the first failure.
func (p *PatternCache) CompileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := p.Compile(pattern)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

// Len returns the number of cached patterns.
func (p *PatternCache) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.compiled)
}

// ProjectIDs extracts project IDs from text. For each pattern, a match whose
// first capture group differs from the whole match contributes the whole
// match; otherwise prefix is prepended when the match does not already start
// with it. Results keep first-seen order without duplicates.
func ProjectIDs(text, prefix string, patterns []*regexp.Regexp) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			id := m[0]
			if len(m) < 2 || m[1] == m[0] {
				if prefix != "" && !strings.HasPrefix(id, prefix) {
					id = prefix + id
				}
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
