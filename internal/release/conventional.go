// Package release turns commit history into versioned releases: it parses
// conventional commit messages, derives semantic version bumps, and groups
// changes into release notes.
package release

import (
	"regexp"
	"slices"
	"strings"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

var (
	headerPattern  = regexp.MustCompile(`^([\p{L}\p{N}]+)(?:\(([^()\s]+)\))?(!)?: (.*)$`)
	trailerPattern = regexp.MustCompile(`^(BREAKING CHANGE|\p{Lu}[\p{L}\p{N}\p{S}-]*): (.*)$`)
)

// Trailer keys that mark a breaking change.
const (
	BreakingChangeTrailer       = "BREAKING CHANGE"
	BreakingChangeTrailerHyphen = "BREAKING-CHANGE"
)

// Header is the parsed subject line of a conventional commit.
type Header struct {
	Type     string `json:"type" yaml:"type"`
	Scope    string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Breaking bool   `json:"isBreaking" yaml:"isBreaking"`
	Summary  string `json:"summary" yaml:"summary"`
}

// Trailer is a "Key: value" line at the end of a commit message.
type Trailer struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// ConventionalCommit is a commit message in conventional commit form.
type ConventionalCommit struct {
	Header   Header    `json:"header" yaml:"header"`
	Body     string    `json:"body,omitempty" yaml:"body,omitempty"`
	Trailers []Trailer `json:"trailers,omitempty" yaml:"trailers,omitempty"`
}

// ParseConventional parses a commit message.
//
// The first line must be a "type(scope)!: summary" header. Trailers are read
// backwards from the last line until a line does not parse as one; whatever
// remains between the header and the trailers is the body.
func ParseConventional(message string) (*ConventionalCommit, error) {
	lines := strings.Split(strings.TrimSpace(message), "\n")

	header, err := parseHeader(strings.TrimRight(lines[0], "\r"))
	if err != nil {
		return nil, err
	}

	rest := lines[1:]
	first := len(rest)
	var trailers []Trailer
	for i := len(rest) - 1; i >= 0; i-- {
		t, ok := parseTrailer(strings.TrimRight(rest[i], "\r"))
		if !ok {
			break
		}
		trailers = append(trailers, t)
		first = i
	}
	slices.Reverse(trailers)

	return &ConventionalCommit{
		Header:   header,
		Body:     strings.TrimSpace(strings.Join(rest[:first], "\n")),
		Trailers: trailers,
	}, nil
}

func parseHeader(subject string) (Header, error) {
	m := headerPattern.FindStringSubmatch(subject)
	if m == nil {
		return Header{}, lhcerrors.Wrapf(lhcerrors.ErrInvalidCommitMessage, "%q does not match type(scope)!: summary", subject)
	}
	summary := strings.TrimSpace(m[4])
	if summary == "" {
		return Header{}, lhcerrors.Wrapf(lhcerrors.ErrInvalidCommitMessage, "%q has an empty summary", subject)
	}
	return Header{
		Type:     m[1],
		Scope:    m[2],
		Breaking: m[3] != "",
		Summary:  summary,
	}, nil
}

func parseTrailer(line string) (Trailer, bool) {
	m := trailerPattern.FindStringSubmatch(line)
	if m == nil {
		return Trailer{}, false
	}
	return Trailer{Key: m[1], Value: m[2]}, true
}

// IsBreaking reports whether the header carries "!" or a trailer announces a
// breaking change.
func (c *ConventionalCommit) IsBreaking() bool {
	if c.Header.Breaking {
		return true
	}
	return slices.ContainsFunc(c.Trailers, func(t Trailer) bool {
		return t.Key == BreakingChangeTrailer || t.Key == BreakingChangeTrailerHyphen
	})
}

// TrailerValues returns the values of every trailer with the given key, in order.
func (c *ConventionalCommit) TrailerValues(key string) []string {
	var values []string
	for _, t := range c.Trailers {
		if t.Key == key {
			values = append(values, t.Value)
		}
	}
	return values
}

// String renders the commit back into message form.
func (c *ConventionalCommit) String() string {
	var b strings.Builder
	b.WriteString(c.Header.Type)
	if c.Header.Scope != "" {
		b.WriteString("(" + c.Header.Scope + ")")
	}
	if c.IsBreaking() {
		b.WriteString("!")
	}
	b.WriteString(": " + c.Header.Summary)

	if c.Body != "" {
		b.WriteString("\n\n" + c.Body)
	}
	if len(c.Trailers) > 0 {
		b.WriteString("\n")
		for _, t := range c.Trailers {
			b.WriteString("\n" + t.Key + ": " + t.Value)
		}
	}
	return b.String()
}
