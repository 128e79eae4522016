package release

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/lhc/internal/buildconfig"
	"github.com/mrz1836/lhc/internal/history"
)

// String renders a change as a release note line:
// "- <hash8>: <summary> [ID] [ID]".
func (c Change) String() string {
	var b strings.Builder
	b.WriteString("- ")
	if c.CommitHash != "" {
		b.WriteString(history.ObjectID(c.CommitHash).Short() + ": ")
	}
	b.WriteString(c.Summary)
	for _, id := range c.ProjectIDs {
		b.WriteString(" [" + id + "]")
	}
	return b.String()
}

// DescribeOption configures Describe.
type DescribeOption func(*describeConfig)

type describeConfig struct {
	titleCase bool
}

// WithTitleCasedCategories title-cases category headings that have no
// configured display name.
func WithTitleCasedCategories() DescribeOption {
	return func(c *describeConfig) {
		c.titleCase = true
	}
}

// Describe renders the release as markdown notes. Categories excluded from
// the changelog are left out and configured display names replace the
// category keys.
func (r *Release) Describe(opts *buildconfig.Options, dopts ...DescribeOption) string {
	var cfg describeConfig
	for _, o := range dopts {
		o(&cfg)
	}
	if opts == nil {
		opts = &buildconfig.Options{}
	}
	caser := cases.Title(language.English)

	var b strings.Builder
	train := r.Train
	if train == "" {
		train = "Version"
	}
	b.WriteString("# " + train + " " + r.Version.String())
	if !r.IsTagged() {
		b.WriteString(" (Not Tagged)")
	}
	b.WriteString(":\n\n")

	if r.Body != "" {
		b.WriteString(r.Body + "\n\n")
	}

	for _, category := range r.Categories {
		if opts.IsExcludedFromChangelog(category) {
			continue
		}
		heading := opts.DisplayName(category)
		if heading == category && cfg.titleCase {
			heading = caser.String(category)
		}

		b.WriteString("## " + heading + ":\n")
		lines := make([]string, 0, len(r.Changes[category]))
		for _, ch := range r.Changes[category] {
			lines = append(lines, ch.String())
		}
		b.WriteString(strings.Join(lines, "\n") + "\n")
	}

	return strings.Trim(b.String(), "\n")
}

// Document is the serialisable form of a Release.
type Document struct {
	Version      string              `json:"version" yaml:"version"`
	ShortVersion string              `json:"shortVersion" yaml:"shortVersion"`
	Train        string              `json:"train,omitempty" yaml:"train,omitempty"`
	TagName      string              `json:"tag_name,omitempty" yaml:"tag_name,omitempty"`
	ObjectHash   string              `json:"object_hash,omitempty" yaml:"object_hash,omitempty"`
	Changes      map[string][]Change `json:"changes" yaml:"changes"`
	Changelog    string              `json:"changelog,omitempty" yaml:"changelog,omitempty"`
	Channel      Channel             `json:"channel" yaml:"channel"`
	TagTrailers  map[string]string   `json:"tag_trailers,omitempty" yaml:"tag_trailers,omitempty"`
}

// Document returns the serialisable form of r. Excluded categories are
// dropped from Changes when opts is non-nil.
func (r *Release) Document(opts *buildconfig.Options) Document {
	doc := Document{
		Version:      r.Version.String(),
		ShortVersion: ShortVersion(r.Version).String(),
		Train:        r.Train,
		TagName:      r.TagName,
		ObjectHash:   r.ObjectHash.String(),
		Changes:      make(map[string][]Change, len(r.Changes)),
		Changelog:    r.Body,
		Channel:      r.Channel(),
	}
	for cat, changes := range r.Changes {
		if opts != nil && opts.IsExcludedFromChangelog(cat) {
			continue
		}
		doc.Changes[cat] = changes
	}
	if len(r.Trailers) > 0 {
		doc.TagTrailers = make(map[string]string, len(r.Trailers))
		for _, t := range r.Trailers {
			doc.TagTrailers[t.Key] = t.Value
		}
	}
	return doc
}
