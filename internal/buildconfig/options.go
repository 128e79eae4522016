package buildconfig

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// Well-known properties seeded by callers before evaluation.
const (
	TrainProperty   Property = "train"
	ChannelProperty Property = "channel"
	// TrainsProperty lists every train, as a JSON list or comma-separated.
	TrainsProperty Property = "trains"
)

// BranchLintMode controls whether branch names must carry a project ID.
type BranchLintMode string

// Branch lint modes.
const (
	BranchLintNever            BranchLintMode = "never"
	BranchLintAlways           BranchLintMode = "always"
	BranchLintCommitsMustMatch BranchLintMode = "commitsMustMatch"
)

// ParseBranchLintMode maps a raw setting to a mode. Unknown values mean never.
func ParseBranchLintMode(s string) BranchLintMode {
	switch s {
	case "always", "YES", "true":
		return BranchLintAlways
	case "commitsMustMatch":
		return BranchLintCommitsMustMatch
	default:
		return BranchLintNever
	}
}

// Options is the typed view of the properties lhc itself understands.
// Unset keys keep their zero value.
type Options struct {
	Train                      string            `mapstructure:"train"`
	Channel                    string            `mapstructure:"channel"`
	TrainDisplayName           string            `mapstructure:"human_train"`
	TagPrefix                  string            `mapstructure:"tag_prefix"`
	Trains                     []string          `mapstructure:"trains"`
	ProjectIDPrefix            string            `mapstructure:"project_id_prefix"`
	ProjectIDTrailer           string            `mapstructure:"project_id_trailer"`
	SubjectMaxLength           int               `mapstructure:"commit_subject_maxlength"`
	BodyMaxLength              int               `mapstructure:"commit_body_maxlength"`
	ProjectIDRegexes           []string          `mapstructure:"project_id_regexes"`
	LintBranchNames            BranchLintMode    `mapstructure:"lint_branch_names"`
	CommitCategories           []string          `mapstructure:"commit_categories"`
	CategoryIncrements         map[string]string `mapstructure:"categories_increment"`
	ChangelogExcludeCategories []string          `mapstructure:"changelog_exclude_categories"`
	CategoryDisplayNames       []string          `mapstructure:"human_commit_categories"`
	AttrsRef                   string            `mapstructure:"attrs_ref"`
	ChecklistRefRoot           string            `mapstructure:"checklist_ref_root"`
	ChecklistDir               string            `mapstructure:"checklist_dir"`
	TemplatesDir               string            `mapstructure:"templates_dir"`
}

// ChecklistRefRootWithSlash returns ChecklistRefRoot with exactly one trailing slash,
// or "" when unset.
func (o *Options) ChecklistRefRootWithSlash() string {
	if o.ChecklistRefRoot == "" {
		return ""
	}
	return strings.TrimRight(o.ChecklistRefRoot, "/") + "/"
}

// DisplayName returns the human name configured for a commit category,
// falling back to the category itself. Names are matched to categories by
// position and are ignored unless both lists have the same length.
func (o *Options) DisplayName(category string) string {
	if len(o.CategoryDisplayNames) != len(o.CommitCategories) {
		return category
	}
	for i, c := range o.CommitCategories {
		if c == category && o.CategoryDisplayNames[i] != "" {
			return o.CategoryDisplayNames[i]
		}
	}
	return category
}

// IsExcludedFromChangelog reports whether a category is hidden from release notes.
func (o *Options) IsExcludedFromChangelog(category string) bool {
	return slices.Contains(o.ChangelogExcludeCategories, category)
}

// DecodeOptions builds Options from resolved Defines. Values are coerced as
// for typed export, so list and map keys must hold JSON; a single scalar is
// accepted where a list is expected.
func DecodeOptions(d Defines) (*Options, error) {
	var opts Options

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       branchLintModeHook,
		WeaklyTypedInput: true,
		Result:           &opts,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, lhcerrors.Wrap(lhcerrors.ErrInvalidOptions, err.Error())
	}

	if err := decoder.Decode(NativeMap(Export(d, true))); err != nil {
		return nil, lhcerrors.Wrap(lhcerrors.ErrInvalidOptions, err.Error())
	}

	return &opts, nil
}

func branchLintModeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(BranchLintMode("")) {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		if v {
			return BranchLintAlways, nil
		}
		return BranchLintNever, nil
	case string:
		return ParseBranchLintMode(v), nil
	default:
		return BranchLintNever, nil
	}
}

// EvalFor evaluates the configuration for a build train and release channel.
// Non-empty train and channel override the corresponding entries of defines.
func (c *Configuration) EvalFor(train, channel string, defines Defines, opts ...EvalOption) (Defines, error) {
	initial := defines.Clone()
	if train != "" {
		initial.Set(TrainProperty, train)
	}
	if channel != "" {
		initial.Set(ChannelProperty, channel)
	}
	return c.Eval(initial, opts...)
}
