package cli

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/lhc/internal/buildconfig"
	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/logging"
	"github.com/mrz1836/lhc/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Evaluate and check the .lhc build configuration",
		Long: `Work with the .lhc build configuration of the current repository.

The .lhc file assigns properties, optionally under [conditions], and may
reference other properties with $(name). Evaluation resolves every property
for a train and release channel.`,
	}

	cmd.AddCommand(newConfigEvalCmd(flags))
	cmd.AddCommand(newConfigCheckCmd(flags))
	cmd.AddCommand(newConfigShowCmd(flags))
	root.AddCommand(cmd)
}

// configEvalOptions holds flags specific to config eval.
type configEvalOptions struct {
	defines     []string
	includeEnv  []string
	parent      []string
	inheritEnv  []string
	typedValues bool
	allTrains   bool
	outputFile  string
}

func newConfigEvalCmd(flags *GlobalFlags) *cobra.Command {
	opts := &configEvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate the build configuration",
		Long: `Evaluate the build configuration and print every defined property.

Initial values are applied in order: environment variables matching an
--include-env glob, defines from the settings file, then -D defines.

$(inherited) expands to the parent scope: environment variables matching an
--inherit-env glob, then --parent defines. Without either, a configuration
that uses $(inherited) fails.

Examples:
  lhc config eval --train ios
  lhc config eval -D CONFIGURATION=Release -o json --typed-values
  lhc config eval -e 'CI_*' -o yaml
  lhc config eval --inherit-env 'OTHER_*' -P SWIFT_FLAGS=-DDEBUG
  lhc config eval --all-trains -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceStructuredErrors(cmd, runConfigEval(cmd, flags, opts))
		},
	}

	cmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, "define a property before evaluation (KEY=VALUE, or KEY for YES)")
	cmd.Flags().StringArrayVarP(&opts.includeEnv, "include-env", "e", nil, "include environment variables whose names match the glob")
	cmd.Flags().StringArrayVarP(&opts.parent, "parent", "P", nil, "define a parent scope value for $(inherited) (KEY=VALUE)")
	cmd.Flags().StringArrayVar(&opts.inheritEnv, "inherit-env", nil, "use environment variables whose names match the glob as the parent scope")
	cmd.Flags().BoolVar(&opts.typedValues, "typed-values", false, "export booleans, numbers, lists and maps as typed values")
	cmd.Flags().BoolVar(&opts.allTrains, "all-trains", false, "evaluate every train listed in the trains property")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "write the result to a file instead of stdout")

	return cmd
}

func runConfigEval(cmd *cobra.Command, flags *GlobalFlags, opts *configEvalOptions) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	if err := env.ec.RequireBuildConfig(); err != nil {
		return env.fail(err)
	}

	initial, err := includedEnv(os.Environ(), opts.includeEnv)
	if err != nil {
		return err
	}
	defines, err := env.ec.Defines(opts.defines...)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}
	for p, s := range defines {
		initial[p] = s
	}

	evalOpts, err := parentScope(os.Environ(), opts.inheritEnv, opts.parent)
	if err != nil {
		return err
	}

	env.logger.Debug().
		Interface("defines", logging.RedactMap(initial.Strings())).
		Str("train", env.ec.Settings.Train).
		Str("channel", env.ec.Settings.Channel).
		Msg("evaluating build configuration")

	typed := env.ec.Settings.Output.TypedValues
	if cmd.Flags().Changed("typed-values") {
		typed = opts.typedValues
	}

	out := env.out
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile) //#nosec G304 -- path chosen by the user
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.outputFile, err)
		}
		defer func() { _ = f.Close() }()
		if out, err = tui.NewOutput(f, env.ec.Format()); err != nil {
			return err
		}
	}

	if opts.allTrains {
		results, err := evalAllTrains(env.ec, initial, typed, evalOpts...)
		if err != nil {
			return env.fail(err)
		}
		if env.structured() {
			return out.Value(results)
		}
		trains := make([]string, 0, len(results))
		for train := range results {
			trains = append(trains, train)
		}
		slices.Sort(trains)
		blocks := make([]string, 0, len(trains))
		for _, train := range trains {
			blocks = append(blocks, "["+train+"]\n"+textValues(results[train]))
		}
		return out.Value(strings.Join(blocks, "\n\n"))
	}

	values, err := env.ec.Evaluate(env.ec.Settings.Train, initial, evalOpts...)
	if err != nil {
		return env.fail(err)
	}
	exported := buildconfig.NativeMap(buildconfig.Export(values, typed))
	if env.structured() {
		return out.Value(exported)
	}
	return out.Value(textValues(exported))
}

// evalAllTrains evaluates the configuration once to read the trains list,
// then evaluates each train concurrently.
func evalAllTrains(ec *ExecutionContext, initial buildconfig.Defines, typed bool,
	evalOpts ...buildconfig.EvalOption,
) (map[string]map[string]any, error) {
	base, err := ec.Evaluate(ec.Settings.Train, initial,
		append(slices.Clone(evalOpts), buildconfig.WithRequired(buildconfig.TrainsProperty))...)
	if err != nil {
		return nil, err
	}
	opts, err := buildconfig.DecodeOptions(base)
	if err != nil {
		return nil, err
	}
	if len(opts.Trains) == 0 {
		return nil, &buildconfig.NoDefaultValueError{Property: buildconfig.TrainsProperty}
	}

	var (
		mu      sync.Mutex
		results = make(map[string]map[string]any, len(opts.Trains))
		g       errgroup.Group
	)
	for _, train := range opts.Trains {
		g.Go(func() error {
			values, err := ec.Evaluate(train, initial, evalOpts...)
			if err != nil {
				return fmt.Errorf("train %s: %w", train, err)
			}
			exported := buildconfig.NativeMap(buildconfig.Export(values, typed))
			mu.Lock()
			results[train] = exported
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// includedEnv returns the environment variables whose names match any glob.
// Names that are not valid property names are skipped.
func includedEnv(environ, globs []string) (buildconfig.Defines, error) {
	d := buildconfig.Defines{}
	if len(globs) == 0 {
		return d, nil
	}
	for _, g := range globs {
		if _, err := path.Match(g, ""); err != nil {
			return nil, errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument, "bad --include-env glob %q", g))
		}
	}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !buildconfig.IsValidProperty(key) {
			continue
		}
		for _, g := range globs {
			if matched, _ := path.Match(g, key); matched {
				d.Set(buildconfig.Property(key), value)
				break
			}
		}
	}
	return d, nil
}

// parentScope builds the $(inherited) scope from environment variables
// matching inheritEnv and KEY=VALUE parent defines. With neither it returns
// no options, leaving $(inherited) unavailable.
func parentScope(environ, inheritEnv, parent []string) ([]buildconfig.EvalOption, error) {
	if len(inheritEnv) == 0 && len(parent) == 0 {
		return nil, nil
	}
	scope, err := includedEnv(environ, inheritEnv)
	if err != nil {
		return nil, err
	}
	if err := scope.Define(parent...); err != nil {
		return nil, errors.NewExitCode2Error(errors.Wrap(err, "--parent"))
	}
	return []buildconfig.EvalOption{buildconfig.WithParent(buildconfig.ParentDefines(scope))}, nil
}

// textValues renders KEY=value lines sorted by key.
func textValues(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%v", k, values[k]))
	}
	return strings.Join(lines, "\n")
}

func newConfigCheckCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the build configuration parses",
		Long: `Parse the .lhc file without evaluating it and report what it defines.

Examples:
  lhc config check
  lhc config check --config path/to/.lhc -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceStructuredErrors(cmd, runConfigCheck(cmd, flags))
		},
	}
}

// configCheckResult is the structured result of config check.
type configCheckResult struct {
	Path       string   `json:"path" yaml:"path"`
	Valid      bool     `json:"valid" yaml:"valid"`
	Elements   int      `json:"elements" yaml:"elements"`
	Properties []string `json:"properties" yaml:"properties"`
}

func runConfigCheck(cmd *cobra.Command, flags *GlobalFlags) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	if err := env.ec.RequireBuildConfig(); err != nil {
		return env.fail(err)
	}

	cfg := env.ec.BuildConfig
	props := make([]string, 0, len(cfg.Properties()))
	for _, p := range cfg.Properties() {
		props = append(props, string(p))
	}

	if env.structured() {
		return env.out.Value(configCheckResult{
			Path:       env.ec.BuildConfigPath,
			Valid:      true,
			Elements:   len(cfg.Elements()),
			Properties: props,
		})
	}
	env.out.Success(fmt.Sprintf("%s: %d assignments to %d properties",
		env.ec.BuildConfigPath, len(cfg.Elements()), len(props)))
	return nil
}

func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective tool settings",
		Long: `Display the effective lhc settings after merging defaults, ~/.lhc/config.yaml,
.lhc.d/config.yaml, LHC_* environment variables and flags.

Defines that look like secrets are masked.

Examples:
  lhc config show
  lhc config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newCommandEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer env.cancel()

			settings := *env.ec.Settings
			settings.Defines = maskDefines(settings.Defines)

			if env.structured() {
				return env.out.Value(settings)
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to encode settings: %w", err)
			}
			return env.out.Value(strings.TrimRight(string(data), "\n"))
		},
	}
}

// maskDefines redacts the values of KEY=VALUE pairs that look sensitive.
func maskDefines(defines []string) []string {
	masked := make([]string, 0, len(defines))
	for _, d := range defines {
		key, value, found := strings.Cut(d, "=")
		if !found {
			masked = append(masked, d)
			continue
		}
		masked = append(masked, key+"="+logging.RedactIfSensitive(key, value))
	}
	return masked
}
