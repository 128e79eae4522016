package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/lhc/internal/errors"
)

// reachableResult is the structured result of the reachable command.
type reachableResult struct {
	Target    string `json:"target" yaml:"target"`
	From      string `json:"from" yaml:"from"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
}

// AddReachableCommand adds the reachable command to the root command.
func AddReachableCommand(root *cobra.Command, flags *GlobalFlags) {
	var from string

	cmd := &cobra.Command{
		Use:   "reachable TARGET",
		Short: "Check whether a commit is an ancestor of another",
		Long: `Check whether TARGET is --from or one of its ancestors.

Exits 0 when TARGET is reachable and 1 when it is not, so the command can
guard scripts:

  lhc reachable v1.2.0 && echo "v1.2.0 is included"

Examples:
  lhc reachable v1.2.0
  lhc reachable 1a2b3c4d --from origin/main -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runReachable(cmd, flags, args[0], from)
			if stderrors.Is(err, errors.ErrNotReachable) {
				cmd.SilenceErrors = true
			}
			return silenceStructuredErrors(cmd, err)
		},
	}

	cmd.Flags().StringVar(&from, "from", "HEAD", "leaf reference to search from")

	root.AddCommand(cmd)
}

func runReachable(cmd *cobra.Command, flags *GlobalFlags, target, from string) error {
	env, err := newCommandEnv(cmd, flags)
	if err != nil {
		return err
	}
	defer env.cancel()

	acc := env.ec.Accessor
	targetID, err := acc.Resolve(env.ctx, target)
	if err != nil {
		return env.fail(err)
	}
	leafID, err := acc.Resolve(env.ctx, from)
	if err != nil {
		return env.fail(err)
	}

	reachable, err := env.ec.Traverser.IsReachable(env.ctx, targetID, leafID)
	if err != nil {
		return env.fail(err)
	}

	if env.structured() {
		if err := env.out.Value(reachableResult{Target: targetID.String(), From: leafID.String(), Reachable: reachable}); err != nil {
			return err
		}
	} else if reachable {
		env.out.Success(fmt.Sprintf("%s is reachable from %s", target, from))
	} else {
		env.out.Error(fmt.Errorf("%s is not reachable from %s", target, from))
	}

	if !reachable {
		return errors.Wrapf(errors.ErrNotReachable, "%s from %s", target, from)
	}
	return nil
}
