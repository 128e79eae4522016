package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/tui"
)

// commandEnv is what every repository command needs: a resolved execution
// context, a context bounded by the configured timeout, and an output.
type commandEnv struct {
	ctx    context.Context //nolint:containedctx // scoped to one command invocation
	cancel context.CancelFunc
	ec     *ExecutionContext
	out    tui.Output
	w      io.Writer
	logger zerolog.Logger
}

// newCommandEnv resolves the execution context for cmd. Callers must call
// cancel when done.
func newCommandEnv(cmd *cobra.Command, flags *GlobalFlags) (*commandEnv, error) {
	logger := GetLogger().With().Str("command", cmd.Name()).Logger()

	ec, err := ResolveExecutionContext(cmd.Context(), flags, logger)
	if err != nil {
		return nil, err
	}

	out, err := tui.NewOutput(cmd.OutOrStdout(), ec.Format())
	if err != nil {
		return nil, errors.NewExitCode2Error(errors.Wrap(errors.ErrInvalidOutputFormat, err.Error()))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), ec.Settings.Timeout)
	return &commandEnv{
		ctx:    ctx,
		cancel: cancel,
		ec:     ec,
		out:    out,
		w:      cmd.OutOrStdout(),
		logger: logger,
	}, nil
}

// structured reports whether output is JSON or YAML.
func (e *commandEnv) structured() bool {
	f := e.ec.Format()
	return f == OutputJSON || f == OutputYAML
}

// fail reports err through the output when it is structured, and returns
// ErrJSONErrorOutput so cobra does not print it a second time.
func (e *commandEnv) fail(err error) error {
	if err == nil || !e.structured() {
		return err
	}
	e.out.Error(err)
	return stderrors.Join(errors.ErrJSONErrorOutput, err)
}

// silenceStructuredErrors stops cobra from printing errors that were already
// written as JSON or YAML.
func silenceStructuredErrors(cmd *cobra.Command, err error) error {
	if stderrors.Is(err, errors.ErrJSONErrorOutput) {
		cmd.SilenceErrors = true
	}
	return err
}
