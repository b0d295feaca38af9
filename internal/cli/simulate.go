package cli

import (
	"context"
	"io"
	"strings"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/internal/presentation/tui"
	"github.com/aretw0/unveil/internal/simulation"
	"github.com/aretw0/unveil/pkg/observability"
	"github.com/aretw0/unveil/pkg/runner"
)

// SimulateOptions configures the simulate command.
type SimulateOptions struct {
	GlobalOptions
	ScriptPath string
	JSON       bool
}

// Simulate replays a script on a virtual clock and prints the reveal timeline.
func Simulate(ctx context.Context, opts SimulateOptions, out io.Writer) error {
	logger, err := createLogger(opts.LogLevel, false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	script, err := simulation.LoadScript(opts.ScriptPath)
	if err != nil {
		return err
	}

	engineOpts := []unveil.Option{unveil.WithLogger(logger)}
	if opts.Debug {
		engineOpts = append(engineOpts, unveil.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	res, err := simulation.Run(ctx, cfg, script, simulation.WithEngineOptions(engineOpts...))
	if err != nil {
		return err
	}

	var handler runner.Handler = runner.NewTextHandler(out, runner.WithFormatter(tui.TimelineFormatter(out)))
	if opts.JSON {
		handler = runner.NewJSONHandler(out)
	}
	for _, d := range res.Decisions {
		if err := handler.Output(ctx, d); err != nil {
			return err
		}
	}
	if opts.JSON {
		return nil
	}

	printSystemMessage(out, "%d of %d items revealed.", len(res.State.Revealed), len(cfg.Items))
	if len(res.State.Pending) > 0 {
		pending := make([]string, len(res.State.Pending))
		for i, t := range res.State.Pending {
			pending[i] = t.ItemID
		}
		printSystemMessage(out, "Dropped with the view: %s.", strings.Join(pending, ", "))
	}
	return nil
}
