package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/internal/presentation/tui"
	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	GlobalOptions
	ViewID      string
	JSON        bool
	Quiet       bool
	Plain       bool
	Tick        time.Duration
	ContentPath string
}

// RunSession drives one view in real time from signals read on in.
// It returns when in is exhausted or ctx is cancelled.
func RunSession(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	logger, err := createLogger(opts.LogLevel, false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	engine, err := createEngine(cfg, logger, opts.Debug)
	if err != nil {
		return err
	}

	var handler runner.Handler
	decode := runner.ParseText
	if opts.JSON {
		handler = runner.NewJSONHandler(out)
		decode = runner.ParseJSON
	} else {
		handler = runner.NewTextHandler(out, runner.WithFormatter(tui.TimelineFormatter(out)))
		if opts.ContentPath != "" {
			c, err := loadContent(opts.ContentPath)
			if err != nil {
				return err
			}
			handler = &contentHandler{
				next:     handler,
				resolved: engine.Resolve(c),
				render:   chooseRenderer(out, opts.Plain),
				w:        out,
			}
		}
		if !opts.Quiet {
			tui.PrintBanner(out)
			printSystemMessage(out, "unveil %s: type action, scroll <px>, tick or reveal <item>. Ctrl+D ends the view.", unveil.Version)
		}
	}

	r := runner.New(engine,
		runner.WithHandler(handler),
		runner.WithLogger(logger),
		runner.WithViewID(opts.ViewID),
		runner.WithTickInterval(opts.Tick),
	)

	go func() {
		if err := runner.Feed(ctx, r, in, decode); err != nil && !isInterrupted(err) {
			logger.Error("input failed", "err", err)
		}
	}()

	err = r.Run(ctx)
	if s := r.State(); s != nil && !opts.JSON && !opts.Quiet {
		printSystemMessage(out, "View '%s' closed with %d of %d items revealed.", s.ViewID, len(s.Revealed), len(cfg.Items))
	}
	return handleExecutionError(err)
}

// contentHandler renders the copy of revealed items below each timeline line.
type contentHandler struct {
	next     runner.Handler
	resolved content.Resolved
	render   func(string) (string, error)
	w        io.Writer
}

func (h *contentHandler) Output(ctx context.Context, d runner.Decision) error {
	if err := h.next.Output(ctx, d); err != nil {
		return err
	}
	md := h.resolved.Markdown(d.Revealed)
	if md == "" {
		return nil
	}
	rendered, err := h.render(md)
	if err != nil {
		rendered = md + "\n"
	}
	_, err = fmt.Fprint(h.w, rendered)
	return err
}

// loadContent reads a content object (JSON) from path.
// A file that is not a JSON object yields empty content, so every item shows its fallback.
func loadContent(path string) (content.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return content.Content{}, fmt.Errorf("failed to read content: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	return content.Decode(raw), nil
}

// chooseRenderer uses glamour only when writing to a terminal.
func chooseRenderer(out io.Writer, plain bool) func(string) (string, error) {
	if f, ok := out.(*os.File); ok && !plain {
		return tui.RendererFor(f)
	}
	return tui.Plain
}
