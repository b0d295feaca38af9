package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/unveil/pkg/adapters/analysis"
	"github.com/aretw0/unveil/pkg/gate"
)

// ErrAccessDenied is returned when the gate refuses the analysis.
var ErrAccessDenied = errors.New("analysis not allowed")

// AnalyzeOptions configures the analyze command.
type AnalyzeOptions struct {
	GlobalOptions
	BaseURL   string
	Token     string
	InputPath string
	JSON      bool
	Plain     bool
}

// Analyze gates the lease text like the page does, submits it and prints the findings.
// InputPath "-" or "" reads the text from in.
func Analyze(ctx context.Context, opts AnalyzeOptions, in io.Reader, out io.Writer) error {
	logger, err := createLogger(opts.LogLevel, false)
	if err != nil {
		return err
	}

	text, err := readInput(opts.InputPath, in)
	if err != nil {
		return err
	}

	client := analysis.New(opts.BaseURL, analysis.WithLogger(logger))

	var user *gate.User
	if opts.Token != "" {
		user, err = client.Me(ctx, opts.Token)
		switch {
		case errors.Is(err, analysis.ErrUnauthorized):
			logger.Warn("token rejected, continuing signed out")
			user = nil
		case err != nil:
			return err
		}
	}

	if decision := gate.EvaluateAnalyze(text, user); !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrAccessDenied, decision.Message)
	}

	report, err := client.Analyze(ctx, opts.Token, text)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	rendered, err := chooseRenderer(out, opts.Plain)(report.Markdown())
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func readInput(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read lease text: %w", err)
	}
	return string(data), nil
}
