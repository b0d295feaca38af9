package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/unveil/pkg/domain"
)

// Decoder turns one input line into a signal.
type Decoder func(line string) (domain.Signal, error)

// Feed reads r line by line, decodes each non-blank line and queues it on the runner.
// Lines that fail sanitization or decoding are logged and skipped. The runner is closed
// when r is exhausted, so Run returns after the last signal is applied.
func Feed(ctx context.Context, rn *Runner, r io.Reader, decode Decoder) error {
	defer rn.Close()

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line, err := SanitizeInput(scanner.Text())
		if err != nil {
			rn.logger.Warn("input rejected", "err", err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sig, err := decode(line)
		if err != nil {
			rn.logger.Warn("input ignored", "line", line, "err", err)
			continue
		}
		if err := rn.Send(ctx, sig); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read signals: %w", err)
	}
	return nil
}
