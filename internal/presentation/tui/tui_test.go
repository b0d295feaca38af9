package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/unveil/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(40)
	out, err := render("## Escape window\n\nCancel before the date.")
	require.NoError(t, err)
	assert.Contains(t, out, "Escape window")
	assert.Contains(t, out, "Cancel before the date.")
}

func TestPlain(t *testing.T) {
	out, err := Plain("# title")
	require.NoError(t, err)
	assert.Equal(t, "# title\n", out)
}

func TestTimelineFormatter_NoColorMatchesPlain(t *testing.T) {
	var buf bytes.Buffer
	d := runner.Decision{Elapsed: 1500 * time.Millisecond, Cause: runner.CauseCascade, Revealed: []string{"recentering"}}

	// A bytes.Buffer is not a terminal, so the profile is Ascii.
	assert.Equal(t, runner.FormatPlain(d), TimelineFormatter(&buf)(d))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Equal(t, 7, strings.Count(buf.String(), "\n"))
}
