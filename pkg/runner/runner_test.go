package runner_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(t *testing.T, mutate func(*config.Config)) *unveil.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.DwellThreshold = time.Hour
	cfg.CascadeDelays = []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}
	if mutate != nil {
		mutate(&cfg)
	}
	eng, err := unveil.New(unveil.WithConfig(cfg))
	require.NoError(t, err)
	return eng
}

// recorder collects decisions that revealed something.
type recorder struct {
	mu  sync.Mutex
	ch  chan runner.Decision
	all []runner.Decision
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan runner.Decision, 32)}
}

func (r *recorder) Output(_ context.Context, d runner.Decision) error {
	r.mu.Lock()
	r.all = append(r.all, d)
	r.mu.Unlock()
	if len(d.Revealed) > 0 {
		r.ch <- d
	}
	return nil
}

func (r *recorder) next(t *testing.T) runner.Decision {
	t.Helper()
	select {
	case d := <-r.ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a decision")
		return runner.Decision{}
	}
}

func start(t *testing.T, r *runner.Runner) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	return cancel, errc
}

func TestRunner_CascadeFiresWithoutSignals(t *testing.T) {
	rec := newRecorder()
	r := runner.New(newEngine(t, nil), runner.WithHandler(rec), runner.WithViewID("view-1"))
	cancel, errc := start(t, r)
	defer cancel()

	ctx := context.Background()
	require.NoError(t, r.Send(ctx, domain.Signal{Type: domain.SignalAction}))
	require.NoError(t, r.Send(ctx, domain.Signal{Type: domain.SignalReveal, Item: domain.ItemEscapeWindow}))

	d := rec.next(t)
	assert.Equal(t, "action", d.Cause)
	assert.Equal(t, []string{domain.ItemHeadline}, d.Revealed)
	require.NotNil(t, d.Diff)
	require.NotNil(t, d.Diff.PanelSuppressed)
	assert.True(t, *d.Diff.PanelSuppressed)

	d = rec.next(t)
	assert.Equal(t, "reveal", d.Cause)
	assert.Equal(t, []string{domain.ItemEscapeWindow}, d.Revealed)
	assert.NotEmpty(t, d.Diff.Pending, "second reveal schedules the cascade")

	d = rec.next(t)
	assert.Equal(t, runner.CauseCascade, d.Cause)
	assert.Equal(t, []string{domain.ItemRecentering}, d.Revealed)

	d = rec.next(t)
	assert.Equal(t, runner.CauseCascade, d.Cause)
	assert.Equal(t, []string{domain.ItemActionTranslation}, d.Revealed)
	assert.GreaterOrEqual(t, d.Elapsed, 100*time.Millisecond)

	r.Close()
	require.NoError(t, <-errc)

	s := r.State()
	assert.Equal(t, "view-1", s.ViewID)
	assert.Equal(t, []string{
		domain.ItemHeadline, domain.ItemEscapeWindow, domain.ItemRecentering, domain.ItemActionTranslation,
	}, s.Revealed)
	assert.Empty(t, s.Pending)
}

func TestRunner_CloseDropsPendingCascade(t *testing.T) {
	eng := newEngine(t, func(c *config.Config) {
		c.CascadeDelays = []time.Duration{time.Hour, time.Hour}
	})
	rec := newRecorder()
	r := runner.New(eng, runner.WithHandler(rec), runner.WithBufferSize(0))
	cancel, errc := start(t, r)
	defer cancel()

	ctx := context.Background()
	require.NoError(t, r.Send(ctx, domain.Signal{Type: domain.SignalAction}))
	require.NoError(t, r.Send(ctx, domain.Signal{Type: domain.SignalReveal, Item: domain.ItemEscapeWindow}))
	rec.next(t)
	rec.next(t)

	r.Close()
	require.NoError(t, <-errc)

	s := r.State()
	assert.False(t, s.IsRevealed(domain.ItemRecentering))
	assert.NotEmpty(t, s.Pending)
	assert.ErrorIs(t, r.Send(ctx, domain.Signal{Type: domain.SignalTick}), runner.ErrClosed)
}

func TestRunner_ContextCancel(t *testing.T) {
	r := runner.New(newEngine(t, nil))
	cancel, errc := start(t, r)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestRunner_UnknownSignalIsSkipped(t *testing.T) {
	rec := newRecorder()
	r := runner.New(newEngine(t, nil), runner.WithHandler(rec))
	cancel, errc := start(t, r)
	defer cancel()

	ctx := context.Background()
	require.NoError(t, r.Send(ctx, domain.Signal{Type: "wiggle"}))
	require.NoError(t, r.Send(ctx, domain.Signal{Type: domain.SignalAction}))

	d := rec.next(t)
	assert.Equal(t, []string{domain.ItemHeadline}, d.Revealed)

	r.Close()
	require.NoError(t, <-errc)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.all)
	assert.Equal(t, runner.CauseOpen, rec.all[0].Cause)
	for _, d := range rec.all {
		assert.NotEqual(t, "wiggle", d.Cause)
	}
}

func TestRunner_TickRevealsOnDwell(t *testing.T) {
	eng := newEngine(t, func(c *config.Config) {
		c.DwellThreshold = 10 * time.Millisecond
		c.CascadeDelays = []time.Duration{time.Hour, time.Hour}
	})
	rec := newRecorder()
	r := runner.New(eng, runner.WithHandler(rec), runner.WithTickInterval(5*time.Millisecond))
	cancel, errc := start(t, r)
	defer cancel()

	require.NoError(t, r.Send(context.Background(), domain.Signal{Type: domain.SignalAction}))
	assert.Equal(t, []string{domain.ItemHeadline}, rec.next(t).Revealed)

	d := rec.next(t)
	assert.Equal(t, string(domain.SignalTick), d.Cause)
	assert.Equal(t, []string{domain.ItemEscapeWindow}, d.Revealed)

	r.Close()
	require.NoError(t, <-errc)
}

func TestRunner_ResumesInitialState(t *testing.T) {
	eng := newEngine(t, nil)
	initial := eng.Start(context.Background(), "resumed")
	eng.HandleExplicitAction(context.Background(), initial)

	rec := newRecorder()
	r := runner.New(eng, runner.WithHandler(rec), runner.WithInitialState(initial))
	cancel, errc := start(t, r)
	defer cancel()

	require.NoError(t, r.Send(context.Background(), domain.Signal{Type: domain.SignalScroll, Delta: -350}))
	d := rec.next(t)
	assert.Equal(t, "resumed", d.ViewID)
	assert.Equal(t, []string{domain.ItemEscapeWindow}, d.Revealed)

	r.Close()
	require.NoError(t, <-errc)
	assert.Equal(t, []string{domain.ItemHeadline}, initial.Revealed, "the caller's state is not mutated")
}

func TestFeed_TextScript(t *testing.T) {
	eng := newEngine(t, func(c *config.Config) {
		c.CascadeDelays = []time.Duration{time.Hour, time.Hour}
	})
	var out bytes.Buffer
	r := runner.New(eng, runner.WithHandler(runner.NewTextHandler(&out)))

	script := strings.Join([]string{
		"# open the page",
		"action",
		"",
		"scroll abc",
		"dance",
		"s 120",
		"s 200",
	}, "\n")

	feedErr := make(chan error, 1)
	go func() { feedErr <- runner.Feed(context.Background(), r, strings.NewReader(script), runner.ParseText) }()

	require.NoError(t, r.Run(context.Background()))
	require.NoError(t, <-feedErr)

	assert.Equal(t, []string{domain.ItemHeadline, domain.ItemEscapeWindow}, r.State().Revealed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "action")
	assert.Contains(t, lines[0], domain.ItemHeadline)
	assert.Contains(t, lines[1], "scroll")
	assert.Contains(t, lines[1], domain.ItemEscapeWindow)
}

func TestFeed_JSONLines(t *testing.T) {
	var out bytes.Buffer
	r := runner.New(newEngine(t, func(c *config.Config) {
		c.CascadeDelays = []time.Duration{time.Hour, time.Hour}
	}), runner.WithHandler(runner.NewJSONHandler(&out)))

	script := `{"type":"action"}
"reveal core-logic"
{"delta":5}
`
	go func() { _ = runner.Feed(context.Background(), r, strings.NewReader(script), runner.ParseJSON) }()
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{domain.ItemHeadline, domain.ItemCoreLogic}, r.State().Revealed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, "open, action and reveal decisions")
	assert.Contains(t, lines[0], `"cause":"open"`)
	assert.Contains(t, lines[1], `"revealed":["headline"]`)
	assert.Contains(t, lines[2], `"appended":["core-logic"]`)
}
