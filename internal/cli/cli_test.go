package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/unveil/pkg/adapters/redis"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestPrintConfig_RoundTrips(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintConfig(GlobalOptions{}, &out))

	cfg, err := config.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Contains(t, out.String(), "dwell_threshold: 1s")
}

func TestPrintConfig_BadFile(t *testing.T) {
	path := writeFile(t, "unveil.yaml", "scroll_threshold: -1\n")
	err := PrintConfig(GlobalOptions{ConfigPath: path}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scroll_threshold")
}

func TestPrintGraph(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintGraph(GlobalOptions{}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "graph TD\n"))
}

func TestSimulate_Timeline(t *testing.T) {
	script := writeFile(t, "view.yaml", `
view: demo
steps:
  - at: 0s
    type: action
  - at: 100ms
    type: reveal
    item: escape-window
`)
	var out bytes.Buffer
	require.NoError(t, Simulate(context.Background(), SimulateOptions{ScriptPath: script}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "headline")
	assert.Contains(t, lines[2], "+600ms")
	assert.Contains(t, lines[2], "recentering")
	assert.Contains(t, lines[3], "+1.1s")
	assert.Contains(t, lines[3], "action-translation")
	assert.Equal(t, ">>> 4 of 6 items revealed.", lines[4])
}

func TestSimulate_JSON(t *testing.T) {
	script := writeFile(t, "view.yaml", "steps:\n  - at: 0s\n    type: action\n")
	var out bytes.Buffer
	require.NoError(t, Simulate(context.Background(), SimulateOptions{ScriptPath: script, JSON: true}, &out))

	var d map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &d))
	assert.Equal(t, "action", d["cause"])
}

func TestRender_AppliesFallbacks(t *testing.T) {
	path := writeFile(t, "content.json", `{"headline": "You can leave until March 1.", "user_actions": ["", "Set a reminder"]}`)

	var out bytes.Buffer
	err := Render(RenderOptions{
		ContentPath: path,
		Items:       []string{domain.ItemHeadline, domain.ItemUserActions, domain.ItemCoreLogic},
		Plain:       true,
	}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "You can leave until March 1.")
	assert.Contains(t, s, "- Set a reminder")
	assert.Contains(t, s, config.Default().Fallback.CoreLogic)
	assert.Contains(t, s, ">>> Fallback copy used for:")
}

func TestRender_MalformedContentFallsBack(t *testing.T) {
	fb := config.Default().Fallback

	for name, body := range map[string]string{
		"wrong shapes": `{"escape_window": "Cancel by June 1", "headline": false, "core_logic": 0}`,
		"not an object": `["headline"]`,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "content.json", body)
			var out bytes.Buffer
			err := Render(RenderOptions{ContentPath: path, Plain: true}, &out)
			require.NoError(t, err)

			s := out.String()
			assert.Contains(t, s, fb.EscapeWindow)
			assert.Contains(t, s, fb.Headline)
			assert.Contains(t, s, fb.CoreLogic)
			assert.NotContains(t, s, "\n0\n")
		})
	}
}

func TestRunSession_JSONInput(t *testing.T) {
	in := strings.NewReader(`{"type":"action"}` + "\n" + `{"type":"scroll","delta":400}` + "\n")
	var out bytes.Buffer

	err := RunSession(context.Background(), RunOptions{ViewID: "cli", JSON: true}, in, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"revealed":["headline"]`)
	assert.Contains(t, lines[2], `"revealed":["escape-window"]`)
}

func TestRunSession_TextWithContent(t *testing.T) {
	path := writeFile(t, "content.json", `{"headline": "Mind the renewal date."}`)
	in := strings.NewReader("action\n")
	var out bytes.Buffer

	err := RunSession(context.Background(), RunOptions{Quiet: true, Plain: true, ContentPath: path}, in, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "headline")
	assert.Contains(t, out.String(), "Mind the renewal date.")
}

func TestRunSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()
	defer r.Close()

	assert.NoError(t, RunSession(ctx, RunOptions{Quiet: true}, r, &bytes.Buffer{}), "an interrupt is a clean exit")
}

func analysisBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer paid":
			_, _ = w.Write([]byte(`{"success": true, "data": {"user": {"email": "a@example.com", "paid": true}}}`))
		case "Bearer free":
			_, _ = w.Write([]byte(`{"success": true, "data": {"user": {"email": "b@example.com", "paid": false}}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("POST /analyze", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key_findings": [{"title": "Auto renewal", "message": "Renews for 12 months.", "severity": "high"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze(t *testing.T) {
	srv := analysisBackend(t)
	lease := strings.Repeat("This lease renews automatically unless cancelled. ", 2)

	t.Run("Paid user gets the report", func(t *testing.T) {
		var out bytes.Buffer
		err := Analyze(context.Background(), AnalyzeOptions{BaseURL: srv.URL, Token: "paid", JSON: true}, strings.NewReader(lease), &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), `"title": "Auto renewal"`)
		assert.Contains(t, out.String(), `"severity": "high"`)
	})

	t.Run("Markdown output", func(t *testing.T) {
		var out bytes.Buffer
		err := Analyze(context.Background(), AnalyzeOptions{BaseURL: srv.URL, Token: "paid", Plain: true}, strings.NewReader(lease), &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Auto renewal")
	})

	t.Run("Unpaid user must upgrade", func(t *testing.T) {
		err := Analyze(context.Background(), AnalyzeOptions{BaseURL: srv.URL, Token: "free"}, strings.NewReader(lease), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Contains(t, err.Error(), "upgrade")
	})

	t.Run("Rejected token means signed out", func(t *testing.T) {
		err := Analyze(context.Background(), AnalyzeOptions{BaseURL: srv.URL, Token: "stale"}, strings.NewReader(lease), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Contains(t, err.Error(), "login")
	})

	t.Run("Short text is refused before any request", func(t *testing.T) {
		err := Analyze(context.Background(), AnalyzeOptions{BaseURL: "http://127.0.0.1:0"}, strings.NewReader("too short"), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestOpenSessions_Memory(t *testing.T) {
	mgr, closeFn, err := openSessions(context.Background(), StoreOptions{}, config.Default(), nil)
	require.NoError(t, err)
	defer closeFn()

	_, created, err := mgr.LoadOrStart(context.Background(), "v1", starterFunc(func(ctx context.Context, id string) *domain.State {
		return domain.NewState(id, time.Now())
	}))
	require.NoError(t, err)
	assert.True(t, created)
}

type starterFunc func(ctx context.Context, id string) *domain.State

func (f starterFunc) Start(ctx context.Context, id string) *domain.State { return f(ctx, id) }

func TestViewCommands_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := ViewOptions{StoreOptions: StoreOptions{RedisURL: "redis://" + mr.Addr()}}
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, ListViews(ctx, opts, &out))
	assert.Contains(t, out.String(), "No active views found.")

	// Seed a view through the same store the server would use.
	store, closeFn, err := viewStore(ctx, opts.StoreOptions, config.Default())
	require.NoError(t, err)
	state := domain.NewState("v1", time.Now())
	state.Revealed = []string{domain.ItemHeadline}
	require.NoError(t, store.Save(ctx, "v1", state))
	require.NoError(t, closeFn())

	out.Reset()
	require.NoError(t, ListViews(ctx, opts, &out))
	assert.Contains(t, out.String(), "- v1")

	out.Reset()
	require.NoError(t, InspectView(ctx, opts, "v1", false, &out))
	assert.Contains(t, out.String(), `"view_id": "v1"`)

	out.Reset()
	require.NoError(t, InspectView(ctx, opts, "v1", true, &out))
	assert.Contains(t, out.String(), "class headline current;")

	out.Reset()
	require.NoError(t, RemoveViews(ctx, opts, []string{"v1"}, &out))
	assert.Contains(t, out.String(), "Removed view 'v1'")

	err = InspectView(ctx, opts, "v1", false, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrViewNotFound)

	assert.False(t, mr.Exists(redis.DefaultPrefix+"v1"))
}

func TestViewCommands_NeedRedis(t *testing.T) {
	err := ListViews(context.Background(), ViewOptions{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--redis-url")
}
