package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ConfigURI is the resource exposing the effective engine configuration.
const ConfigURI = "unveil://config"

// Engine is the disclosure engine as seen by the MCP host. *unveil.Engine satisfies it.
type Engine interface {
	Start(ctx context.Context, viewID string) *domain.State
	Apply(ctx context.Context, state *domain.State, sig domain.Signal) (domain.Outcome, error)
	NextDue(state *domain.State) (time.Time, bool)
	Items(state *domain.State) []domain.Item
	Resolve(c content.Content) content.Resolved
	Config() config.Config
}

// ViewResult is the structured view returned by the tools.
type ViewResult struct {
	ViewID          string            `json:"view_id" jsonschema_description:"Identifier of the page view"`
	Revealed        []string          `json:"revealed" jsonschema_description:"Revealed items in reveal order"`
	Hidden          []string          `json:"hidden" jsonschema_description:"Items still hidden, in page order"`
	PanelSuppressed bool              `json:"panel_suppressed" jsonschema_description:"Whether the auxiliary panel is hidden"`
	NextDue         string            `json:"next_due,omitempty" jsonschema_description:"When the next cascade reveal is due (RFC 3339)"`
	Content         *content.Resolved `json:"content,omitempty" jsonschema_description:"Resolved copy, when content was supplied"`
}

// SignalResult reports what a signal revealed.
type SignalResult struct {
	Revealed []string   `json:"revealed" jsonschema_description:"Items revealed by this signal"`
	View     ViewResult `json:"view" jsonschema_description:"The view after the signal"`
}

// Server exposes views to agents over the Model Context Protocol.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("unveil-mcp", strings.TrimSpace(unveil.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server (e.g. for in-process clients).
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	openTool := mcp.NewTool("open_view",
		mcp.WithDescription("Open a page view (or reopen an existing one). Returns the items and their visibility."),
		mcp.WithString("view_id", mcp.Description("View identifier (optional, generated when omitted)")),
		mcp.WithString("content", mcp.Description("JSON content object with headline, escape_window, core_logic, user_actions (optional)")),
		mcp.WithOutputSchema[ViewResult](),
	)
	s.mcpServer.AddTool(openTool, mcp.NewStructuredToolHandler(s.handleOpenView))

	signalTool := mcp.NewTool("send_signal",
		mcp.WithDescription("Feed a signal into a view: action, scroll (with delta in pixels), tick, or reveal (with item)."),
		mcp.WithString("view_id", mcp.Required(), mcp.Description("View identifier")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Signal type"), mcp.Enum("action", "scroll", "tick", "reveal")),
		mcp.WithNumber("delta", mcp.Description("Scroll delta in pixels (scroll only)")),
		mcp.WithString("item", mcp.Description("Item to reveal (reveal only)")),
		mcp.WithOutputSchema[SignalResult](),
	)
	s.mcpServer.AddTool(signalTool, mcp.NewStructuredToolHandler(s.handleSendSignal))

	inspectTool := mcp.NewTool("inspect_view",
		mcp.WithDescription("Inspect the disclosure state of a view."),
		mcp.WithString("view_id", mcp.Required(), mcp.Description("View identifier")),
		mcp.WithOutputSchema[ViewResult](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspectView))

	s.mcpServer.AddTool(mcp.NewTool("close_view",
		mcp.WithDescription("Discard a view, as when the visitor navigates away. Pending cascade reveals are dropped."),
		mcp.WithString("view_id", mcp.Required(), mcp.Description("View identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		viewID := request.GetString("view_id", "")
		if err := s.sessions.Delete(ctx, viewID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("close failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("view %s closed", viewID)), nil
	})
}

func (s *Server) handleOpenView(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	viewID, _ := args["view_id"].(string)
	if viewID == "" {
		viewID = uuid.NewString()
	}

	var resolved *content.Resolved
	if raw, ok := args["content"].(string); ok && raw != "" {
		// anything but a JSON object resolves to the fallback copy
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			s.logger.Debug("content is not a JSON object", "view_id", viewID, "err", err)
		}
		res := s.engine.Resolve(content.Decode(obj))
		resolved = &res
	}

	state, _, err := s.sessions.LoadOrStart(ctx, viewID, s.engine)
	if err != nil {
		return ViewResult{}, fmt.Errorf("open failed: %w", err)
	}
	v := s.result(state)
	v.Content = resolved
	return v, nil
}

func (s *Server) handleSendSignal(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SignalResult, error) {
	viewID, _ := args["view_id"].(string)
	sig := domain.Signal{Type: domain.SignalType(fmt.Sprint(args["type"]))}
	if d, ok := args["delta"].(float64); ok {
		sig.Delta = d
	}
	sig.Item, _ = args["item"].(string)

	var out domain.Outcome
	_, after, err := s.sessions.Update(ctx, viewID, func(ctx context.Context, state *domain.State) error {
		var err error
		out, err = s.engine.Apply(ctx, state, sig)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP send_signal failed", "view_id", viewID, "err", err)
		return SignalResult{}, fmt.Errorf("signal failed: %w", err)
	}

	revealed := out.Revealed
	if revealed == nil {
		revealed = []string{}
	}
	return SignalResult{Revealed: revealed, View: s.result(after)}, nil
}

func (s *Server) handleInspectView(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	viewID, _ := args["view_id"].(string)
	state, err := s.sessions.Load(ctx, viewID)
	if err != nil {
		return ViewResult{}, fmt.Errorf("inspect failed: %w", err)
	}
	return s.result(state), nil
}

func (s *Server) result(state *domain.State) ViewResult {
	v := ViewResult{
		ViewID:          state.ViewID,
		Revealed:        append([]string{}, state.Revealed...),
		Hidden:          []string{},
		PanelSuppressed: state.PanelSuppressed,
	}
	for _, it := range s.engine.Items(state) {
		if it.State == domain.Hidden {
			v.Hidden = append(v.Hidden, it.ID)
		}
	}
	if due, ok := s.engine.NextDue(state); ok {
		v.NextDue = due.Format(time.RFC3339Nano)
	}
	return v
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ConfigURI, "Disclosure Configuration",
		mcp.WithMIMEType("application/yaml"),
	), s.readConfig)
}

func (s *Server) readConfig(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.engine.Config().YAML()
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ConfigURI,
			MIMEType: "application/yaml",
			Text:     string(data),
		},
	}, nil
}
