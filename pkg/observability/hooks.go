package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/unveil/pkg/domain"
)

// LogHooks returns hooks that log every lifecycle event at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReveal: func(ctx context.Context, e *domain.RevealEvent) {
			logger.InfoContext(ctx, "item_revealed",
				"view_id", e.ViewID,
				"item_id", e.ItemID,
				"trigger", e.Trigger,
				"count", e.Count,
			)
		},
		OnCascadeSchedule: func(ctx context.Context, e *domain.CascadeEvent) {
			logger.InfoContext(ctx, "cascade_scheduled",
				"view_id", e.ViewID,
				"item_id", e.ItemID,
				"due_at", e.DueAt,
			)
		},
		OnPanelSuppress: func(ctx context.Context, e *domain.PanelEvent) {
			logger.InfoContext(ctx, "panel_suppressed", "view_id", e.ViewID)
		},
	}
}

// MergeHooks combines hooks; each callback runs in argument order.
func MergeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var reveal []func(context.Context, *domain.RevealEvent)
	var cascade []func(context.Context, *domain.CascadeEvent)
	var panel []func(context.Context, *domain.PanelEvent)

	for _, h := range hooks {
		if h.OnReveal != nil {
			reveal = append(reveal, h.OnReveal)
		}
		if h.OnCascadeSchedule != nil {
			cascade = append(cascade, h.OnCascadeSchedule)
		}
		if h.OnPanelSuppress != nil {
			panel = append(panel, h.OnPanelSuppress)
		}
	}

	var out domain.LifecycleHooks
	if len(reveal) > 0 {
		out.OnReveal = func(ctx context.Context, e *domain.RevealEvent) {
			for _, fn := range reveal {
				fn(ctx, e)
			}
		}
	}
	if len(cascade) > 0 {
		out.OnCascadeSchedule = func(ctx context.Context, e *domain.CascadeEvent) {
			for _, fn := range cascade {
				fn(ctx, e)
			}
		}
	}
	if len(panel) > 0 {
		out.OnPanelSuppress = func(ctx context.Context, e *domain.PanelEvent) {
			for _, fn := range panel {
				fn(ctx, e)
			}
		}
	}
	return out
}
