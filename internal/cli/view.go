package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/unveil/internal/presentation/graph"
)

// ViewOptions configures the view management commands.
type ViewOptions struct {
	GlobalOptions
	StoreOptions
}

// ListViews prints the IDs of the live views in the shared store.
func ListViews(ctx context.Context, opts ViewOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	store, closeStore, err := viewStore(ctx, opts.StoreOptions, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing views: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active views found.")
		return nil
	}
	fmt.Fprintln(out, "Active Views:")
	for _, id := range ids {
		fmt.Fprintln(out, "- "+id)
	}
	return nil
}

// InspectView prints the disclosure state of a view as JSON, or as a Mermaid
// diagram with the state overlaid when asGraph is set.
func InspectView(ctx context.Context, opts ViewOptions, viewID string, asGraph bool, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	store, closeStore, err := viewStore(ctx, opts.StoreOptions, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	state, err := store.Load(ctx, viewID)
	if err != nil {
		return fmt.Errorf("error loading view '%s': %w", viewID, err)
	}

	if asGraph {
		_, err := fmt.Fprint(out, graph.GenerateMermaid(cfg, state))
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RemoveViews deletes views, as a navigation away from each would.
func RemoveViews(ctx context.Context, opts ViewOptions, ids []string, out io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	store, closeStore, err := viewStore(ctx, opts.StoreOptions, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	failed := 0
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "Removed view '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d view(s)", failed)
	}
	return nil
}
