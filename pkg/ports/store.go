package ports

import (
	"context"

	"github.com/aretw0/unveil/pkg/domain"
)

// ViewStore defines the interface for holding view state on the server side.
// A view lives only as long as the page view: hosts delete it on navigation and
// implementations may expire it after a TTL.
type ViewStore interface {
	// Save persists the state for a given view ID.
	Save(ctx context.Context, viewID string, state *domain.State) error

	// Load retrieves the state for a given view ID.
	// Returns domain.ErrViewNotFound if the view does not exist (or has expired).
	Load(ctx context.Context, viewID string) (*domain.State, error)

	// Delete removes the state for a given view ID. Deleting a missing view is not an error.
	Delete(ctx context.Context, viewID string) error

	// List returns the IDs of all live views.
	List(ctx context.Context) ([]string, error)
}
