package interpret

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tutorbot/tutor/internal/catalog"
)

// Catalog is the slice of the card catalog the engine consumes.
// *catalog.Client satisfies it.
type Catalog interface {
	FindByName(ctx context.Context, name string) (*catalog.Card, error)
	Search(ctx context.Context, query, dir, order string) (*catalog.ResultSet, error)
	SearchAllPrintings(ctx context.Context, query string) (*catalog.ResultSet, error)
	FetchPrintings(ctx context.Context, printingsURL string) (*catalog.ResultSet, error)
}

// Resolver turns extracted references into resolved cards.
type Resolver struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(cat Catalog, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{catalog: cat, logger: logger.With("component", "resolver")}
}

// ByName resolves an exact-name reference. catalog.ErrAmbiguous and
// catalog.ErrNotFound pass through so the caller can apologize
// differently; transport failures pass through as-is and are handled at
// the pipeline boundary.
func (r *Resolver) ByName(ctx context.Context, query string) (*catalog.Card, error) {
	return r.catalog.FindByName(ctx, strings.TrimSpace(query))
}

// BySearch resolves a search reference to its first result. A search has
// no natural disambiguation prompt, so every failure collapses to "no
// result": transport and query errors are logged, never surfaced.
func (r *Resolver) BySearch(ctx context.Context, query string, dir SortDir, key string) *catalog.Card {
	if key == "" {
		key = catalog.DefaultSort
	}
	res, err := r.catalog.Search(ctx, strings.TrimSpace(query), string(dir), key)
	if err != nil {
		r.logger.Error("search failed",
			"query", query,
			"dir", string(dir),
			"order", key,
			"error", err,
		)
		return nil
	}
	return res.First()
}
