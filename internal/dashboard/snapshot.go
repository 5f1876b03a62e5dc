package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/statuscope/statuscope/internal/status"
)

// Snapshot is a point-in-time copy of the reconciled view, with the query
// filter already applied. It is safe to hand out: the reconciler never
// mutates a returned snapshot.
type Snapshot struct {
	// Products is the filtered, display-ordered product list.
	Products []status.Product `json:"products"`

	// LoadedCount is the number of products loaded from the backend;
	// VisibleCount the number surviving the query filter.
	LoadedCount  int `json:"loadedCount"`
	VisibleCount int `json:"visibleCount"`

	Query      string `json:"query"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	HasMore    bool   `json:"hasMore"`

	Loading     bool `json:"loading"`
	LoadingMore bool `json:"loadingMore"`
	Refreshing  bool `json:"refreshing"`

	// Error is the generic load error, empty when the view is healthy.
	Error string `json:"error,omitempty"`

	// ExpandedIDs lists the products currently expanded in the UI.
	ExpandedIDs []int64 `json:"expandedIds"`

	// Summary is a human-readable line describing the view.
	Summary string `json:"summary"`
}

// Snapshot returns the current reconciled view.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	items := make([]status.Product, len(r.items))
	copy(items, r.items)
	expanded := make([]int64, 0, len(r.expanded))
	for id := range r.expanded {
		expanded = append(expanded, id)
	}
	snap := Snapshot{
		LoadedCount: len(items),
		Query:       r.query,
		Page:        r.page,
		TotalPages:  r.totalPages,
		HasMore:     r.hasMoreLocked(),
		Loading:     r.loading,
		LoadingMore: r.loadingMore,
		Refreshing:  r.refreshing,
		Error:       r.loadErr,
	}
	r.mu.Unlock()

	sort.Slice(expanded, func(i, j int) bool { return expanded[i] < expanded[j] })
	snap.ExpandedIDs = expanded
	snap.Products = status.FilterByQuery(items, snap.Query)
	snap.VisibleCount = len(snap.Products)
	snap.Summary = summarize(snap)
	return snap
}

func summarize(snap Snapshot) string {
	if snap.LoadedCount == 0 && snap.Loading {
		return "Loading products..."
	}
	if strings.TrimSpace(snap.Query) == "" {
		return fmt.Sprintf("%d products loaded", snap.LoadedCount)
	}
	return fmt.Sprintf("Showing %d of %d loaded products", snap.VisibleCount, snap.LoadedCount)
}
