// Package dashboard keeps the client-side view of the status backend
// consistent: it owns the loaded page window, merges incremental page
// loads with periodic background refreshes, and serializes live edits.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/statuscope/statuscope/internal/status"
)

// Defaults for the reconciler.
const (
	DefaultPageSize        = 10
	DefaultRefreshInterval = 30 * time.Second
	DefaultDebounceDelay   = 300 * time.Millisecond
)

// LoadErrorMessage is the generic user-facing message for failed loads.
const LoadErrorMessage = "Unable to load status data. Please try again."

// ProductsAPI is the backend read surface the reconciler depends on.
type ProductsAPI interface {
	ListProducts(ctx context.Context, page, pageSize int, search string) (*status.ProductPage, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// API is the backend client.
	API ProductsAPI

	// Logger for reconciliation events.
	Logger zerolog.Logger

	// Tracer wraps refresh cycles in spans when set.
	Tracer trace.Tracer

	// PageSize per listing request (default: DefaultPageSize).
	PageSize int

	// RefreshInterval between background refresh ticks
	// (default: DefaultRefreshInterval).
	RefreshInterval time.Duration

	// DebounceDelay applied to query changes before they trigger a
	// reset load (default: DefaultDebounceDelay).
	DebounceDelay time.Duration
}

// Reconciler owns the loaded product window and the ephemeral UI state
// attached to it. All state lives behind one mutex; network calls run
// outside the lock and commit their effects only while still current.
type Reconciler struct {
	api      ProductsAPI
	logger   zerolog.Logger
	tracer   trace.Tracer
	pageSize int
	interval time.Duration

	mu          sync.Mutex
	page        int // 0 = nothing loaded yet, else last loaded 1-based page
	totalPages  int
	items       []status.Product
	expanded    map[int64]struct{}
	query       string
	loading     bool
	loadingMore bool
	refreshing  bool
	loadErr     string

	// loadGen invalidates in-flight work when a newer user-initiated
	// load supersedes it; activeCancel aborts the superseded request.
	loadGen       uint64
	activeCancel  context.CancelFunc
	refreshCancel context.CancelFunc

	debounce *debouncer
	cron     *cron.Cron
	baseCtx  context.Context
	stopOnce sync.Once
}

// NewReconciler creates a reconciler. Zero-value config fields fall back
// to defaults.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	interval := cfg.RefreshInterval
	if interval == 0 {
		interval = DefaultRefreshInterval
	}
	delay := cfg.DebounceDelay
	if delay == 0 {
		delay = DefaultDebounceDelay
	}

	r := &Reconciler{
		api:      cfg.API,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
		pageSize: pageSize,
		interval: interval,
		expanded: make(map[int64]struct{}),
	}
	r.debounce = newDebouncer(delay, func(string) {
		r.LoadFirstPage(r.loadContext())
	})
	return r
}

// Start kicks off the initial load and begins the auto-refresh schedule.
// The initial load runs in the background so callers are not held up while
// the backend is unreachable. Stop must be called to release the timers.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	r.baseCtx = ctx
	r.mu.Unlock()

	go r.LoadFirstPage(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		r.BackgroundRefresh(r.loadContext())
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	c.Start()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	r.logger.Info().
		Dur("interval", r.interval).
		Int("page_size", r.pageSize).
		Msg("dashboard reconciler started")
	return nil
}

// Stop halts the auto-refresh schedule, the query debouncer, and any
// in-flight requests.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		c := r.cron
		r.cron = nil
		if r.activeCancel != nil {
			r.activeCancel()
		}
		if r.refreshCancel != nil {
			r.refreshCancel()
		}
		r.mu.Unlock()

		if c != nil {
			c.Stop()
		}
		r.debounce.Stop()
	})
}

func (r *Reconciler) loadContext() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baseCtx != nil {
		return r.baseCtx
	}
	return context.Background()
}

// SetQuery records the active query immediately (background refresh always
// uses the live value) and schedules a debounced reset load. Repeating the
// previously loaded query is deduplicated.
func (r *Reconciler) SetQuery(query string) {
	r.mu.Lock()
	r.query = query
	r.mu.Unlock()
	r.debounce.Trigger(query)
}

// Query returns the active query text.
func (r *Reconciler) Query() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query
}

// ToggleExpanded flips the expansion state of a product.
func (r *Reconciler) ToggleExpanded(productID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expanded[productID]; ok {
		delete(r.expanded, productID)
	} else {
		r.expanded[productID] = struct{}{}
	}
}

// HasMore reports whether a further page can be loaded.
func (r *Reconciler) HasMore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasMoreLocked()
}

func (r *Reconciler) hasMoreLocked() bool {
	return r.page+1 < r.totalPages
}

// LoadFirstPage issues a reset load: page 1 under the current query,
// replacing the displayed data wholesale. A reset supersedes any reset or
// load-more already in flight and suppresses a conflicting background
// refresh.
func (r *Reconciler) LoadFirstPage(ctx context.Context) {
	r.mu.Lock()
	if r.activeCancel != nil {
		r.activeCancel()
	}
	if r.refreshCancel != nil {
		r.refreshCancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	r.activeCancel = cancel
	r.loadGen++
	gen := r.loadGen
	r.loading = true
	r.loadErr = ""
	query := strings.TrimSpace(r.query)
	r.mu.Unlock()

	resp, err := r.api.ListProducts(reqCtx, 1, r.pageSize, query)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.loadGen {
		// A newer reset owns the state now; discard this completion.
		return
	}
	r.loading = false
	r.activeCancel = nil

	if err != nil {
		r.items = nil
		r.page = 0
		r.totalPages = 0
		r.expanded = make(map[int64]struct{})
		r.loadErr = LoadErrorMessage
		r.logger.Error().Err(err).Str("query", query).Msg("reset load failed")
		return
	}

	r.items = status.MapProducts(resp.Content)
	r.page = 1
	r.totalPages = max(resp.TotalPages, 2)
	r.pruneExpandedLocked()
	r.loadErr = ""
	r.logger.Debug().
		Int("products", len(r.items)).
		Int("total_pages", r.totalPages).
		Str("query", query).
		Msg("reset load completed")
}

// Retry re-issues the reset load after a failure.
func (r *Reconciler) Retry(ctx context.Context) {
	r.LoadFirstPage(ctx)
}

// LoadNextPage fetches the page after the last loaded one and merges it
// into the displayed data. It is a no-op when no further page exists or a
// load is already in flight; a failure keeps the loaded data intact. Like a
// reset, it supersedes an in-flight background refresh: a refresh window
// captured before the page advanced must not commit over the new page.
func (r *Reconciler) LoadNextPage(ctx context.Context) {
	r.mu.Lock()
	if !r.hasMoreLocked() || r.loading || r.loadingMore {
		r.mu.Unlock()
		return
	}
	if r.refreshCancel != nil {
		r.refreshCancel()
	}
	r.loadingMore = true
	r.loadGen++
	gen := r.loadGen
	targetPage := r.page + 1
	query := strings.TrimSpace(r.query)
	reqCtx, cancel := context.WithCancel(ctx)
	r.activeCancel = cancel
	r.mu.Unlock()

	resp, err := r.api.ListProducts(reqCtx, targetPage, r.pageSize, query)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadingMore = false
	if gen != r.loadGen {
		return
	}
	r.activeCancel = nil

	if err != nil {
		r.loadErr = LoadErrorMessage
		r.logger.Error().Err(err).Int("page", targetPage).Msg("load-more failed")
		return
	}

	r.items = mergeProducts(r.items, status.MapProducts(resp.Content))
	r.page = targetPage
	r.totalPages = max(resp.TotalPages, targetPage+1)
	r.pruneExpandedLocked()
	r.loadErr = ""
	r.logger.Debug().
		Int("page", targetPage).
		Int("products", len(r.items)).
		Msg("load-more completed")
}

// BackgroundRefresh refetches every currently loaded page under the active
// query and reconciles the result without disturbing expansion state. A
// tick that overlaps a load or another refresh is skipped. Failures are
// silent while data is on screen.
func (r *Reconciler) BackgroundRefresh(ctx context.Context) {
	r.mu.Lock()
	if r.loading || r.loadingMore || r.refreshing {
		r.mu.Unlock()
		return
	}
	r.refreshing = true
	gen := r.loadGen
	currentPage := max(r.page, 1)
	query := strings.TrimSpace(r.query)
	reqCtx, cancel := context.WithCancel(ctx)
	r.refreshCancel = cancel
	r.mu.Unlock()

	refreshID := "rf_" + uuid.New().String()[:8]
	if r.tracer != nil {
		var span trace.Span
		reqCtx, span = r.tracer.Start(reqCtx, "dashboard.refresh",
			trace.WithAttributes(attribute.String("refresh.id", refreshID)))
		defer span.End()
	}

	responses, err := r.fetchWindow(reqCtx, currentPage, query)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshing = false
	r.refreshCancel = nil
	if gen != r.loadGen {
		return
	}

	if err != nil {
		if len(r.items) == 0 {
			r.loadErr = LoadErrorMessage
		}
		r.logger.Warn().Err(err).Str("refresh_id", refreshID).Msg("background refresh failed")
		return
	}

	effectiveMaxPage := len(responses)
	r.items = dedupeByID(responses)
	r.page = effectiveMaxPage
	r.totalPages = max(responses[0].TotalPages, effectiveMaxPage+1)
	r.pruneExpandedLocked()
	r.loadErr = ""
	r.logger.Debug().
		Str("refresh_id", refreshID).
		Int("pages", effectiveMaxPage).
		Int("products", len(r.items)).
		Msg("background refresh completed")
}

// fetchWindow fetches page 1 to learn the authoritative page count, then
// the remaining pages of the effective window concurrently. Any failure
// fails the whole cycle.
func (r *Reconciler) fetchWindow(ctx context.Context, currentPage int, query string) ([]*status.ProductPage, error) {
	first, err := r.api.ListProducts(ctx, 1, r.pageSize, query)
	if err != nil {
		return nil, err
	}

	effectiveMaxPage := min(currentPage, max(first.TotalPages, 1))
	responses := make([]*status.ProductPage, effectiveMaxPage)
	responses[0] = first
	if effectiveMaxPage <= 1 {
		return responses, nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for page := 2; page <= effectiveMaxPage; page++ {
		g.Go(func() error {
			resp, fetchErr := r.api.ListProducts(groupCtx, page, r.pageSize, query)
			if fetchErr != nil {
				return fetchErr
			}
			responses[page-1] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// mergeProducts overlays incoming onto current by product id. Products not
// re-fetched keep their position; new ids append at the end.
func mergeProducts(current, incoming []status.Product) []status.Product {
	index := make(map[int64]int, len(current))
	merged := make([]status.Product, len(current))
	copy(merged, current)
	for i, product := range merged {
		index[product.ID] = i
	}

	for _, product := range incoming {
		if i, ok := index[product.ID]; ok {
			merged[i] = product
			continue
		}
		index[product.ID] = len(merged)
		merged = append(merged, product)
	}
	return merged
}

// dedupeByID rebuilds the item list from refresh responses in page order,
// keeping the first occurrence of each product id.
func dedupeByID(responses []*status.ProductPage) []status.Product {
	seen := make(map[int64]struct{})
	var deduped []status.Product
	for _, resp := range responses {
		for _, product := range status.MapProducts(resp.Content) {
			if _, ok := seen[product.ID]; ok {
				continue
			}
			seen[product.ID] = struct{}{}
			deduped = append(deduped, product)
		}
	}
	return deduped
}

// pruneExpandedLocked drops expanded ids whose product vanished so stale
// UI state never references missing entities. Caller holds the lock.
func (r *Reconciler) pruneExpandedLocked() {
	available := make(map[int64]struct{}, len(r.items))
	for _, product := range r.items {
		available[product.ID] = struct{}{}
	}
	for id := range r.expanded {
		if _, ok := available[id]; !ok {
			delete(r.expanded, id)
		}
	}
}

// FindProduct returns the loaded product with the given id.
func (r *Reconciler) FindProduct(productID int64) (status.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.items {
		if product.ID == productID {
			return product, true
		}
	}
	return status.Product{}, false
}

// FindComponent returns the loaded component with the given id.
func (r *Reconciler) FindComponent(componentID int64) (status.Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.items {
		for _, component := range product.Components {
			if component.ID == componentID {
				return component, true
			}
		}
	}
	return status.Component{}, false
}
