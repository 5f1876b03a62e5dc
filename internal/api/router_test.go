package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuscope/statuscope/internal/api"
	"github.com/statuscope/statuscope/internal/api/models"
	"github.com/statuscope/statuscope/internal/dashboard"
	"github.com/statuscope/statuscope/internal/status"
	"github.com/statuscope/statuscope/internal/status/productsapi"
)

// fakeBackend implements both the read and write surfaces of the status
// backend.
type fakeBackend struct {
	mu      sync.Mutex
	pages   map[int]*status.ProductPage
	listErr error
	mutErr  error
	deleted []int64
}

func (f *fakeBackend) ListProducts(_ context.Context, page, _ int, _ string) (*status.ProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if resp, ok := f.pages[page]; ok {
		return resp, nil
	}
	return &status.ProductPage{TotalPages: len(f.pages)}, nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, payload productsapi.ProductCreate) (*status.ProductRecord, error) {
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	return &status.ProductRecord{ID: 100, Name: payload.Name}, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id int64, _ productsapi.ProductUpdate) (*status.ProductRecord, error) {
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	return &status.ProductRecord{ID: id}, nil
}

func (f *fakeBackend) DeleteProduct(_ context.Context, id int64) error {
	if f.mutErr != nil {
		return f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) CreateComponent(_ context.Context, payload productsapi.ComponentCreate) (*status.ComponentRecord, error) {
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	return &status.ComponentRecord{ID: 200, Name: payload.Name}, nil
}

func (f *fakeBackend) UpdateComponent(_ context.Context, id int64, _ productsapi.ComponentUpdate) (*status.ComponentRecord, error) {
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	return &status.ComponentRecord{ID: id}, nil
}

func (f *fakeBackend) DeleteComponent(_ context.Context, id int64) error {
	if f.mutErr != nil {
		return f.mutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func testPage() *status.ProductPage {
	return &status.ProductPage{
		TotalPages: 1,
		Content: []status.ProductRecord{{
			ID:        1,
			Name:      "Checkout",
			IsVisible: true,
			Components: []status.ComponentRecord{{
				ID:            100,
				ProductID:     1,
				Name:          "payment-api",
				Type:          status.ComponentBackend,
				CurrentStatus: "OPERATIONAL",
				IsActive:      true,
			}},
		}},
	}
}

func newTestRouter(t *testing.T, backend *fakeBackend) http.Handler {
	t.Helper()

	recon := dashboard.NewReconciler(dashboard.ReconcilerConfig{
		API:           backend,
		DebounceDelay: time.Hour,
	})
	recon.LoadFirstPage(context.Background())
	coordinator := dashboard.NewCoordinator(backend, recon, zerolog.New(io.Discard))

	return api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2026-01-01T00:00:00Z",
		Logger:      zerolog.New(io.Discard),
		Reconciler:  recon,
		Coordinator: coordinator,
	})
}

func jsonRequest(method, target string, body any) *http.Request {
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/ops/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessDegradedWithoutData(t *testing.T) {
	backend := &fakeBackend{listErr: context.DeadlineExceeded}
	router := newTestRouter(t, backend)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/ops/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusDegraded, health.Status)
}

func TestRouter_GetSnapshot(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Checkout", snap.Products[0].Name)
	assert.Equal(t, 1, snap.LoadedCount)
}

func TestRouter_SetQueryFiltersSnapshot(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, "/v1/dashboard/query", map[string]string{"query": "billing"}))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/dashboard", nil))

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "billing", snap.Query)
	assert.Zero(t, snap.VisibleCount)
	assert.Equal(t, 1, snap.LoadedCount)
}

func TestRouter_ToggleProduct(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/v1/dashboard/products/1/toggle", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/dashboard", nil))

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, []int64{1}, snap.ExpandedIDs)
}

func TestRouter_ToggleProductInvalidID(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/v1/dashboard/products/abc/toggle", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestRouter_CreateProduct(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/v1/dashboard/products", dashboard.ProductForm{Name: "Billing"}))

	assert.Equal(t, http.StatusOK, w.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.Products)
}

func TestRouter_UpdateProductStaleTarget(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPatch, "/v1/dashboard/products/999", dashboard.ProductForm{Name: "gone"}))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "product is no longer available", problem.Detail)
}

func TestRouter_CreateProductValidationFailure(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}}
	backend.mutErr = &productsapi.APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Detail: []productsapi.FieldDetail{
			{Loc: []json.RawMessage{json.RawMessage(`"body"`), json.RawMessage(`"name"`)}, Msg: "field required"},
		},
	}
	router := newTestRouter(t, backend)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/v1/dashboard/products", dashboard.ProductForm{}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "body.name: field required", problem.Detail)
}

func TestRouter_DeleteComponent(t *testing.T) {
	backend := &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}}
	router := newTestRouter(t, backend)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodDelete, "/v1/dashboard/components/100", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{100}, backend.deleted)
}

func TestRouter_RequireJSON(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	req := httptest.NewRequest(http.MethodPost, "/v1/dashboard/products", bytes.NewReader([]byte("name=Billing")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, &fakeBackend{pages: map[int]*status.ProductPage{1: testPage()}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
