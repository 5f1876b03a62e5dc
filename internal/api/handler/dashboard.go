package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/statuscope/statuscope/internal/api/response"
	"github.com/statuscope/statuscope/internal/dashboard"
)

// DashboardHandler exposes the reconciled view and the mutation surface
// to a thin UI.
type DashboardHandler struct {
	reconciler  *dashboard.Reconciler
	coordinator *dashboard.Coordinator
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reconciler *dashboard.Reconciler, coordinator *dashboard.Coordinator) *DashboardHandler {
	return &DashboardHandler{reconciler: reconciler, coordinator: coordinator}
}

// GetSnapshot handles GET /v1/dashboard - the filtered, reconciled view.
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.reconciler.Snapshot())
}

// Refresh handles POST /v1/dashboard/refresh - force a refresh cycle.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.reconciler.BackgroundRefresh(r.Context())
	response.JSON(w, r, http.StatusOK, h.reconciler.Snapshot())
}

// Retry handles POST /v1/dashboard/retry - re-issue the reset load after
// a failure.
func (h *DashboardHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.reconciler.Retry(r.Context())
	response.JSON(w, r, http.StatusOK, h.reconciler.Snapshot())
}

type queryRequest struct {
	Query string `json:"query"`
}

// SetQuery handles PUT /v1/dashboard/query - update the (debounced)
// search query.
func (h *DashboardHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}
	h.reconciler.SetQuery(req.Query)
	response.NoContent(w, r)
}

// LoadMore handles POST /v1/dashboard/load-more - fetch the next page.
func (h *DashboardHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	h.reconciler.LoadNextPage(r.Context())
	response.JSON(w, r, http.StatusOK, h.reconciler.Snapshot())
}

// ToggleProduct handles POST /v1/dashboard/products/{productId}/toggle -
// expand or collapse a product.
func (h *DashboardHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productId")
	if !ok {
		return
	}
	h.reconciler.ToggleExpanded(id)
	response.NoContent(w, r)
}

// CreateProduct handles POST /v1/dashboard/products.
func (h *DashboardHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var form dashboard.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	h.coordinator.OpenProductCreate()
	h.coordinator.SubmitProduct(r.Context(), form)
	h.finishMutation(w, r)
}

// UpdateProduct handles PATCH /v1/dashboard/products/{productId}.
func (h *DashboardHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productId")
	if !ok {
		return
	}
	var form dashboard.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	h.coordinator.OpenProductEdit(id)
	if h.coordinator.State().Modal.Kind != dashboard.ModalProductEdit {
		response.NotFound(w, r, "product is no longer available")
		return
	}
	h.coordinator.SubmitProduct(r.Context(), form)
	h.finishMutation(w, r)
}

// DeleteProduct handles DELETE /v1/dashboard/products/{productId}.
func (h *DashboardHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productId")
	if !ok {
		return
	}

	h.coordinator.OpenProductDelete(id)
	if h.coordinator.State().Modal.Kind != dashboard.ModalProductDelete {
		response.NotFound(w, r, "product is no longer available")
		return
	}
	h.coordinator.ConfirmDelete(r.Context())
	h.finishMutation(w, r)
}

// CreateComponent handles POST /v1/dashboard/products/{productId}/components.
func (h *DashboardHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productId")
	if !ok {
		return
	}
	var form dashboard.ComponentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	h.coordinator.OpenComponentCreate(id)
	if h.coordinator.State().Modal.Kind != dashboard.ModalComponentCreate {
		response.NotFound(w, r, "product is no longer available")
		return
	}
	h.coordinator.SubmitComponent(r.Context(), form)
	h.finishMutation(w, r)
}

// UpdateComponent handles PATCH /v1/dashboard/components/{componentId}.
func (h *DashboardHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "componentId")
	if !ok {
		return
	}
	var form dashboard.ComponentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	h.coordinator.OpenComponentEdit(id)
	if h.coordinator.State().Modal.Kind != dashboard.ModalComponentEdit {
		response.NotFound(w, r, "component is no longer available")
		return
	}
	h.coordinator.SubmitComponent(r.Context(), form)
	h.finishMutation(w, r)
}

// DeleteComponent handles DELETE /v1/dashboard/components/{componentId}.
func (h *DashboardHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "componentId")
	if !ok {
		return
	}

	h.coordinator.OpenComponentDelete(id)
	if h.coordinator.State().Modal.Kind != dashboard.ModalComponentDelete {
		response.NotFound(w, r, "component is no longer available")
		return
	}
	h.coordinator.ConfirmDelete(r.Context())
	h.finishMutation(w, r)
}

// finishMutation maps the coordinator outcome onto the HTTP response: a
// resolved modal error becomes a 422 problem, success returns the
// refreshed snapshot. The modal is closed either way so the next request
// starts clean.
func (h *DashboardHandler) finishMutation(w http.ResponseWriter, r *http.Request) {
	state := h.coordinator.State()
	if state.ModalError != "" {
		h.coordinator.Close()
		response.Unprocessable(w, r, state.ModalError)
		return
	}
	h.coordinator.Close()
	response.JSON(w, r, http.StatusOK, h.reconciler.Snapshot())
}

func (h *DashboardHandler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "invalid "+param)
		return 0, false
	}
	return id, true
}
