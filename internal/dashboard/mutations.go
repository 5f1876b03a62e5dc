package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/statuscope/statuscope/internal/status"
	"github.com/statuscope/statuscope/internal/status/productsapi"
)

// Fallback messages when a mutation fails without usable detail.
const (
	SaveErrorMessage   = "Unable to save changes. Please try again."
	RemoveErrorMessage = "Unable to remove item. Please try again."
)

// ModalKind identifies which modal is open.
type ModalKind string

const (
	ModalNone            ModalKind = "none"
	ModalProductCreate   ModalKind = "product-create"
	ModalProductEdit     ModalKind = "product-edit"
	ModalProductDelete   ModalKind = "product-delete"
	ModalComponentCreate ModalKind = "component-create"
	ModalComponentEdit   ModalKind = "component-edit"
	ModalComponentDelete ModalKind = "component-delete"
)

// ModalState is the tagged modal variant: exactly one modal (or none) is
// open at a time. ProductID carries the target for product-edit,
// product-delete, and component-create; ComponentID for component-edit
// and component-delete.
type ModalState struct {
	Kind        ModalKind `json:"kind"`
	ProductID   int64     `json:"productId,omitempty"`
	ComponentID int64     `json:"componentId,omitempty"`
}

// MutationsAPI is the backend write surface the coordinator depends on.
type MutationsAPI interface {
	CreateProduct(ctx context.Context, payload productsapi.ProductCreate) (*status.ProductRecord, error)
	UpdateProduct(ctx context.Context, id int64, payload productsapi.ProductUpdate) (*status.ProductRecord, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateComponent(ctx context.Context, payload productsapi.ComponentCreate) (*status.ComponentRecord, error)
	UpdateComponent(ctx context.Context, id int64, payload productsapi.ComponentUpdate) (*status.ComponentRecord, error)
	DeleteComponent(ctx context.Context, id int64) error
}

// ProductForm is the user-entered product payload. A nil Description
// clears the stored description on edit and is omitted on create.
type ProductForm struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ComponentForm is the user-entered component payload.
type ComponentForm struct {
	Name             string                             `json:"name"`
	Type             status.ComponentType               `json:"type"`
	MonitoringConfig productsapi.MonitoringConfigCreate `json:"monitoringConfig"`
}

// CoordinatorState is a copy of the coordinator's observable state.
type CoordinatorState struct {
	Modal      ModalState `json:"modal"`
	Saving     bool       `json:"saving"`
	ModalError string     `json:"modalError,omitempty"`
}

// Coordinator serializes create/update/delete operations against the
// backend. It never writes the reconciler's items directly; a successful
// mutation closes the modal and triggers a background refresh.
type Coordinator struct {
	api    MutationsAPI
	recon  *Reconciler
	logger zerolog.Logger

	mu       sync.Mutex
	modal    ModalState
	saving   bool
	modalErr string
}

// NewCoordinator creates a mutation coordinator bound to the reconciler.
func NewCoordinator(api MutationsAPI, recon *Reconciler, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		api:    api,
		recon:  recon,
		logger: logger,
		modal:  ModalState{Kind: ModalNone},
	}
}

// State returns the current modal state.
func (c *Coordinator) State() CoordinatorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CoordinatorState{Modal: c.modal, Saving: c.saving, ModalError: c.modalErr}
}

// OpenProductCreate opens the product creation modal.
func (c *Coordinator) OpenProductCreate() {
	c.open(ModalState{Kind: ModalProductCreate})
}

// OpenProductEdit opens the edit modal for a loaded product. A stale id
// is a no-op.
func (c *Coordinator) OpenProductEdit(productID int64) {
	if _, ok := c.recon.FindProduct(productID); !ok {
		return
	}
	c.open(ModalState{Kind: ModalProductEdit, ProductID: productID})
}

// OpenProductDelete opens the delete confirmation for a loaded product.
func (c *Coordinator) OpenProductDelete(productID int64) {
	if _, ok := c.recon.FindProduct(productID); !ok {
		return
	}
	c.open(ModalState{Kind: ModalProductDelete, ProductID: productID})
}

// OpenComponentCreate opens the component creation modal under a loaded
// product.
func (c *Coordinator) OpenComponentCreate(productID int64) {
	if _, ok := c.recon.FindProduct(productID); !ok {
		return
	}
	c.open(ModalState{Kind: ModalComponentCreate, ProductID: productID})
}

// OpenComponentEdit opens the edit modal for a loaded component.
func (c *Coordinator) OpenComponentEdit(componentID int64) {
	if _, ok := c.recon.FindComponent(componentID); !ok {
		return
	}
	c.open(ModalState{Kind: ModalComponentEdit, ComponentID: componentID})
}

// OpenComponentDelete opens the delete confirmation for a loaded
// component.
func (c *Coordinator) OpenComponentDelete(componentID int64) {
	if _, ok := c.recon.FindComponent(componentID); !ok {
		return
	}
	c.open(ModalState{Kind: ModalComponentDelete, ComponentID: componentID})
}

func (c *Coordinator) open(modal ModalState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = modal
	c.modalErr = ""
}

// Close dismisses the open modal. It refuses while a save is in flight.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saving {
		return
	}
	c.modal = ModalState{Kind: ModalNone}
	c.modalErr = ""
}

// SubmitProduct submits the product form against the open modal.
func (c *Coordinator) SubmitProduct(ctx context.Context, form ProductForm) {
	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()

	switch modal.Kind {
	case ModalProductCreate:
		c.submit(ctx, SaveErrorMessage, func(ctx context.Context) error {
			_, err := c.api.CreateProduct(ctx, productsapi.ProductCreate{
				Name:        form.Name,
				Description: form.Description,
			})
			return err
		})
	case ModalProductEdit:
		description := form.Description
		if description == nil {
			// Explicitly cleared on edit rather than left unchanged.
			description = productsapi.String("")
		}
		c.submit(ctx, SaveErrorMessage, func(ctx context.Context) error {
			_, err := c.api.UpdateProduct(ctx, modal.ProductID, productsapi.ProductUpdate{
				Name:        productsapi.String(form.Name),
				Description: description,
			})
			return err
		})
	}
}

// SubmitComponent submits the component form against the open modal.
func (c *Coordinator) SubmitComponent(ctx context.Context, form ComponentForm) {
	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()

	switch modal.Kind {
	case ModalComponentCreate:
		c.submit(ctx, SaveErrorMessage, func(ctx context.Context) error {
			_, err := c.api.CreateComponent(ctx, productsapi.ComponentCreate{
				ProductID:        modal.ProductID,
				Name:             form.Name,
				Type:             form.Type,
				MonitoringConfig: form.MonitoringConfig,
			})
			return err
		})
	case ModalComponentEdit:
		c.submit(ctx, SaveErrorMessage, func(ctx context.Context) error {
			_, err := c.api.UpdateComponent(ctx, modal.ComponentID, productsapi.ComponentUpdate{
				Name: productsapi.String(form.Name),
				Type: productsapi.Type(form.Type),
				MonitoringConfig: &productsapi.MonitoringConfigUpdate{
					HealthURL:            productsapi.String(form.MonitoringConfig.HealthURL),
					CheckIntervalSeconds: productsapi.Int(form.MonitoringConfig.CheckIntervalSeconds),
					TimeoutSeconds:       productsapi.Int(form.MonitoringConfig.TimeoutSeconds),
					ExpectedStatusCode:   productsapi.Int(form.MonitoringConfig.ExpectedStatusCode),
					MaxResponseTimeMs:    productsapi.Int(form.MonitoringConfig.MaxResponseTimeMs),
					FailuresBeforeOutage: productsapi.Int(form.MonitoringConfig.FailuresBeforeOutage),
				},
			})
			return err
		})
	}
}

// ConfirmDelete executes the open delete confirmation. A target removed
// by a concurrent refresh closes the modal instead of deleting stale
// data.
func (c *Coordinator) ConfirmDelete(ctx context.Context) {
	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()

	switch modal.Kind {
	case ModalProductDelete:
		if _, ok := c.recon.FindProduct(modal.ProductID); !ok {
			c.Close()
			return
		}
		c.submit(ctx, RemoveErrorMessage, func(ctx context.Context) error {
			return c.api.DeleteProduct(ctx, modal.ProductID)
		})
	case ModalComponentDelete:
		if _, ok := c.recon.FindComponent(modal.ComponentID); !ok {
			c.Close()
			return
		}
		c.submit(ctx, RemoveErrorMessage, func(ctx context.Context) error {
			return c.api.DeleteComponent(ctx, modal.ComponentID)
		})
	}
}

// submit runs one mutation with the saving gate held. Saving is released
// on every exit path; success closes the modal and refreshes the view.
func (c *Coordinator) submit(ctx context.Context, fallback string, call func(context.Context) error) {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return
	}
	c.saving = true
	c.modalErr = ""
	c.mu.Unlock()

	err := call(ctx)

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.modalErr = resolveMutationError(err, fallback)
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("mutation failed")
		return
	}
	c.modal = ModalState{Kind: ModalNone}
	c.modalErr = ""
	c.mu.Unlock()

	c.recon.BackgroundRefresh(ctx)
}

// resolveMutationError turns a transport failure into the user-facing
// modal message: 422 validation detail is decomposed field by field,
// everything else falls back to the per-action message.
func resolveMutationError(err error, fallback string) string {
	var apiErr *productsapi.APIError
	if errors.As(err, &apiErr) && apiErr.IsValidation() {
		return apiErr.ValidationMessage()
	}
	return fallback
}
