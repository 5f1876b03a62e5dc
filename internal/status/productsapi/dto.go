package productsapi

import (
	"github.com/statuscope/statuscope/internal/status"
)

// ProductCreate is the payload for creating a product.
type ProductCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ProductUpdate is a partial product update. A nil field is omitted and
// leaves the stored value unchanged; a pointer to the zero value is sent
// as an empty value and clears the field, matching the backend's
// clear-field convention.
type ProductUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MonitoringConfigCreate is the monitoring settings payload for a new
// component.
type MonitoringConfigCreate struct {
	HealthURL            string `json:"healthUrl"`
	CheckIntervalSeconds int    `json:"checkIntervalSeconds"`
	TimeoutSeconds       int    `json:"timeoutSeconds"`
	ExpectedStatusCode   int    `json:"expectedStatusCode"`
	MaxResponseTimeMs    int    `json:"maxResponseTimeMs"`
	FailuresBeforeOutage int    `json:"failuresBeforeOutage"`
}

// MonitoringConfigUpdate is a partial monitoring settings update.
type MonitoringConfigUpdate struct {
	HealthURL            *string `json:"healthUrl,omitempty"`
	CheckIntervalSeconds *int    `json:"checkIntervalSeconds,omitempty"`
	TimeoutSeconds       *int    `json:"timeoutSeconds,omitempty"`
	ExpectedStatusCode   *int    `json:"expectedStatusCode,omitempty"`
	MaxResponseTimeMs    *int    `json:"maxResponseTimeMs,omitempty"`
	FailuresBeforeOutage *int    `json:"failuresBeforeOutage,omitempty"`
}

// ComponentCreate is the payload for creating a component.
type ComponentCreate struct {
	ProductID        int64                  `json:"productId"`
	Name             string                 `json:"name"`
	Type             status.ComponentType   `json:"type"`
	MonitoringConfig MonitoringConfigCreate `json:"monitoringConfig"`
}

// ComponentUpdate is a partial component update.
type ComponentUpdate struct {
	Name             *string                 `json:"name,omitempty"`
	Type             *status.ComponentType   `json:"type,omitempty"`
	MonitoringConfig *MonitoringConfigUpdate `json:"monitoringConfig,omitempty"`
}

// String returns a pointer to s, for building partial updates.
func String(s string) *string { return &s }

// Int returns a pointer to i, for building partial updates.
func Int(i int) *int { return &i }

// Type returns a pointer to t, for building partial updates.
func Type(t status.ComponentType) *status.ComponentType { return &t }
