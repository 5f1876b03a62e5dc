// Package status provides the status-dashboard domain model: raw backend
// records, display view models, status severity ranking, and the pure
// transformations between them.
package status

// ComponentType identifies the kind of monitored component.
type ComponentType string

const (
	ComponentBackend  ComponentType = "BACKEND"
	ComponentFrontend ComponentType = "FRONTEND"
)

// DescriptionPlaceholder is substituted for a blank or absent product
// description in the mapped view.
const DescriptionPlaceholder = "No description provided"

// MonitoringConfig holds the health-check settings of a component.
type MonitoringConfig struct {
	HealthURL            string `json:"healthUrl"`
	CheckIntervalSeconds int    `json:"checkIntervalSeconds"`
	TimeoutSeconds       int    `json:"timeoutSeconds"`
	ExpectedStatusCode   int    `json:"expectedStatusCode"`
	MaxResponseTimeMs    int    `json:"maxResponseTimeMs"`
	FailuresBeforeOutage int    `json:"failuresBeforeOutage"`
}

// DayLogRecord is one day of raw health-check history for a component,
// exactly as served by the backend.
type DayLogRecord struct {
	Date             string  `json:"date"`
	TotalChecks      int     `json:"totalChecks"`
	SuccessfulChecks int     `json:"successfulChecks"`
	Uptime           float64 `json:"uptime"`
	AvgResponseTime  float64 `json:"avgResponseTime"`
	MaxResponseTime  float64 `json:"maxResponseTime"`
	OverallStatus    string  `json:"overallStatus"`
}

// ComponentRecord is a raw monitored component as served by the backend.
type ComponentRecord struct {
	ID                 int64            `json:"id"`
	ProductID          int64            `json:"productId"`
	Name               string           `json:"name"`
	Type               ComponentType    `json:"type"`
	MonitoringConfig   MonitoringConfig `json:"monitoringConfig"`
	CurrentStatus      string           `json:"currentStatus"`
	IsActive           bool             `json:"isActive"`
	HealthcheckDayLogs []DayLogRecord   `json:"healthcheckDayLogs"`
}

// ProductRecord is a raw product as served by the backend.
type ProductRecord struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsVisible   bool              `json:"isVisible"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
	Components  []ComponentRecord `json:"components"`
}

// ProductPage is a single page of a paginated product listing.
type ProductPage struct {
	PageSize      int             `json:"pageSize"`
	PageCount     int             `json:"pageCount"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Content       []ProductRecord `json:"content"`
}

// DayLog is one day of health-check history prepared for display.
type DayLog struct {
	Date              string      `json:"date"`
	Status            StatusLevel `json:"status"`
	Uptime            float64     `json:"uptime"`
	AvgResponseTimeMs float64     `json:"avgResponseTimeMs"`
	MaxResponseTimeMs float64     `json:"maxResponseTimeMs"`
	TotalChecks       int         `json:"totalChecks"`
	SuccessfulChecks  int         `json:"successfulChecks"`
}

// Component is the display view of an active monitored component.
// Latest-metric fields are nil when the component has no history.
type Component struct {
	ID                 int64            `json:"id"`
	ProductID          int64            `json:"productId"`
	Name               string           `json:"name"`
	Type               ComponentType    `json:"type"`
	MonitoringConfig   MonitoringConfig `json:"monitoringConfig"`
	Status             StatusLevel      `json:"status"`
	LatestLogDate      *string          `json:"latestLogDate"`
	LatestUptime       *float64         `json:"latestUptime"`
	LatestAvgResponse  *float64         `json:"latestAvgResponseTimeMs"`
	HealthcheckDayLogs []DayLog         `json:"healthcheckDayLogs"`
}

// Product is the display view of a visible product. It always carries at
// least one component and a non-empty description.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      StatusLevel `json:"status"`
	Components  []Component `json:"components"`
}
