package types

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse acknowledges an operation that returns no resource
type MessageResponse struct {
	Message string `json:"message"`
}

// ComponentStatus reports the state of one dependency in a health check
type ComponentStatus struct {
	Status string `json:"status"`
	Name   string `json:"name,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Database  ComponentStatus `json:"database"`
	Engine    ComponentStatus `json:"engine"`
}

// VersionResponse describes the running build
type VersionResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Status values used in health responses
const (
	StatusOK            = "ok"
	StatusDegraded      = "degraded"
	StatusUnhealthy     = "unhealthy"
	StatusHealthy       = "healthy"
	StatusNotConfigured = "not configured"
	StatusUnavailable   = "unavailable"
)
