package api

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Env          string            `json:"env,omitempty"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
