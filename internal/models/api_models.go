package models

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type (
	ServiceInfo struct {
		Name        string                  `json:"name"`
		Version     string                  `json:"version"`
		Message     string                  `json:"message"`
		Endpoints   map[string]EndpointInfo `json:"endpoints"`
		DevelopedBy string                  `json:"developed_by"`
	}
	EndpointInfo struct {
		Method      string          `json:"method"`
		Description string          `json:"description"`
		Example     *AnalyzeRequest `json:"example,omitempty"`
	}
)

type HealthStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	Analyzer    string `json:"analyzer"`
	Keywords    string `json:"keywords"`
	RateLimiter string `json:"rate_limiter"`
}
