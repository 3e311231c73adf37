package domain

import "time"

// ServiceStatus is the probe result for one sibling service
type ServiceStatus struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Healthy   bool   `json:"healthy"`
	Optional  bool   `json:"optional"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// ServiceReport aggregates probe results across the service registry
type ServiceReport struct {
	Services  []ServiceStatus `json:"services"`
	Healthy   int             `json:"healthy"`
	Total     int             `json:"total"`
	AllUp     bool            `json:"allUp"`
	CheckedAt time.Time       `json:"checkedAt"`
}
