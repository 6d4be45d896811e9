package api

import "github.com/voxhire/voxhire/server/domain/entities"

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// LiveSessionsResponse lists the currently running interview sessions
type LiveSessionsResponse struct {
	Count    int                        `json:"count"`
	Sessions []entities.SessionSnapshot `json:"sessions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
