package models

import "time"

// Event represents a loggable action in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "auth.login", "product.create"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	Actor     *string   `json:"actor,omitempty"` // Nullable for system events
	CreatedAt time.Time `json:"created_at"`
}
