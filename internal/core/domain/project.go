// Package domain contains the core record types of the retention engine.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

// =============================================================================
// Project
// =============================================================================

// Project is a deployable application. Identity is ID.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// Environment
// =============================================================================

// Environment is a deployment target such as "Staging" or "Production".
// Identity is ID.
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
