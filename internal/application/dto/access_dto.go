package dto

import "time"

// UpsertPermissionRequest body de POST /api/access/page-permissions y /action-permissions.
type UpsertPermissionRequest struct {
	Key     string `json:"key"`
	MinRole string `json:"min_role"` // opcional: staff si se crea, sin cambio si se actualiza
}

// PermissionRuleDTO regla de acceso configurada.
type PermissionRuleDTO struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Key           string    `json:"key"`
	MinRole       string    `json:"min_role"`
	RequiredLevel int       `json:"required_level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AllowedResponse respuesta de GET /api/access/{pages|actions}/:name/allowed.
type AllowedResponse struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason"`
	Role          string `json:"role"`
	RequiredLevel *int   `json:"required_level,omitempty"` // nil si ningún rol alcanza el nivel
	RequiredRole  string `json:"required_role,omitempty"`
}
