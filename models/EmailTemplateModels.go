package models

import "time"

// EmailTemplate is a stored override for one workflow email type. The
// email service picks the is_default row per type, falling back to its
// built-in templates.
type EmailTemplate struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	TemplateType string    `json:"template_type" example:"quote_approved"`
	IsDefault    bool      `json:"is_default"`
	CreatedBy    int       `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EmailTemplateRequest is the create/update payload.
type EmailTemplateRequest struct {
	Name         string `json:"name" binding:"required"`
	Subject      string `json:"subject" binding:"required"`
	Body         string `json:"body" binding:"required"`
	TemplateType string `json:"template_type" binding:"required"`
	IsDefault    bool   `json:"is_default"`
}
