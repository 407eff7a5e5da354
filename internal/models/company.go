package models

import "time"

// Company is the CRM account a contact belongs to. This service only reads it.
// Backed by table `companies`
type Company struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Industry       *string   `json:"industry" db:"industry"`
	Website        *string   `json:"website" db:"website"`
	Email          *string   `json:"email" db:"email"`
	Phone          *string   `json:"phone" db:"phone"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
