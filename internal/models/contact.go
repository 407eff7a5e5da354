package models

import "time"

// ContactStatus mirrors the contacts.status check constraint
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
)

// IsValid checks if the contact status is one of the known values
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusActive, ContactStatusInactive:
		return true
	default:
		return false
	}
}

// Contact represents a person at a customer or prospect organization.
// Backed by table `contacts`
type Contact struct {
	ID             string        `json:"id" db:"id"`
	OrganizationID string        `json:"organizationId" db:"organization_id"`
	CompanyID      *string       `json:"companyId" db:"company_id"`
	FirstName      string        `json:"firstName" db:"first_name"`
	LastName       string        `json:"lastName" db:"last_name"`
	Email          string        `json:"email" db:"email"`
	Phone          *string       `json:"phone" db:"phone"`
	Mobile         *string       `json:"mobile" db:"mobile"`
	JobTitle       *string       `json:"jobTitle" db:"job_title"`
	Department     *string       `json:"department" db:"department"`
	Address        *string       `json:"address" db:"address"`
	City           *string       `json:"city" db:"city"`
	State          *string       `json:"state" db:"state"`
	PostalCode     *string       `json:"postalCode" db:"postal_code"`
	Country        *string       `json:"country" db:"country"`
	Status         ContactStatus `json:"status" db:"status"`
	IsPrimary      bool          `json:"isPrimary" db:"is_primary"`
	AssignedTo     *string       `json:"assignedTo" db:"assigned_to"`
	Tags           []string      `json:"tags" db:"tags"`
	Notes          *string       `json:"notes" db:"notes"`
	CreatedBy      string        `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// ContactWithCompany is a contact with its company attached (nil when the
// contact has no company or the company no longer exists)
type ContactWithCompany struct {
	Contact
	Company *Company `json:"company"`
}

// ContactFilter narrows a contact listing. Zero-value fields are ignored.
type ContactFilter struct {
	CompanyID  string        `form:"companyId" binding:"omitempty,uuid"`
	Status     ContactStatus `form:"status" binding:"omitempty,oneof=active inactive"`
	AssignedTo string        `form:"assignedTo" binding:"omitempty,uuid"`
	Search     string        `form:"search"`
}

// CreateContactInput is the payload for POST /contacts
type CreateContactInput struct {
	CompanyID  *string  `json:"companyId" binding:"omitempty,uuid"`
	FirstName  string   `json:"firstName" binding:"required,max=100"`
	LastName   string   `json:"lastName" binding:"required,max=100"`
	Email      string   `json:"email" binding:"required,email,max=255"`
	Phone      *string  `json:"phone" binding:"omitempty,max=50"`
	Mobile     *string  `json:"mobile" binding:"omitempty,max=50"`
	JobTitle   *string  `json:"jobTitle" binding:"omitempty,max=100"`
	Department *string  `json:"department" binding:"omitempty,max=100"`
	Address    *string  `json:"address"`
	City       *string  `json:"city" binding:"omitempty,max=100"`
	State      *string  `json:"state" binding:"omitempty,max=100"`
	PostalCode *string  `json:"postalCode" binding:"omitempty,max=20"`
	Country    *string  `json:"country" binding:"omitempty,max=100"`
	IsPrimary  bool     `json:"isPrimary"`
	AssignedTo *string  `json:"assignedTo" binding:"omitempty,uuid"`
	Tags       []string `json:"tags"`
	Notes      *string  `json:"notes"`
}

// UpdateContactInput is the payload for PUT /contacts/:id.
// Nil fields are left unchanged; Tags replaces the whole list when non-nil.
type UpdateContactInput struct {
	CompanyID  *string        `json:"companyId" binding:"omitempty,uuid"`
	FirstName  *string        `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName   *string        `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email      *string        `json:"email" binding:"omitempty,email,max=255"`
	Phone      *string        `json:"phone" binding:"omitempty,max=50"`
	Mobile     *string        `json:"mobile" binding:"omitempty,max=50"`
	JobTitle   *string        `json:"jobTitle" binding:"omitempty,max=100"`
	Department *string        `json:"department" binding:"omitempty,max=100"`
	Address    *string        `json:"address"`
	City       *string        `json:"city" binding:"omitempty,max=100"`
	State      *string        `json:"state" binding:"omitempty,max=100"`
	PostalCode *string        `json:"postalCode" binding:"omitempty,max=20"`
	Country    *string        `json:"country" binding:"omitempty,max=100"`
	Status     *ContactStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	IsPrimary  *bool          `json:"isPrimary"`
	AssignedTo *string        `json:"assignedTo" binding:"omitempty,uuid"`
	Tags       *[]string      `json:"tags"`
	Notes      *string        `json:"notes"`
}
