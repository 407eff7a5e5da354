package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizsuite/bizsuite/internal/db"
	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrContactNotFound is returned when a contact is absent or belongs to another organization
	ErrContactNotFound = errors.New("contact not found")
	// ErrInconsistentWrite is returned when a write succeeded but the row could not be read back
	ErrInconsistentWrite = errors.New("contact write could not be read back")
)

// ContactService implements contact CRUD on top of a db.Store
type ContactService struct {
	store db.Store
	now   func() time.Time
	newID func() string
}

// NewContactService creates a new contact service
func NewContactService(store db.Store) *ContactService {
	return &ContactService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time source, used by tests
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

// Create inserts a new active contact. When the contact is primary for a
// company, every other contact of that company loses the flag in the same
// transaction.
func (s *ContactService) Create(ctx context.Context, orgID, actorID string, in models.CreateContactInput) (*models.Contact, error) {
	now := s.now()
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	contact := models.Contact{
		ID:             s.newID(),
		OrganizationID: orgID,
		CompanyID:      in.CompanyID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Mobile:         in.Mobile,
		JobTitle:       in.JobTitle,
		Department:     in.Department,
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		Country:        in.Country,
		Status:         models.ContactStatusActive,
		IsPrimary:      in.IsPrimary,
		AssignedTo:     in.AssignedTo,
		Tags:           tags,
		Notes:          in.Notes,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var created *models.Contact
	err := s.store.WithTx(ctx, func(q db.ContactQueries) error {
		if in.IsPrimary && in.CompanyID != nil && *in.CompanyID != "" {
			if _, err := q.ClearPrimaryContacts(ctx, orgID, *in.CompanyID, "", now); err != nil {
				return err
			}
		}
		if err := q.InsertContact(ctx, contact); err != nil {
			return err
		}
		var err error
		created, err = q.GetContact(ctx, orgID, contact.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	if created == nil {
		return nil, ErrInconsistentWrite
	}
	return created, nil
}

// GetByID returns the contact, or nil when it does not exist in the organization
func (s *ContactService) GetByID(ctx context.Context, orgID, id string) (*models.Contact, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.store.GetContact(ctx, orgID, id)
}

// GetByIDWithCompany is GetByID with the contact's company attached.
// The company lookup is scoped to the organization as well.
func (s *ContactService) GetByIDWithCompany(ctx context.Context, orgID, id string) (*models.ContactWithCompany, error) {
	contact, err := s.GetByID(ctx, orgID, id)
	if err != nil || contact == nil {
		return nil, err
	}
	result := &models.ContactWithCompany{Contact: *contact}
	if contact.CompanyID != nil && *contact.CompanyID != "" {
		company, err := s.store.GetCompany(ctx, orgID, *contact.CompanyID)
		if err != nil {
			return nil, err
		}
		result.Company = company
	}
	return result, nil
}

// List returns the organization's contacts matching filter, newest first
func (s *ContactService) List(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.Contact, error) {
	return s.store.ListContacts(ctx, orgID, filter)
}

// ListWithCompany is List with each contact's company attached, in the same order
func (s *ContactService) ListWithCompany(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.ContactWithCompany, error) {
	contacts, err := s.List(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	companyIDs := make([]string, 0)
	for _, c := range contacts {
		if c.CompanyID == nil || *c.CompanyID == "" {
			continue
		}
		if _, ok := seen[*c.CompanyID]; ok {
			continue
		}
		seen[*c.CompanyID] = struct{}{}
		companyIDs = append(companyIDs, *c.CompanyID)
	}

	byID := make(map[string]models.Company, len(companyIDs))
	if len(companyIDs) > 0 {
		companies, err := s.store.ListCompaniesByIDs(ctx, orgID, companyIDs)
		if err != nil {
			return nil, err
		}
		for _, co := range companies {
			byID[co.ID] = co
		}
	}

	result := make([]models.ContactWithCompany, 0, len(contacts))
	for _, c := range contacts {
		item := models.ContactWithCompany{Contact: c}
		if c.CompanyID != nil {
			if co, ok := byID[*c.CompanyID]; ok {
				item.Company = &co
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// Update applies a partial update. When the contact ends up primary, the flag
// is cleared on the other contacts of its resulting company in the same
// transaction.
func (s *ContactService) Update(ctx context.Context, orgID, id string, in models.UpdateContactInput) (*models.Contact, error) {
	if !validID(id) {
		return nil, ErrContactNotFound
	}
	now := s.now()

	var updated *models.Contact
	err := s.store.WithTx(ctx, func(q db.ContactQueries) error {
		existing, err := q.GetContact(ctx, orgID, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrContactNotFound
		}

		primary := existing.IsPrimary
		if in.IsPrimary != nil {
			primary = *in.IsPrimary
		}
		companyID := existing.CompanyID
		if in.CompanyID != nil {
			companyID = in.CompanyID
		}
		if primary && companyID != nil && *companyID != "" {
			if _, err := q.ClearPrimaryContacts(ctx, orgID, *companyID, id, now); err != nil {
				return err
			}
		}

		if _, err := q.UpdateContact(ctx, orgID, id, in, now); err != nil {
			return err
		}
		updated, err = q.GetContact(ctx, orgID, id)
		return err
	})
	if errors.Is(err, ErrContactNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if updated == nil {
		return nil, ErrInconsistentWrite
	}
	return updated, nil
}

// Delete removes the contact permanently
func (s *ContactService) Delete(ctx context.Context, orgID, id string) error {
	if !validID(id) {
		return ErrContactNotFound
	}
	existing, err := s.store.GetContact(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if existing == nil {
		return ErrContactNotFound
	}
	deleted, err := s.store.DeleteContact(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !deleted {
		// removed concurrently between the lookup and the delete
		return ErrContactNotFound
	}
	return nil
}

// validID reports whether id can name a row; ids are UUIDs
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
