package db

import (
	"context"
	"time"

	"github.com/bizsuite/bizsuite/internal/models"
)

// ContactQueries is the set of statements the contact service runs.
// Lookups return (nil, nil) when no row matches.
type ContactQueries interface {
	GetContact(ctx context.Context, orgID, id string) (*models.Contact, error)
	ListContacts(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.Contact, error)
	InsertContact(ctx context.Context, c models.Contact) error
	UpdateContact(ctx context.Context, orgID, id string, in models.UpdateContactInput, updatedAt time.Time) (bool, error)
	DeleteContact(ctx context.Context, orgID, id string) (bool, error)
	ClearPrimaryContacts(ctx context.Context, orgID, companyID, exceptID string, updatedAt time.Time) (int64, error)

	GetCompany(ctx context.Context, orgID, id string) (*models.Company, error)
	ListCompaniesByIDs(ctx context.Context, orgID string, ids []string) ([]models.Company, error)
}

// Store is ContactQueries plus transactions
type Store interface {
	ContactQueries
	WithTx(ctx context.Context, fn func(q ContactQueries) error) error
}

var _ Store = (*Database)(nil)
