// Package testhelpers provides an in-memory db.Store for service and handler tests.
package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bizsuite/bizsuite/internal/db"
	"github.com/bizsuite/bizsuite/internal/models"
)

// MemStore is a db.Store kept in maps. WithTx snapshots the contacts and
// restores them when the callback fails.
type MemStore struct {
	mu        sync.Mutex
	contacts  map[string]models.Contact
	companies map[string]models.Company

	// InsertErr, when set, is returned by InsertContact
	InsertErr error
	// HideWrites makes GetContact miss rows written by Insert/Update
	HideWrites bool
	// Writes counts successful insert, update, clear and delete statements
	Writes int

	written map[string]bool
}

var _ db.Store = (*MemStore)(nil)

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		contacts:  make(map[string]models.Contact),
		companies: make(map[string]models.Company),
		written:   make(map[string]bool),
	}
}

// AddCompany seeds a company
func (s *MemStore) AddCompany(c models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

// AddContact seeds a contact without counting it as a write
func (s *MemStore) AddContact(c models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = cloneContact(c)
}

// Contacts returns every stored contact regardless of organization
func (s *MemStore) Contacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, cloneContact(c))
	}
	return out
}

func (s *MemStore) WithTx(ctx context.Context, fn func(q db.ContactQueries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]models.Contact, len(s.contacts))
	for k, v := range s.contacts {
		snapshot[k] = v
	}
	writes := s.Writes

	if err := fn(memTx{s}); err != nil {
		s.contacts = snapshot
		s.Writes = writes
		return err
	}
	return nil
}

func (s *MemStore) GetContact(ctx context.Context, orgID, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getContact(orgID, id), nil
}

func (s *MemStore) ListContacts(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listContacts(orgID, filter), nil
}

func (s *MemStore) InsertContact(ctx context.Context, c models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertContact(c)
}

func (s *MemStore) UpdateContact(ctx context.Context, orgID, id string, in models.UpdateContactInput, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateContact(orgID, id, in, updatedAt), nil
}

func (s *MemStore) DeleteContact(ctx context.Context, orgID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteContact(orgID, id), nil
}

func (s *MemStore) ClearPrimaryContacts(ctx context.Context, orgID, companyID, exceptID string, updatedAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearPrimary(orgID, companyID, exceptID, updatedAt), nil
}

func (s *MemStore) GetCompany(ctx context.Context, orgID, id string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCompany(orgID, id), nil
}

func (s *MemStore) ListCompaniesByIDs(ctx context.Context, orgID string, ids []string) ([]models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Company, 0, len(ids))
	for _, id := range ids {
		if co := s.getCompany(orgID, id); co != nil {
			out = append(out, *co)
		}
	}
	return out, nil
}

// memTx runs statements with the store lock already held by WithTx
type memTx struct{ s *MemStore }

func (t memTx) GetContact(ctx context.Context, orgID, id string) (*models.Contact, error) {
	return t.s.getContact(orgID, id), nil
}

func (t memTx) ListContacts(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.Contact, error) {
	return t.s.listContacts(orgID, filter), nil
}

func (t memTx) InsertContact(ctx context.Context, c models.Contact) error {
	return t.s.insertContact(c)
}

func (t memTx) UpdateContact(ctx context.Context, orgID, id string, in models.UpdateContactInput, updatedAt time.Time) (bool, error) {
	return t.s.updateContact(orgID, id, in, updatedAt), nil
}

func (t memTx) DeleteContact(ctx context.Context, orgID, id string) (bool, error) {
	return t.s.deleteContact(orgID, id), nil
}

func (t memTx) ClearPrimaryContacts(ctx context.Context, orgID, companyID, exceptID string, updatedAt time.Time) (int64, error) {
	return t.s.clearPrimary(orgID, companyID, exceptID, updatedAt), nil
}

func (t memTx) GetCompany(ctx context.Context, orgID, id string) (*models.Company, error) {
	return t.s.getCompany(orgID, id), nil
}

func (t memTx) ListCompaniesByIDs(ctx context.Context, orgID string, ids []string) ([]models.Company, error) {
	out := make([]models.Company, 0, len(ids))
	for _, id := range ids {
		if co := t.s.getCompany(orgID, id); co != nil {
			out = append(out, *co)
		}
	}
	return out, nil
}

func (s *MemStore) getContact(orgID, id string) *models.Contact {
	c, ok := s.contacts[id]
	if !ok || c.OrganizationID != orgID {
		return nil
	}
	if s.HideWrites && s.written[id] {
		return nil
	}
	out := cloneContact(c)
	return &out
}

func (s *MemStore) listContacts(orgID string, f models.ContactFilter) []models.Contact {
	out := make([]models.Contact, 0)
	for _, c := range s.contacts {
		if c.OrganizationID != orgID {
			continue
		}
		if f.CompanyID != "" && (c.CompanyID == nil || *c.CompanyID != f.CompanyID) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && (c.AssignedTo == nil || *c.AssignedTo != f.AssignedTo) {
			continue
		}
		if f.Search != "" && !matchesSearch(c, f.Search) {
			continue
		}
		out = append(out, cloneContact(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(c models.Contact, term string) bool {
	fields := []string{c.FirstName, c.LastName, c.Email}
	if c.Phone != nil {
		fields = append(fields, *c.Phone)
	}
	if c.Mobile != nil {
		fields = append(fields, *c.Mobile)
	}
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

func (s *MemStore) insertContact(c models.Contact) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.contacts[c.ID] = cloneContact(c)
	s.written[c.ID] = true
	s.Writes++
	return nil
}

func (s *MemStore) updateContact(orgID, id string, in models.UpdateContactInput, updatedAt time.Time) bool {
	c, ok := s.contacts[id]
	if !ok || c.OrganizationID != orgID {
		return false
	}
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setPtr := func(dst **string, v *string) {
		if v != nil {
			val := *v
			*dst = &val
		}
	}
	setPtr(&c.CompanyID, in.CompanyID)
	setStr(&c.FirstName, in.FirstName)
	setStr(&c.LastName, in.LastName)
	setStr(&c.Email, in.Email)
	setPtr(&c.Phone, in.Phone)
	setPtr(&c.Mobile, in.Mobile)
	setPtr(&c.JobTitle, in.JobTitle)
	setPtr(&c.Department, in.Department)
	setPtr(&c.Address, in.Address)
	setPtr(&c.City, in.City)
	setPtr(&c.State, in.State)
	setPtr(&c.PostalCode, in.PostalCode)
	setPtr(&c.Country, in.Country)
	setPtr(&c.AssignedTo, in.AssignedTo)
	setPtr(&c.Notes, in.Notes)
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.IsPrimary != nil {
		c.IsPrimary = *in.IsPrimary
	}
	if in.Tags != nil {
		c.Tags = append([]string{}, (*in.Tags)...)
	}
	c.UpdatedAt = updatedAt
	s.contacts[id] = c
	s.written[id] = true
	s.Writes++
	return true
}

func (s *MemStore) deleteContact(orgID, id string) bool {
	c, ok := s.contacts[id]
	if !ok || c.OrganizationID != orgID {
		return false
	}
	delete(s.contacts, id)
	s.Writes++
	return true
}

func (s *MemStore) clearPrimary(orgID, companyID, exceptID string, updatedAt time.Time) int64 {
	var n int64
	for id, c := range s.contacts {
		if c.OrganizationID != orgID || c.CompanyID == nil || *c.CompanyID != companyID || !c.IsPrimary || id == exceptID {
			continue
		}
		c.IsPrimary = false
		c.UpdatedAt = updatedAt
		s.contacts[id] = c
		n++
	}
	if n > 0 {
		s.Writes++
	}
	return n
}

func (s *MemStore) getCompany(orgID, id string) *models.Company {
	co, ok := s.companies[id]
	if !ok || co.OrganizationID != orgID {
		return nil
	}
	return &co
}

func cloneContact(c models.Contact) models.Contact {
	if c.Tags != nil {
		c.Tags = append([]string{}, c.Tags...)
	} else {
		c.Tags = []string{}
	}
	return c
}
