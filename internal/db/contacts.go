package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetContact returns the contact with the given id in the organization, or nil
func (q *Queries) GetContact(ctx context.Context, orgID, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + `
	FROM contacts
	WHERE organization_id = $1 AND id = $2`

	c, err := scanContact(q.conn.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns the organization's contacts matching filter, newest first
func (q *Queries) ListContacts(ctx context.Context, orgID string, filter models.ContactFilter) ([]models.Contact, error) {
	query, args := buildContactListQuery(orgID, filter)
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// InsertContact inserts a fully populated contact row
func (q *Queries) InsertContact(ctx context.Context, c models.Contact) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}
	query := `
	    INSERT INTO contacts (
	        id, organization_id, company_id, first_name, last_name, email, phone, mobile,
	        job_title, department, address, city, state, postal_code, country,
	        status, is_primary, assigned_to, tags, notes, created_by, created_at, updated_at
	    ) VALUES (
	        $1, $2, $3, $4, $5, $6, $7, $8,
	        $9, $10, $11, $12, $13, $14, $15,
	        $16, $17, $18, $19::jsonb, $20, $21, $22, $23
	    )
	`
	_, err = q.conn.Exec(ctx, query,
		c.ID, c.OrganizationID, c.CompanyID, c.FirstName, c.LastName, c.Email, c.Phone, c.Mobile,
		c.JobTitle, c.Department, c.Address, c.City, c.State, c.PostalCode, c.Country,
		string(c.Status), c.IsPrimary, c.AssignedTo, tags, c.Notes, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// UpdateContact applies the non-nil fields of in and touches updated_at.
// It reports whether a row matched.
func (q *Queries) UpdateContact(ctx context.Context, orgID, id string, in models.UpdateContactInput, updatedAt time.Time) (bool, error) {
	var tagsJSON *string
	if in.Tags != nil {
		s, err := encodeTags(*in.Tags)
		if err != nil {
			return false, err
		}
		tagsJSON = &s
	}

	sets, args := buildContactUpdate(in, tagsJSON)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+3))
	args = append(args, updatedAt)

	query := fmt.Sprintf(`UPDATE contacts SET %s WHERE organization_id = $1 AND id = $2`, strings.Join(sets, ", "))
	cmd, err := q.conn.Exec(ctx, query, append([]any{orgID, id}, args...)...)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// DeleteContact removes a contact permanently and reports whether a row matched
func (q *Queries) DeleteContact(ctx context.Context, orgID, id string) (bool, error) {
	cmd, err := q.conn.Exec(ctx, `DELETE FROM contacts WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ClearPrimaryContacts unsets is_primary on every contact of the company
// except exceptID (which may be empty)
func (q *Queries) ClearPrimaryContacts(ctx context.Context, orgID, companyID, exceptID string, updatedAt time.Time) (int64, error) {
	query := `
	    UPDATE contacts
	    SET is_primary = false, updated_at = $3
	    WHERE organization_id = $1 AND company_id = $2 AND is_primary`
	args := []any{orgID, companyID, updatedAt}
	if exceptID != "" {
		query += ` AND id <> $4`
		args = append(args, exceptID)
	}
	cmd, err := q.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear primary contacts: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	var status string
	var tags []byte
	if err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.CompanyID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Mobile,
		&c.JobTitle,
		&c.Department,
		&c.Address,
		&c.City,
		&c.State,
		&c.PostalCode,
		&c.Country,
		&status,
		&c.IsPrimary,
		&c.AssignedTo,
		&tags,
		&c.Notes,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = models.ContactStatus(status)
	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, err
	}
	c.Tags = decoded
	return &c, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]string, error) {
	tags := []string{}
	if len(raw) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
