package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `
	id::text,
	organization_id::text,
	COALESCE(name, ''),
	industry,
	website,
	email,
	phone,
	created_at,
	updated_at`

// GetCompany returns the organization's company with the given id, or nil
func (q *Queries) GetCompany(ctx context.Context, orgID, id string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + `
	FROM companies
	WHERE organization_id = $1 AND id = $2`

	co, err := scanCompany(q.conn.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return co, nil
}

// ListCompaniesByIDs returns the organization's companies among ids, in no particular order
func (q *Queries) ListCompaniesByIDs(ctx context.Context, orgID string, ids []string) ([]models.Company, error) {
	companies := make([]models.Company, 0, len(ids))
	if len(ids) == 0 {
		return companies, nil
	}
	query := `SELECT ` + companyColumns + `
	FROM companies
	WHERE organization_id = $1 AND id = ANY($2::uuid[])`

	rows, err := q.conn.Query(ctx, query, orgID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		co, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *co)
	}
	return companies, rows.Err()
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var co models.Company
	if err := row.Scan(
		&co.ID,
		&co.OrganizationID,
		&co.Name,
		&co.Industry,
		&co.Website,
		&co.Email,
		&co.Phone,
		&co.CreatedAt,
		&co.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &co, nil
}
