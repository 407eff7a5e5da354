package db

import (
	"fmt"
	"strings"

	"github.com/bizsuite/bizsuite/internal/models"
)

const contactColumns = `
	id::text,
	organization_id::text,
	company_id::text,
	first_name,
	last_name,
	email,
	phone,
	mobile,
	job_title,
	department,
	address,
	city,
	state,
	postal_code,
	country,
	status,
	is_primary,
	assigned_to::text,
	tags,
	notes,
	created_by::text,
	created_at,
	updated_at`

// searchColumns are matched with a case-sensitive substring LIKE
var searchColumns = []string{"first_name", "last_name", "email", "phone", "mobile"}

// buildContactListQuery turns a filter into a SELECT over contacts. The
// organization predicate is always present; every other filter is ANDed in.
func buildContactListQuery(orgID string, filter models.ContactFilter) (string, []any) {
	whereConditions := []string{"organization_id = $1"}
	args := []any{orgID}
	argIndex := 2

	if filter.CompanyID != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("company_id = $%d", argIndex))
		args = append(args, filter.CompanyID)
		argIndex++
	}

	if filter.Status != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(filter.Status))
		argIndex++
	}

	if filter.AssignedTo != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("assigned_to = $%d", argIndex))
		args = append(args, filter.AssignedTo)
		argIndex++
	}

	if filter.Search != "" {
		ors := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			ors = append(ors, fmt.Sprintf("%s LIKE $%d", col, argIndex))
		}
		whereConditions = append(whereConditions, "("+strings.Join(ors, " OR ")+")")
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	query := fmt.Sprintf(`SELECT %s
	FROM contacts
	WHERE %s
	ORDER BY created_at DESC, id DESC`, contactColumns, strings.Join(whereConditions, " AND "))
	return query, args
}

// escapeLike makes LIKE wildcards in s match literally (backslash is the
// default LIKE escape character in PostgreSQL)
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildContactUpdate returns the SET list and args for a partial update.
// Args start at $3; $1 and $2 are reserved for organization and contact id.
func buildContactUpdate(in models.UpdateContactInput, tagsJSON *string) ([]string, []any) {
	var sets []string
	var args []any
	argIndex := 3

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIndex))
		args = append(args, v)
		argIndex++
	}

	if in.CompanyID != nil {
		add("company_id", *in.CompanyID)
	}
	if in.FirstName != nil {
		add("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		add("last_name", *in.LastName)
	}
	if in.Email != nil {
		add("email", *in.Email)
	}
	if in.Phone != nil {
		add("phone", *in.Phone)
	}
	if in.Mobile != nil {
		add("mobile", *in.Mobile)
	}
	if in.JobTitle != nil {
		add("job_title", *in.JobTitle)
	}
	if in.Department != nil {
		add("department", *in.Department)
	}
	if in.Address != nil {
		add("address", *in.Address)
	}
	if in.City != nil {
		add("city", *in.City)
	}
	if in.State != nil {
		add("state", *in.State)
	}
	if in.PostalCode != nil {
		add("postal_code", *in.PostalCode)
	}
	if in.Country != nil {
		add("country", *in.Country)
	}
	if in.Status != nil {
		add("status", string(*in.Status))
	}
	if in.IsPrimary != nil {
		add("is_primary", *in.IsPrimary)
	}
	if in.AssignedTo != nil {
		add("assigned_to", *in.AssignedTo)
	}
	if tagsJSON != nil {
		sets = append(sets, fmt.Sprintf("tags = $%d::jsonb", argIndex))
		args = append(args, *tagsJSON)
		argIndex++
	}
	if in.Notes != nil {
		add("notes", *in.Notes)
	}
	return sets, args
}
