package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whereClause(t *testing.T, query string) string {
	t.Helper()
	start := strings.Index(query, "WHERE ")
	end := strings.Index(query, "ORDER BY")
	require.True(t, start >= 0 && end > start, "query has no WHERE/ORDER BY: %s", query)
	return strings.TrimSpace(query[start+len("WHERE ") : end])
}

func TestBuildContactListQuery_OrganizationOnly(t *testing.T) {
	query, args := buildContactListQuery("org-1", models.ContactFilter{})

	assert.Equal(t, "organization_id = $1", whereClause(t, query))
	assert.Equal(t, []any{"org-1"}, args)
	assert.Contains(t, query, "ORDER BY created_at DESC")
}

func TestBuildContactListQuery_AllFilters(t *testing.T) {
	query, args := buildContactListQuery("org-1", models.ContactFilter{
		CompanyID:  "co-1",
		Status:     models.ContactStatusActive,
		AssignedTo: "user-9",
		Search:     "smith",
	})

	where := whereClause(t, query)
	assert.Equal(t,
		"organization_id = $1 AND company_id = $2 AND status = $3 AND assigned_to = $4 AND "+
			"(first_name LIKE $5 OR last_name LIKE $5 OR email LIKE $5 OR phone LIKE $5 OR mobile LIKE $5)",
		where)
	assert.Equal(t, []any{"org-1", "co-1", "active", "user-9", "%smith%"}, args)
}

func TestBuildContactListQuery_SearchOnlyUsesNextPlaceholder(t *testing.T) {
	query, args := buildContactListQuery("org-1", models.ContactFilter{Search: "jane"})

	where := whereClause(t, query)
	assert.True(t, strings.HasPrefix(where, "organization_id = $1 AND (first_name LIKE $2"))
	assert.Equal(t, 5, strings.Count(where, "$2"))
	assert.Len(t, args, 2)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

func TestBuildContactUpdate(t *testing.T) {
	first := "Jane"
	primary := true
	status := models.ContactStatusInactive
	tags := `["vip"]`

	sets, args := buildContactUpdate(models.UpdateContactInput{
		FirstName: &first,
		Status:    &status,
		IsPrimary: &primary,
	}, &tags)

	assert.Equal(t, []string{"first_name = $3", "status = $4", "is_primary = $5", "tags = $6::jsonb"}, sets)
	assert.Equal(t, []any{"Jane", "inactive", true, `["vip"]`}, args)
}

func TestBuildContactUpdate_Empty(t *testing.T) {
	sets, args := buildContactUpdate(models.UpdateContactInput{}, nil)
	assert.Empty(t, sets)
	assert.Empty(t, args)
}

func TestTagsRoundTrip(t *testing.T) {
	s, err := encodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	tags, err := decodeTags([]byte(`["a","b"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	tags, err = decodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)

	_, err = decodeTags([]byte(`{`))
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(MigrationsFS(), ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_companies_contacts.up.sql")
	assert.Contains(t, names, "000001_create_companies_contacts.down.sql")
}

func TestRunMigrateRejectsUnknownCommand(t *testing.T) {
	err := RunMigrate("postgres://localhost/none", "sideways", nil)
	assert.ErrorContains(t, err, "unknown migrate command")

	err = RunMigrate("postgres://localhost/none", "force", nil)
	assert.ErrorContains(t, err, "force requires")
}
