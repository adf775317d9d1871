package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/meridiancap/cms-apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bannerSchema is a compact schema exercising the common column set:
// one required string, one int, one defaulted bool, plus ordering,
// visibility, and an allow-listed filter.
var bannerSchema = types.Schema{
	Name:  "banner",
	Table: "banners",
	Fields: []types.Field{
		{Column: "title", Kind: types.FieldString, Required: true},
		{Column: "year", Kind: types.FieldInt},
		{Column: "featured", Kind: types.FieldBool, Default: false},
	},
	HasActive: true,
	HasOrder:  true,
	Delete:    types.HardDelete,
	OrderBy:   []types.OrderKey{{Column: "year", Desc: true}},
	Filters:   []types.FilterSpec{{Param: "year", Column: "year", Kind: types.FieldInt}},
}

var bannerColumns = []string{"id", "title", "year", "featured", "display_order", "is_active", "created_at", "updated_at"}

func newBannerRepo(t *testing.T) (*ResourceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewResourceRepository(db, bannerSchema), mock
}

func TestResourceRepositoryListPublicFiltersInactive(t *testing.T) {
	repo, mock := newBannerRepo(t)
	now := time.Now()

	query := "SELECT id, title, year, featured, display_order, is_active, created_at, updated_at " +
		"FROM banners WHERE is_active = TRUE " +
		"ORDER BY display_order ASC, year DESC, created_at DESC"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows(bannerColumns).
			AddRow(1, "Annual Outlook", 2026, true, 0, true, now, now).
			AddRow(2, "Fund Launch", 2025, false, 1, true, now, now))

	got, err := repo.List(context.Background(), nil, 0, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID())
	assert.Equal(t, "Annual Outlook", got[0]["title"])
	assert.Equal(t, int64(2026), got[0]["year"])
	assert.Equal(t, true, got[0]["featured"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListAdminSeesAllRows(t *testing.T) {
	repo, mock := newBannerRepo(t)
	now := time.Now()

	query := "SELECT id, title, year, featured, display_order, is_active, created_at, updated_at " +
		"FROM banners WHERE year = $1 " +
		"ORDER BY display_order ASC, year DESC, created_at DESC LIMIT 10"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(2025)).
		WillReturnRows(sqlmock.NewRows(bannerColumns).
			AddRow(3, "Archived Notice", 2025, false, 0, false, now, now))

	got, err := repo.List(context.Background(), map[string]any{"year": int64(2025)}, 10, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, false, got[0]["is_active"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListIgnoresUnknownFilters(t *testing.T) {
	repo, mock := newBannerRepo(t)

	query := "SELECT id, title, year, featured, display_order, is_active, created_at, updated_at " +
		"FROM banners ORDER BY display_order ASC, year DESC, created_at DESC"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(sqlmock.NewRows(bannerColumns))

	got, err := repo.List(context.Background(), map[string]any{"title": "x"}, 0, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryGetByID(t *testing.T) {
	repo, mock := newBannerRepo(t)
	now := time.Now()

	t.Run("public read filters inactive", func(t *testing.T) {
		query := "SELECT id, title, year, featured, display_order, is_active, created_at, updated_at " +
			"FROM banners WHERE id = $1 AND is_active = TRUE"
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(bannerColumns).
				AddRow(7, "Annual Outlook", 2026, false, 2, true, now, now))

		got, err := repo.GetByID(context.Background(), 7, false)
		require.NoError(t, err)
		assert.Equal(t, 7, got.ID())
		assert.Equal(t, int64(2), got["display_order"])
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		query := "SELECT id, title, year, featured, display_order, is_active, created_at, updated_at " +
			"FROM banners WHERE id = $1"
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(bannerColumns))

		_, err := repo.GetByID(context.Background(), 99, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateAppliesDefaults(t *testing.T) {
	repo, mock := newBannerRepo(t)

	query := "INSERT INTO banners (title, year, featured, display_order, is_active, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("Fund Launch", int64(0), false, int64(0), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	id, err := repo.Create(context.Background(), types.Resource{"title": "Fund Launch"})
	require.NoError(t, err)
	assert.Equal(t, 11, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateValidatesRequired(t *testing.T) {
	repo, _ := newBannerRepo(t)

	_, err := repo.Create(context.Background(), types.Resource{"year": 2026})
	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Fields, "title")
}

func TestResourceRepositoryCreateCoercesJSONNumbers(t *testing.T) {
	repo, mock := newBannerRepo(t)

	// encoding/json hands numbers over as float64 and flags may arrive
	// as strings; both must land as their column types.
	query := "INSERT INTO banners (title, year, featured, display_order, is_active, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id"
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("Fund Launch", int64(2026), true, int64(3), false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.Create(context.Background(), types.Resource{
		"title":         "Fund Launch",
		"year":          float64(2026),
		"featured":      "yes",
		"display_order": float64(3),
		"is_active":     "false",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryUpdateNotFound(t *testing.T) {
	repo, mock := newBannerRepo(t)

	query := "UPDATE banners SET title = $1, year = $2, featured = $3, display_order = $4, is_active = $5, updated_at = $6 WHERE id = $7"
	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("Renamed", int64(0), false, int64(0), true, sqlmock.AnyArg(), 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 42, types.Resource{"title": "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryDeletePolicies(t *testing.T) {
	t.Run("hard delete removes the row", func(t *testing.T) {
		repo, mock := newBannerRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM banners WHERE id = $1")).
			WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soft delete flips is_active", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		soft := bannerSchema
		soft.Delete = types.SoftDelete
		repo := NewResourceRepository(db, soft)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE banners SET is_active = FALSE, updated_at = $1 WHERE id = $2")).
			WithArgs(sqlmock.AnyArg(), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		repo, mock := newBannerRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM banners WHERE id = $1")).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// pageSchema exercises slug derivation and collision probing.
var pageSchema = types.Schema{
	Name:  "page",
	Table: "pages",
	Fields: []types.Field{
		{Column: "title", Kind: types.FieldString, Required: true},
		{Column: "slug", Kind: types.FieldString},
	},
	HasActive: true,
	HasOrder:  true,
	Delete:    types.HardDelete,
	Slug:      &types.SlugPolicy{Column: "slug", SourceColumn: "title"},
}

func TestResourceRepositorySlugDerivation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewResourceRepository(db, pageSchema)

	probe := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1 AND id <> $2)")

	// First candidate is taken, -2 is free.
	mock.ExpectQuery(probe).
		WithArgs("wealth-management", 0).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(probe).
		WithArgs("wealth-management-2", 0).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	insert := "INSERT INTO pages (title, slug, display_order, is_active, created_at, updated_at) " +
		"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"
	mock.ExpectQuery(regexp.QuoteMeta(insert)).
		WithArgs("Wealth Management!!", "wealth-management-2", int64(0), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := repo.Create(context.Background(), types.Resource{"title": "Wealth Management!!"})
	require.NoError(t, err)
	assert.Equal(t, 3, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositorySlugExcludesOwnRowOnUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewResourceRepository(db, pageSchema)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1 AND id <> $2)")).
		WithArgs("advisory", 8).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	update := "UPDATE pages SET title = $1, slug = $2, display_order = $3, is_active = $4, updated_at = $5 WHERE id = $6"
	mock.ExpectExec(regexp.QuoteMeta(update)).
		WithArgs("Advisory", "advisory", int64(0), true, sqlmock.AnyArg(), 8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), 8, types.Resource{"title": "Advisory", "slug": "advisory"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
