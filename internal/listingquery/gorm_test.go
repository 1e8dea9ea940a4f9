package listingquery

import (
	"testing"

	"coliver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dryRun(t *testing.T, p Predicate) *gorm.Statement {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DryRun: true,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var out []models.Listing
	return db.Model(&models.Listing{}).Scopes(p.GormScope()).Find(&out).Statement
}

func TestGormScope_DefaultOrder(t *testing.T) {
	stmt := dryRun(t, Build(Filter{}))
	sql := stmt.SQL.String()
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY listings.created_at DESC,listings.id DESC")
}

func TestGormScope_SubstringIsCaseInsensitiveAndEscaped(t *testing.T) {
	stmt := dryRun(t, Build(Filter{Query: "50%_Off"}))
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "listings.street_lower LIKE ?")
	assert.Contains(t, sql, "OR listings.description_lower LIKE ?")
	assert.NotContains(t, sql, "LOWER(")
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`}, stmt.Vars)
}

func TestGormScope_TagsUseContainsAllSubquery(t *testing.T) {
	stmt := dryRun(t, Build(Filter{
		Amenities: []string{"📶 Wi-Fi", "🍳 Kitchen"},
		Sort:      SortPriceDesc,
	}))
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "listing_tags WHERE kind = ?")
	assert.Contains(t, sql, "HAVING COUNT(DISTINCT tag) = ?")
	assert.Contains(t, sql, "ORDER BY listings.price DESC")
	assert.Contains(t, stmt.Vars, "amenity")
	assert.Contains(t, stmt.Vars, 2)
}

func TestGormScope_RangesAndCapacity(t *testing.T) {
	stmt := dryRun(t, Build(Filter{
		Price:    Bounds{Min: ptr(100), Max: ptr(200)},
		Capacity: &Capacity{Value: 3, AtLeast: true},
	}))
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "listings.price >= ?")
	assert.Contains(t, sql, "listings.price <= ?")
	assert.Contains(t, sql, "listings.capacity >= ?")
	assert.Equal(t, []any{100.0, 200.0, 3}, stmt.Vars)
}
