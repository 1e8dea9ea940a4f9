package listingquery

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var columns = map[Field]string{
	FieldStreet:      "listings.street",
	FieldDescription: "listings.description",
	FieldCity:        "listings.city",
	FieldPrice:       "listings.price",
	FieldFloor:       "listings.floor",
	FieldCurrency:    "listings.currency",
	FieldCapacity:    "listings.capacity",
	FieldCreatedAt:   "listings.created_at",
}

// searchColumns hold the lowercased shadow copies matched by Substring clauses.
var searchColumns = map[Field]string{
	FieldStreet:      "listings.street_lower",
	FieldDescription: "listings.description_lower",
	FieldCity:        "listings.city_lower",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GormScope compiles p into a scope over the listings table. Tag clauses become
// subqueries against listing_tags.
func (p Predicate) GormScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range p.Clauses {
			db = applyClause(db, c)
		}

		dir := "ASC"
		if p.Sort.Descending {
			dir = "DESC"
		}
		return db.Order(column(p.Sort.Field) + " " + dir).Order("listings.id " + dir)
	}
}

func applyClause(db *gorm.DB, c Clause) *gorm.DB {
	switch c := c.(type) {
	case Substring:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Text)) + "%"
		conds := make([]string, 0, len(c.Fields))
		args := make([]any, 0, len(c.Fields))
		for _, f := range c.Fields {
			conds = append(conds, fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, searchColumn(f)))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	case Range:
		if c.Min != nil {
			db = db.Where(column(c.Field)+" >= ?", *c.Min)
		}
		if c.Max != nil {
			db = db.Where(column(c.Field)+" <= ?", *c.Max)
		}
		return db
	case Equals:
		return db.Where(column(c.Field)+" = ?", c.Value)
	case AtLeast:
		return db.Where(column(c.Field)+" >= ?", c.Value)
	case ContainsAll:
		kind, ok := TagKind(c.Field)
		if !ok {
			panic(fmt.Sprintf("listingquery: %s is not a tag field", c.Field))
		}
		return db.Where(
			"listings.id IN (SELECT listing_id FROM listing_tags WHERE kind = ? AND tag IN ? GROUP BY listing_id HAVING COUNT(DISTINCT tag) = ?)",
			string(kind), c.Values, distinct(c.Values),
		)
	default:
		panic(fmt.Sprintf("listingquery: unsupported clause %T", c))
	}
}

func column(f Field) string {
	col, ok := columns[f]
	if !ok {
		panic(fmt.Sprintf("listingquery: %s has no column", f))
	}
	return col
}

func searchColumn(f Field) string {
	col, ok := searchColumns[f]
	if !ok {
		panic(fmt.Sprintf("listingquery: %s is not searchable", f))
	}
	return col
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
