package listingquery

import "coliver/internal/models"

// Field names a filterable or sortable listing attribute independently of any store.
type Field string

const (
	FieldStreet      Field = "street"
	FieldDescription Field = "description"
	FieldCity        Field = "city"
	FieldPrice       Field = "price"
	FieldFloor       Field = "floor"
	FieldCurrency    Field = "currency"
	FieldCapacity    Field = "capacity"
	FieldPreferences Field = "preferences"
	FieldAmenities   Field = "amenities"
	FieldCreatedAt   Field = "createdAt"
)

// Clause is one conjunct of a Predicate.
type Clause interface {
	clause()
}

// Substring matches when any of Fields contains Text, ignoring case.
type Substring struct {
	Fields []Field
	Text   string
}

// Range bounds a numeric field inclusively.
type Range struct {
	Field Field
	Min   *float64
	Max   *float64
}

// Equals matches a field against an exact value.
type Equals struct {
	Field Field
	Value any
}

// AtLeast matches an integer field greater than or equal to Value.
type AtLeast struct {
	Field Field
	Value int
}

// ContainsAll matches a tag field holding every one of Values.
type ContainsAll struct {
	Field  Field
	Values []string
}

func (Substring) clause()   {}
func (Range) clause()       {}
func (Equals) clause()      {}
func (AtLeast) clause()     {}
func (ContainsAll) clause() {}

// Sort orders results by a single field.
type Sort struct {
	Field      Field
	Descending bool
}

// Predicate is a conjunction of clauses plus an ordering. An empty clause list matches every listing.
type Predicate struct {
	Clauses []Clause
	Sort    Sort
}

// SortFor maps a browse ordering to a field and direction.
func SortFor(order SortOrder) Sort {
	switch order {
	case SortPriceAsc:
		return Sort{Field: FieldPrice}
	case SortPriceDesc:
		return Sort{Field: FieldPrice, Descending: true}
	case SortDateOldest:
		return Sort{Field: FieldCreatedAt}
	default:
		return Sort{Field: FieldCreatedAt, Descending: true}
	}
}

// Build translates a Filter into a Predicate. It has no side effects.
func Build(f Filter) Predicate {
	var clauses []Clause

	if f.Query != "" {
		clauses = append(clauses, Substring{Fields: []Field{FieldStreet, FieldDescription}, Text: f.Query})
	}
	if f.City != "" {
		clauses = append(clauses, Substring{Fields: []Field{FieldCity}, Text: f.City})
	}
	if f.Street != "" {
		clauses = append(clauses, Substring{Fields: []Field{FieldStreet}, Text: f.Street})
	}
	if !f.Price.empty() {
		clauses = append(clauses, Range{Field: FieldPrice, Min: f.Price.Min, Max: f.Price.Max})
	}
	if !f.Floor.empty() {
		clauses = append(clauses, Range{Field: FieldFloor, Min: f.Floor.Min, Max: f.Floor.Max})
	}
	if f.Currency != nil {
		clauses = append(clauses, Equals{Field: FieldCurrency, Value: string(*f.Currency)})
	}
	if c := f.Capacity; c != nil {
		if c.AtLeast {
			clauses = append(clauses, AtLeast{Field: FieldCapacity, Value: c.Value})
		} else {
			clauses = append(clauses, Equals{Field: FieldCapacity, Value: c.Value})
		}
	}
	if len(f.Preferences) > 0 {
		clauses = append(clauses, ContainsAll{Field: FieldPreferences, Values: f.Preferences})
	}
	if len(f.Amenities) > 0 {
		clauses = append(clauses, ContainsAll{Field: FieldAmenities, Values: f.Amenities})
	}

	return Predicate{Clauses: clauses, Sort: SortFor(f.Sort)}
}

// Newest is the predicate behind the landing page's recent listings.
func Newest() Predicate {
	return Predicate{Sort: SortFor(SortDateNewest)}
}

// TagKind reports which tag vocabulary a tag field holds.
func TagKind(f Field) (models.TagKind, bool) {
	switch f {
	case FieldPreferences:
		return models.TagPreference, true
	case FieldAmenities:
		return models.TagAmenity, true
	}
	return "", false
}
