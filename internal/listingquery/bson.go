package listingquery

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToBSON compiles p into a MongoDB filter and sort document. Field names match the
// listing documents written by the Mongo repository.
func ToBSON(p Predicate) (filter bson.D, sort bson.D) {
	filter = bson.D{}
	for _, c := range p.Clauses {
		filter = append(filter, bsonClause(c))
	}

	dir := 1
	if p.Sort.Descending {
		dir = -1
	}
	sort = bson.D{{Key: string(p.Sort.Field), Value: dir}, {Key: "_id", Value: dir}}
	return filter, sort
}

func bsonClause(c Clause) bson.E {
	switch c := c.(type) {
	case Substring:
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(c.Text), Options: "i"}
		if len(c.Fields) == 1 {
			return bson.E{Key: string(c.Fields[0]), Value: rx}
		}
		alternatives := bson.A{}
		for _, f := range c.Fields {
			alternatives = append(alternatives, bson.D{{Key: string(f), Value: rx}})
		}
		return bson.E{Key: "$or", Value: alternatives}
	case Range:
		bounds := bson.D{}
		if c.Min != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *c.Min})
		}
		if c.Max != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *c.Max})
		}
		return bson.E{Key: string(c.Field), Value: bounds}
	case Equals:
		return bson.E{Key: string(c.Field), Value: c.Value}
	case AtLeast:
		return bson.E{Key: string(c.Field), Value: bson.D{{Key: "$gte", Value: c.Value}}}
	case ContainsAll:
		values := bson.A{}
		for _, v := range c.Values {
			values = append(values, v)
		}
		return bson.E{Key: string(c.Field), Value: bson.D{{Key: "$all", Value: values}}}
	default:
		panic(fmt.Sprintf("listingquery: unsupported clause %T", c))
	}
}
