// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package listquery translates HTTP query strings into typed list descriptors
and, from those, into parameterized SQL fragments.

Every collection endpoint shares one grammar:

	GET /api/v1/tours?difficulty=easy&price[lte]=500&sort=-price,name&fields=name,price&page=2&limit=10

The reserved keys {sort, fields, limit, page} shape the result set; every other
key is a filter on a resource field. Filters support five operators via the
bracket form: eq (implicit), gt, gte, lt, lte.

# Safety

Field names never reach SQL directly. Each resource declares a [Schema] mapping
public field names to column names; anything outside that allow-list is
silently dropped, and all values are bound as query parameters.
*/
package listquery

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Op identifies a comparison operator in a filter expression.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// sqlOps maps each operator onto its SQL comparison token.
var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Reserved query keys that shape the result set rather than filter it.
const (
	keySort   = "sort"
	keyFields = "fields"
	keyLimit  = "limit"
	keyPage   = "page"
)

// Pagination bounds. The hard cap protects the database from unbounded scans
// regardless of what the client asks for.
const (
	DefaultLimit = 100
	MaxLimit     = 100
	DefaultPage  = 1
)

// Filter is a single typed comparison against a resource field.
type Filter struct {
	// Field is the public field name (already validated against the schema).
	Field string
	// Op is the comparison operator.
	Op Op
	// Value is the raw string value; it is bound as a SQL parameter.
	Value string
}

// SortKey is one element of the sort order.
type SortKey struct {
	Field string
	Desc  bool
}

// Descriptor is the fully parsed, validated representation of a list request.
type Descriptor struct {
	Filters []Filter
	Sort    []SortKey
	// Fields is the requested projection; empty means all fields.
	Fields []string
	Page   int
	Limit  int
}

// Offset converts page/limit into a SQL OFFSET.
func (d Descriptor) Offset() int {
	return (d.Page - 1) * d.Limit
}

// Schema declares, per resource, which public fields may be filtered, sorted
// and projected, and how they map onto columns.
type Schema struct {
	// Columns maps public field names to SQL column expressions.
	Columns map[string]string
	// DefaultSort is applied when the client sends no sort key.
	DefaultSort []SortKey
}

// Column resolves a public field name, reporting whether it is allowed.
func (s Schema) Column(field string) (string, bool) {
	column, ok := s.Columns[field]
	return column, ok
}

/*
Parse translates raw query values into a [Descriptor] under the given schema.

Parameters:
  - values: the request's url.Values.
  - schema: the resource's field allow-list and defaults.

Returns:
  - Descriptor: the validated descriptor. Parse never fails: malformed or
    unknown input is dropped, and pagination values are clamped into range.

Description:
Filter keys come in two shapes: "price=500" (equality) and "price[gte]=500"
(bracket operator). Keys naming unknown fields and brackets naming unknown
operators are ignored entirely, so clients cannot probe column names through
errors. Repeated keys keep their first value.
*/
func Parse(values url.Values, schema Schema) Descriptor {
	descriptor := Descriptor{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	for key, keyValues := range values {
		if len(keyValues) == 0 || keyValues[0] == "" {
			continue
		}
		value := keyValues[0]

		switch key {
		case keySort:
			descriptor.Sort = parseSort(value, schema)
		case keyFields:
			descriptor.Fields = parseFields(value, schema)
		case keyLimit:
			descriptor.Limit = parseBounded(value, DefaultLimit, 1, MaxLimit)
		case keyPage:
			descriptor.Page = parseBounded(value, DefaultPage, 1, 1<<30)
		default:
			if filter, ok := parseFilter(key, value, schema); ok {
				descriptor.Filters = append(descriptor.Filters, filter)
			}
		}
	}

	if len(descriptor.Sort) == 0 {
		descriptor.Sort = schema.DefaultSort
	}

	return descriptor
}

// parseFilter decodes a single non-reserved key into a Filter, handling both
// the plain equality form and the bracket operator form.
func parseFilter(key, value string, schema Schema) (Filter, bool) {
	field, op := key, OpEq

	if open := strings.IndexByte(key, '['); open >= 0 {
		if !strings.HasSuffix(key, "]") {
			return Filter{}, false
		}
		field = key[:open]
		op = Op(key[open+1 : len(key)-1])
		if _, known := sqlOps[op]; !known {
			return Filter{}, false
		}
	}

	if _, allowed := schema.Column(field); !allowed {
		return Filter{}, false
	}

	return Filter{Field: field, Op: op, Value: value}, true
}

// parseSort decodes "sort=-price,name" into sort keys, dropping unknown fields.
func parseSort(value string, schema Schema) []SortKey {
	var keys []SortKey
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		descending := strings.HasPrefix(raw, "-")
		field := strings.TrimPrefix(raw, "-")

		if _, allowed := schema.Column(field); !allowed {
			continue
		}
		keys = append(keys, SortKey{Field: field, Desc: descending})
	}
	return keys
}

// parseFields decodes "fields=name,price" into a projection, dropping unknown fields.
func parseFields(value string, schema Schema) []string {
	var fields []string
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if _, allowed := schema.Column(raw); !allowed {
			continue
		}
		fields = append(fields, raw)
	}
	return fields
}

// parseBounded parses an integer and clamps it into [min, max];
// non-numeric input falls back to the default.
func parseBounded(value string, fallback, min, max int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	if parsed < min {
		return min
	}
	if parsed > max {
		return max
	}
	return parsed
}

/*
BuildWhere renders the descriptor's filters as a parameterized SQL WHERE
fragment.

Parameters:
  - descriptor: the parsed list descriptor.
  - schema: the resource schema used to resolve column names.
  - startIndex: the first placeholder ordinal ($N), allowing callers to
    prepend their own bound conditions (e.g. soft-delete or visibility flags).

Returns:
  - string: a fragment like "price <= $2 AND difficulty = $3", or "" when
    there are no filters.
  - []any: the bound argument values, in placeholder order.
*/
func BuildWhere(descriptor Descriptor, schema Schema, startIndex int) (string, []any) {
	if len(descriptor.Filters) == 0 {
		return "", nil
	}

	conditions := make([]string, 0, len(descriptor.Filters))
	arguments := make([]any, 0, len(descriptor.Filters))

	for _, filter := range descriptor.Filters {
		column, ok := schema.Column(filter.Field)
		if !ok {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, sqlOps[filter.Op], startIndex))
		arguments = append(arguments, filter.Value)
		startIndex++
	}

	return strings.Join(conditions, " AND "), arguments
}

// BuildOrderBy renders the descriptor's sort keys as an ORDER BY fragment
// (without the keyword), e.g. "price DESC, name ASC".
func BuildOrderBy(descriptor Descriptor, schema Schema) string {
	parts := make([]string, 0, len(descriptor.Sort))
	for _, key := range descriptor.Sort {
		column, ok := schema.Column(key.Field)
		if !ok {
			continue
		}
		direction := "ASC"
		if key.Desc {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	return strings.Join(parts, ", ")
}

/*
Project reduces a collection payload to the requested field projection.

Parameters:
  - fields: the projection parsed from ?fields=...; already schema-validated.
  - collection: a slice of entities about to be serialized.

Returns:
  - any: the collection with each element stripped down to the requested
    JSON keys, or the collection unchanged when fields is empty.

Description:
Projection happens at the serialization boundary rather than in SQL: rows
are always scanned into their full entities (keeping the repositories'
scan paths static), then trimmed down to the requested keys just before
encoding. The "id" key is always retained so projected items stay
addressable. Failure to re-shape degrades to the unprojected collection.
*/
func Project(fields []string, collection any) any {
	if len(fields) == 0 {
		return collection
	}

	raw, err := json.Marshal(collection)
	if err != nil {
		return collection
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return collection
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep["id"] = struct{}{}
	for _, field := range fields {
		keep[field] = struct{}{}
	}

	projected := make([]map[string]json.RawMessage, len(items))
	for i, item := range items {
		trimmed := make(map[string]json.RawMessage, len(keep))
		for key, value := range item {
			if _, ok := keep[key]; ok {
				trimmed[key] = value
			}
		}
		projected[i] = trimmed
	}

	return projected
}
