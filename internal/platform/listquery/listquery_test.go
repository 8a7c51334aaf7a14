// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listquery

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tourSchema mirrors the field surface of the tours resource.
var tourSchema = Schema{
	Columns: map[string]string{
		"name":            "name",
		"price":           "price",
		"difficulty":      "difficulty",
		"duration":        "duration",
		"ratings_average": "ratings_average",
		"created_at":      "created_at",
	},
	DefaultSort: []SortKey{{Field: "created_at", Desc: true}},
}

func mustParseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestParse_Defaults(t *testing.T) {
	descriptor := Parse(url.Values{}, tourSchema)

	assert.Empty(t, descriptor.Filters)
	assert.Equal(t, DefaultPage, descriptor.Page)
	assert.Equal(t, DefaultLimit, descriptor.Limit)
	assert.Equal(t, 0, descriptor.Offset())
	require.Len(t, descriptor.Sort, 1)
	assert.Equal(t, SortKey{Field: "created_at", Desc: true}, descriptor.Sort[0])
}

func TestParse_EqualityFilter(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "difficulty=easy"), tourSchema)

	require.Len(t, descriptor.Filters, 1)
	assert.Equal(t, Filter{Field: "difficulty", Op: OpEq, Value: "easy"}, descriptor.Filters[0])
}

func TestParse_BracketOperators(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "price[gte]=100&price[lt]=500&duration[lte]=7&ratings_average[gt]=4"), tourSchema)

	require.Len(t, descriptor.Filters, 4)

	byField := map[string]map[Op]string{}
	for _, filter := range descriptor.Filters {
		if byField[filter.Field] == nil {
			byField[filter.Field] = map[Op]string{}
		}
		byField[filter.Field][filter.Op] = filter.Value
	}

	assert.Equal(t, "100", byField["price"][OpGte])
	assert.Equal(t, "500", byField["price"][OpLt])
	assert.Equal(t, "7", byField["duration"][OpLte])
	assert.Equal(t, "4", byField["ratings_average"][OpGt])
}

func TestParse_DropsUnknownFieldsAndOperators(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "password=x&price[ne]=3&secret_tour=true&price[gte=100"), tourSchema)

	assert.Empty(t, descriptor.Filters)
}

func TestParse_ReservedKeysAreNotFilters(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "sort=price&fields=name&limit=5&page=2"), tourSchema)

	assert.Empty(t, descriptor.Filters)
	assert.Equal(t, 5, descriptor.Limit)
	assert.Equal(t, 2, descriptor.Page)
	assert.Equal(t, 5, descriptor.Offset())
	assert.Equal(t, []string{"name"}, descriptor.Fields)
	require.Len(t, descriptor.Sort, 1)
	assert.Equal(t, SortKey{Field: "price", Desc: false}, descriptor.Sort[0])
}

func TestParse_SortDescendingAndMultiKey(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "sort=-price,name,-bogus"), tourSchema)

	require.Len(t, descriptor.Sort, 2)
	assert.Equal(t, SortKey{Field: "price", Desc: true}, descriptor.Sort[0])
	assert.Equal(t, SortKey{Field: "name", Desc: false}, descriptor.Sort[1])
}

func TestParse_PaginationClamping(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		wantLimit int
		wantPage  int
	}{
		{"limit above cap", "limit=5000", MaxLimit, DefaultPage},
		{"limit zero", "limit=0", 1, DefaultPage},
		{"limit negative", "limit=-3", 1, DefaultPage},
		{"limit non-numeric", "limit=abc", DefaultLimit, DefaultPage},
		{"page zero", "page=0", DefaultLimit, 1},
		{"page non-numeric", "page=two", DefaultLimit, DefaultPage},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			descriptor := Parse(mustParseQuery(t, testCase.query), tourSchema)
			assert.Equal(t, testCase.wantLimit, descriptor.Limit)
			assert.Equal(t, testCase.wantPage, descriptor.Page)
		})
	}
}

func TestParse_FieldsProjectionDropsUnknown(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "fields=name,price,password_hash"), tourSchema)

	assert.Equal(t, []string{"name", "price"}, descriptor.Fields)
}

func TestBuildWhere_Parameterized(t *testing.T) {
	descriptor := Descriptor{
		Filters: []Filter{
			{Field: "price", Op: OpLte, Value: "500"},
			{Field: "difficulty", Op: OpEq, Value: "easy"},
		},
	}

	clause, arguments := BuildWhere(descriptor, tourSchema, 2)

	assert.Equal(t, "price <= $2 AND difficulty = $3", clause)
	assert.Equal(t, []any{"500", "easy"}, arguments)
}

func TestBuildWhere_Empty(t *testing.T) {
	clause, arguments := BuildWhere(Descriptor{}, tourSchema, 1)

	assert.Empty(t, clause)
	assert.Nil(t, arguments)
}

func TestBuildOrderBy(t *testing.T) {
	descriptor := Descriptor{
		Sort: []SortKey{
			{Field: "price", Desc: true},
			{Field: "name"},
		},
	}

	assert.Equal(t, "price DESC, name ASC", BuildOrderBy(descriptor, tourSchema))
}

// Values never reach the SQL text, only the argument list.
func TestBuildWhere_ValueInjectionStaysBound(t *testing.T) {
	descriptor := Parse(mustParseQuery(t, "name=x'%3B DROP TABLE tours%3B--"), tourSchema)

	clause, arguments := BuildWhere(descriptor, tourSchema, 1)

	assert.Equal(t, "name = $1", clause)
	assert.Equal(t, []any{"x'; DROP TABLE tours;--"}, arguments)
}

func TestProject_TrimsToRequestedFields(t *testing.T) {
	type item struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
		Slug  string  `json:"slug"`
	}
	collection := []item{
		{ID: "a1", Name: "First", Price: 100, Slug: "first"},
		{ID: "b2", Name: "Second", Price: 200, Slug: "second"},
	}

	projected, ok := Project([]string{"name"}, collection).([]map[string]json.RawMessage)
	require.True(t, ok)
	require.Len(t, projected, 2)

	for _, entry := range projected {
		assert.Contains(t, entry, "name")
		assert.Contains(t, entry, "id")
		assert.NotContains(t, entry, "price")
		assert.NotContains(t, entry, "slug")
	}
	assert.Equal(t, json.RawMessage(`"First"`), projected[0]["name"])
}

func TestProject_EmptyFieldsReturnsCollectionUnchanged(t *testing.T) {
	collection := []map[string]any{{"id": "a1", "name": "First"}}

	assert.Equal(t, any(collection), Project(nil, collection))
}
