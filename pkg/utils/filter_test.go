package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	filter := ParseFilterFromQuery(url.Values{})

	assert.Equal(t, DefaultLimit, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
	assert.Equal(t, 1, filter.Page)
	assert.True(t, filter.WithPagination)
	assert.Empty(t, filter.Search)
	assert.Empty(t, filter.Filter)
	assert.Empty(t, filter.Sort)
}

func TestParseFilterFromQuery_LimitCap(t *testing.T) {
	values := url.Values{"limit": {"10000"}}
	filter := ParseFilterFromQuery(values)
	assert.Equal(t, MaxLimit, filter.Limit)
}

func TestParseFilterFromQuery_PageToOffset(t *testing.T) {
	values := url.Values{"limit": {"50"}, "page": {"3"}}
	filter := ParseFilterFromQuery(values)
	assert.Equal(t, 50, filter.Limit)
	assert.Equal(t, 100, filter.Offset)
}

func TestParseFilterFromQuery_SearchSortFilter(t *testing.T) {
	values := url.Values{
		"search":           {"TV"},
		"sort[created_at]": {"desc"},
		"sort[bad]":        {"sideways"},
		"filter[status]":   {"RECEIVED"},
	}
	filter := ParseFilterFromQuery(values)

	assert.Equal(t, "TV", filter.Search)
	assert.Equal(t, map[string]string{"created_at": "desc"}, filter.Sort)
	assert.Equal(t, "RECEIVED", filter.Filter["status"])
}

func TestParseFilterFromQuery_RepeatedFilterJoined(t *testing.T) {
	values := url.Values{}
	values.Add("filter[status]", "RECEIVED")
	values.Add("filter[status]", "REPAIRING")
	// повторный ключ склеивается в список через запятую
	filter := ParseFilterFromQuery(values)
	assert.Equal(t, "RECEIVED,REPAIRING", filter.Filter["status"])
}

func TestParseFilterFromQuery_WithPaginationFalse(t *testing.T) {
	values := url.Values{"withPagination": {"false"}}
	filter := ParseFilterFromQuery(values)
	assert.False(t, filter.WithPagination)
}
