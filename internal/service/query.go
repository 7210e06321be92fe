package service

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"taskmanager/internal/repository"
)

const (
	defaultPage    = 1
	defaultPerPage = 50
)

var sortColumns = map[string]string{
	"created":  "created_at",
	"due":      "due_date",
	"priority": "priority",
}

// ListParams is the parsed form of the list query string.
type ListParams struct {
	Completed  *bool
	Sort       string
	Descending bool
	Page       int
	PerPage    int
}

// ParseListParams validates completed, sort, direction, page and per_page.
// Checks run in that order and the first failure is returned. An unknown
// direction means ascending rather than an error.
func ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Sort:    "created",
		Page:    defaultPage,
		PerPage: defaultPerPage,
	}

	if values.Has("completed") {
		completed, ok := parseBool(values.Get("completed"))
		if !ok {
			return ListParams{}, invalidQuery("Invalid completed filter. Use true or false.")
		}
		params.Completed = &completed
	}

	if values.Has("sort") {
		params.Sort = values.Get("sort")
	}
	if _, ok := sortColumns[params.Sort]; !ok {
		return ListParams{}, invalidQuery("Invalid sort. Use one of due|priority|created.")
	}

	params.Descending = values.Get("direction") == "desc"

	var err error
	if params.Page, err = positiveInt(values, "page", defaultPage); err != nil {
		return ListParams{}, err
	}
	if params.PerPage, err = positiveInt(values, "per_page", defaultPerPage); err != nil {
		return ListParams{}, err
	}

	return params, nil
}

// Query converts the params into repository directives.
func (p ListParams) Query() repository.ListQuery {
	offset := math.MaxInt
	if p.Page-1 <= math.MaxInt/p.PerPage {
		offset = (p.Page - 1) * p.PerPage
	}
	return repository.ListQuery{
		Completed:  p.Completed,
		SortColumn: sortColumns[p.Sort],
		Descending: p.Descending,
		Offset:     offset,
		Limit:      p.PerPage,
	}
}

// Pages is ceil(total/per_page).
func (p ListParams) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.PerPage)))
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

func positiveInt(values url.Values, key string, def int) (int, error) {
	if !values.Has(key) {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(values.Get(key)))
	if err != nil || n < 1 {
		return 0, invalidQuery("Invalid pagination parameters.")
	}
	return n, nil
}
