package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campus-backend/internal/timeutil"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListParams carries the decoded list-endpoint query string: pagination,
// sorting and the common request filters.
type ListParams struct {
	Page    int
	PerPage int

	SortColumn string
	SortOrder  string

	Statuses   []string
	Types      []string
	Priorities []string

	DepartmentID *int
	UserID       *int
	AssignedTo   *int
	Title        string

	From *time.Time
	To   *time.Time
}

// Offset returns the SQL offset for the current page.
func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// CacheKey renders the parameters into a deterministic Redis key under the
// given prefix. Two equal parameter sets always produce the same key, so a
// cached page is shared across callers; the prefix lets pattern invalidation
// clear every page at once.
func (p *ListParams) CacheKey(prefix string) string {
	intPart := func(v *int) string {
		if v == nil {
			return "-"
		}
		return strconv.Itoa(*v)
	}
	timePart := func(v *time.Time) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatInt(v.Unix(), 10)
	}

	parts := []string{
		prefix,
		strconv.Itoa(p.Page),
		strconv.Itoa(p.PerPage),
		p.SortColumn + "." + p.SortOrder,
		strings.Join(p.Statuses, "."),
		strings.Join(p.Types, "."),
		strings.Join(p.Priorities, "."),
		intPart(p.DepartmentID),
		intPart(p.UserID),
		intPart(p.AssignedTo),
		p.Title,
		timePart(p.From),
		timePart(p.To),
	}
	return strings.Join(parts, ":")
}

// Parse decodes pagination, sort and filter parameters from a query string.
// sortable maps the client-facing sort name to the real column; unknown sort
// columns and orders are rejected rather than silently ignored.
func Parse(values url.Values, sortable map[string]string) (*ListParams, error) {
	p := &ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page: %q", raw)
		}
		p.Page = n
	}

	if raw := values.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid per_page: %q", raw)
		}
		if n > MaxPerPage {
			n = MaxPerPage
		}
		p.PerPage = n
	}

	if raw := values.Get("sort"); raw != "" {
		col, order, ok := strings.Cut(raw, ".")
		if !ok {
			return nil, fmt.Errorf("invalid sort: %q, expected column.order", raw)
		}
		mapped, known := sortable[col]
		if !known {
			return nil, fmt.Errorf("unsortable column: %q", col)
		}
		order = strings.ToLower(order)
		if order != "asc" && order != "desc" {
			return nil, fmt.Errorf("invalid sort order: %q", order)
		}
		p.SortColumn = mapped
		p.SortOrder = order
	}

	p.Statuses = splitMulti(values.Get("status"))
	p.Types = splitMulti(values.Get("type"))
	p.Priorities = splitMulti(values.Get("priority"))
	p.Title = strings.TrimSpace(values.Get("title"))

	var err error
	if p.DepartmentID, err = intPtr(values.Get("department_id")); err != nil {
		return nil, fmt.Errorf("invalid department_id: %w", err)
	}
	if p.UserID, err = intPtr(values.Get("user_id")); err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	if p.AssignedTo, err = intPtr(values.Get("assigned_to")); err != nil {
		return nil, fmt.Errorf("invalid assigned_to: %w", err)
	}

	if p.From, err = datePtr(values.Get("from"), false); err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	if p.To, err = datePtr(values.Get("to"), true); err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}

	return p, nil
}

// splitMulti splits a dot-separated multi-select value, dropping empties.
func splitMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func intPtr(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// datePtr parses a YYYY-MM-DD value in local time. An end-of-range date is
// widened to the last instant of that day so the range is inclusive.
func datePtr(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeutil.DateLayout, raw, timeutil.Manila)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = timeutil.EndOfDay(t)
	}
	return &t, nil
}
