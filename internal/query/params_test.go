package query

import (
	"net/url"
	"strings"
	"testing"
)

var requestSortable = map[string]string{
	"created_at": "r.created_at",
	"priority":   "r.priority",
	"title":      "r.title",
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse(url.Values{}, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Page != 1 || p.PerPage != 10 {
		t.Errorf("defaults = page %d per_page %d, want 1 and 10", p.Page, p.PerPage)
	}
	if p.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", p.Offset())
	}
	if p.Statuses != nil || p.Types != nil {
		t.Errorf("expected no filters, got statuses %v types %v", p.Statuses, p.Types)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
		wantOffset  int
		wantErr     bool
	}{
		{name: "explicit", page: "3", perPage: "25", wantPage: 3, wantPerPage: 25, wantOffset: 50},
		{name: "per_page clamped to max", page: "1", perPage: "500", wantPage: 1, wantPerPage: 100, wantOffset: 0},
		{name: "zero page rejected", page: "0", perPage: "10", wantErr: true},
		{name: "negative per_page rejected", page: "1", perPage: "-5", wantErr: true},
		{name: "non-numeric page rejected", page: "abc", perPage: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			v.Set("page", tt.page)
			v.Set("per_page", tt.perPage)

			p, err := Parse(v, requestSortable)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Errorf("got page %d per_page %d, want %d and %d", p.Page, p.PerPage, tt.wantPage, tt.wantPerPage)
			}
			if p.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", p.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name       string
		sort       string
		wantColumn string
		wantOrder  string
		wantErr    bool
	}{
		{name: "mapped column", sort: "created_at.desc", wantColumn: "r.created_at", wantOrder: "desc"},
		{name: "order case folded", sort: "title.ASC", wantColumn: "r.title", wantOrder: "asc"},
		{name: "unknown column", sort: "password.asc", wantErr: true},
		{name: "missing order", sort: "created_at", wantErr: true},
		{name: "bad order", sort: "created_at.sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			v.Set("sort", tt.sort)

			p, err := Parse(v, requestSortable)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.SortColumn != tt.wantColumn || p.SortOrder != tt.wantOrder {
				t.Errorf("got %s %s, want %s %s", p.SortColumn, p.SortOrder, tt.wantColumn, tt.wantOrder)
			}
		})
	}
}

func TestParseMultiSelect(t *testing.T) {
	v := url.Values{}
	v.Set("status", "PENDING.APPROVED.REVIEWED")
	v.Set("type", "JOB")
	v.Set("priority", "HIGH..URGENT")

	p, err := Parse(v, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantStatuses := []string{"PENDING", "APPROVED", "REVIEWED"}
	if len(p.Statuses) != len(wantStatuses) {
		t.Fatalf("statuses = %v, want %v", p.Statuses, wantStatuses)
	}
	for i, s := range wantStatuses {
		if p.Statuses[i] != s {
			t.Errorf("statuses[%d] = %s, want %s", i, p.Statuses[i], s)
		}
	}
	if len(p.Types) != 1 || p.Types[0] != "JOB" {
		t.Errorf("types = %v, want [JOB]", p.Types)
	}
	// Empty segments between dots are dropped
	if len(p.Priorities) != 2 || p.Priorities[0] != "HIGH" || p.Priorities[1] != "URGENT" {
		t.Errorf("priorities = %v, want [HIGH URGENT]", p.Priorities)
	}
}

func TestParseDateRange(t *testing.T) {
	v := url.Values{}
	v.Set("from", "2026-03-01")
	v.Set("to", "2026-03-31")

	p, err := Parse(v, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.From == nil || p.To == nil {
		t.Fatal("expected both range ends set")
	}
	if p.From.Hour() != 0 || p.From.Minute() != 0 {
		t.Errorf("from = %v, want start of day", p.From)
	}
	if p.To.Hour() != 23 || p.To.Minute() != 59 {
		t.Errorf("to = %v, want end of day", p.To)
	}
	if !p.From.Before(*p.To) {
		t.Errorf("from %v not before to %v", p.From, p.To)
	}

	v.Set("from", "03/01/2026")
	if _, err := Parse(v, requestSortable); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	v := url.Values{}
	v.Set("page", "2")
	v.Set("per_page", "25")
	v.Set("sort", "created_at.desc")
	v.Set("status", "PENDING.APPROVED")
	v.Set("department_id", "7")
	v.Set("from", "2026-03-01")

	a, err := Parse(v, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, err := Parse(v, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.CacheKey("requests:list") != b.CacheKey("requests:list") {
		t.Errorf("equal parameter sets produced different keys:\n%s\n%s",
			a.CacheKey("requests:list"), b.CacheKey("requests:list"))
	}
	if !strings.HasPrefix(a.CacheKey("requests:list"), "requests:list:") {
		t.Errorf("key %q does not live under its invalidation prefix", a.CacheKey("requests:list"))
	}
}

func TestCacheKeyVariesWithParams(t *testing.T) {
	base := url.Values{}
	base.Set("page", "1")

	variants := []url.Values{
		{"page": {"2"}},
		{"page": {"1"}, "per_page": {"50"}},
		{"page": {"1"}, "status": {"PENDING"}},
		{"page": {"1"}, "status": {"PENDING.APPROVED"}},
		{"page": {"1"}, "department_id": {"7"}},
		{"page": {"1"}, "user_id": {"7"}},
		{"page": {"1"}, "title": {"orientation"}},
		{"page": {"1"}, "from": {"2026-03-01"}},
	}

	ref, err := Parse(base, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	seen := map[string]string{ref.CacheKey("requests:list"): "base"}

	for i, v := range variants {
		p, err := Parse(v, requestSortable)
		if err != nil {
			t.Fatalf("Parse(variant %d) error = %v", i, err)
		}
		key := p.CacheKey("requests:list")
		if prior, dup := seen[key]; dup {
			t.Errorf("variant %d collides with %s on key %q", i, prior, key)
		}
		seen[key] = v.Encode()
	}
}

func TestParseIDFilters(t *testing.T) {
	v := url.Values{}
	v.Set("department_id", "7")
	v.Set("user_id", "42")

	p, err := Parse(v, requestSortable)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.DepartmentID == nil || *p.DepartmentID != 7 {
		t.Errorf("department_id = %v, want 7", p.DepartmentID)
	}
	if p.UserID == nil || *p.UserID != 42 {
		t.Errorf("user_id = %v, want 42", p.UserID)
	}
	if p.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil", p.AssignedTo)
	}

	v.Set("department_id", "seven")
	if _, err := Parse(v, requestSortable); err == nil {
		t.Error("expected error for non-numeric department_id")
	}
}
