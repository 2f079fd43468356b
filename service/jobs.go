package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/generator"
)

// Job search cache settings.
const (
	JobSearchOperation  = "job_search"
	JobSearchCollection = "job_search_cache"
)

// JobQuery describes a job search.
type JobQuery struct {
	Query           string   `json:"query"`
	Location        string   `json:"location,omitempty"`
	Remote          bool     `json:"remote,omitempty"`
	DatePosted      string   `json:"date_posted,omitempty"`
	EmploymentTypes []string `json:"employment_types,omitempty"`
	Page            int      `json:"page,omitempty"`
}

// Normalize lowercases and trims text fields, sorts and deduplicates
// employment types, and clamps Page to at least 1.
func (q JobQuery) Normalize() JobQuery {
	out := JobQuery{
		Query:      normalizeText(q.Query),
		Location:   normalizeText(q.Location),
		Remote:     q.Remote,
		DatePosted: normalizeText(q.DatePosted),
		Page:       max(q.Page, 1),
	}
	for _, t := range q.EmploymentTypes {
		if t = normalizeText(t); t != "" {
			out.EmploymentTypes = append(out.EmploymentTypes, t)
		}
	}
	slices.Sort(out.EmploymentTypes)
	out.EmploymentTypes = slices.Compact(out.EmploymentTypes)
	return out
}

// Tuple returns the normalized query as an ordered tuple for key derivation.
func (q JobQuery) Tuple() []any {
	n := q.Normalize()
	types := n.EmploymentTypes
	if types == nil {
		types = []string{}
	}
	return []any{n.Query, n.Location, n.Remote, n.DatePosted, types, n.Page}
}

// Prompt renders the query as a generation prompt.
func (q JobQuery) Prompt() string {
	n := q.Normalize()
	var b strings.Builder
	fmt.Fprintf(&b, "Find current job listings for %q", n.Query)
	if n.Location != "" {
		fmt.Fprintf(&b, " in %s", n.Location)
	}
	if n.Remote {
		b.WriteString(", remote only")
	}
	if n.DatePosted != "" {
		fmt.Fprintf(&b, ", posted within %s", n.DatePosted)
	}
	if len(n.EmploymentTypes) > 0 {
		fmt.Fprintf(&b, ", employment types: %s", strings.Join(n.EmploymentTypes, ", "))
	}
	fmt.Fprintf(&b, ". Return page %d as a JSON object with a \"jobs\" array.", n.Page)
	return b.String()
}

// SearchJobs returns job listings for q, cached for the job search TTL.
func (s *Service) SearchJobs(ctx context.Context, q JobQuery) (cache.Result, error) {
	if normalizeText(q.Query) == "" {
		return cache.Result{}, generator.ErrEmptyPrompt
	}
	return s.GenerateRequest(ctx, q.Tuple(), generator.Request{
		Operation: JobSearchOperation,
		Prompt:    q.Prompt(),
	})
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
